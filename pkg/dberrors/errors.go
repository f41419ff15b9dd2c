package dberrors

import "errors"

var (
	ErrNotFound        = errors.New("batchkv: not found")
	ErrClosed          = errors.New("batchkv: closed")
	ErrInvalidArgument = errors.New("batchkv: invalid argument")

	// ErrCorruption covers every structural decode failure: truncated
	// records, unknown tags, checksum mismatches, and count mismatches.
	// The wrapped message carries the specific reason.
	ErrCorruption = errors.New("batchkv: corruption")
)
