// Package wal persists encoded mutation batches. Each append writes one
// self-delimiting frame:
//
//	frame := payload_len: fixed32 | crc32c(payload): fixed32 | payload
//
// The payload is a batch's full encoded contents, header included, so replay
// hands back exactly the bytes the store journaled.
package wal

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"batchkv/pkg/coding"
	"batchkv/pkg/dberrors"
)

const frameHeaderSize = 8

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// WAL implements write-ahead logging of encoded batches.
type WAL struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	filePath string
}

// New opens (or creates) the journal under dir.
func New(dir string) (*WAL, error) {
	if dir == "" {
		return nil, fmt.Errorf("empty WAL dir")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create WAL directory: %w", err)
	}

	filePath := filepath.Join(dir, "wal.log")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAL file: %w", err)
	}

	return &WAL{
		file:     file,
		writer:   bufio.NewWriter(file),
		filePath: filePath,
	}, nil
}

// Append writes one encoded batch to the journal and syncs it to disk.
func (w *WAL) Append(contents []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return dberrors.ErrClosed
	}

	var hdr [frameHeaderSize]byte
	coding.PutFixed32(hdr[0:4], uint32(len(contents)))
	coding.PutFixed32(hdr[4:8], crc32.Checksum(contents, crcTable))

	if _, err := w.writer.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write WAL frame header: %w", err)
	}
	if _, err := w.writer.Write(contents); err != nil {
		return fmt.Errorf("failed to write WAL frame: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush WAL: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync WAL: %w", err)
	}

	return nil
}

// Replay invokes callback with every journaled payload in append order. A
// truncated frame or checksum mismatch surfaces dberrors.ErrCorruption.
func (w *WAL) Replay(callback func(payload []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return dberrors.ErrClosed
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush WAL before replay: %w", err)
	}

	file, err := os.Open(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to open WAL for reading: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("failed to close WAL read file", "error", cerr)
		}
	}()

	reader := bufio.NewReader(file)
	for {
		payload, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := callback(payload); err != nil {
			return fmt.Errorf("WAL replay callback failed: %w", err)
		}
	}
}

func readFrame(reader *bufio.Reader) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(reader, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated WAL frame header", dberrors.ErrCorruption)
	}

	length := coding.Fixed32(hdr[0:4])
	crc := coding.Fixed32(hdr[4:8])

	payload := make([]byte, length)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated WAL frame", dberrors.ErrCorruption)
	}
	if crc32.Checksum(payload, crcTable) != crc {
		return nil, fmt.Errorf("%w: WAL frame checksum mismatch", dberrors.ErrCorruption)
	}

	return payload, nil
}

// Close flushes and closes the journal file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush WAL on close: %w", err)
		}
		w.writer = nil
	}

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close WAL file: %w", err)
		}
		w.file = nil
	}

	return nil
}
