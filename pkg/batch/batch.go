// Package batch implements the atomic mutation batch: a self-describing
// binary encoding for a group of inserts, deletes and expiring inserts, a
// decoder that replays it against a Handler, and the applier that commits a
// decoded batch into the ordered in-memory table.
//
// Encoded layout:
//
//	batch  := base_sequence: fixed64 | count: fixed32 | record*
//	record := 0x01 varstring(key) varstring(value)                  ; insert
//	        | 0x02 varstring(key)                                   ; delete
//	        | 0x03 varstring(key) varint64(expiry) varstring(value) ; write-time expiry
//	        | 0x04 varstring(key) varint64(expiry) varstring(value) ; explicit expiry
//
// Any other tag is corruption. Forward compatibility is achieved by adding
// new tags, never by skipping unknown ones.
package batch

import (
	"fmt"

	"batchkv/pkg/clock"
	"batchkv/pkg/coding"
	"batchkv/pkg/dberrors"
)

// Kind is the tag byte of one mutation record.
type Kind uint8

const (
	KindInsert               Kind = 0x01
	KindDelete               Kind = 0x02
	KindInsertWriteTime      Kind = 0x03
	KindInsertExplicitExpiry Kind = 0x04
)

// The header is a fixed64 base sequence followed by a fixed32 record count.
const headerSize = 12

// HeaderSize is the minimum length of any encoded batch.
const HeaderSize = headerSize

// Meta selects the insert variant for PutWithExpiry.
//
// For KindInsertWriteTime an Expiry of zero means "stamp with the current
// time at encode time"; zero is a sentinel there, not a usable timestamp.
// A caller that genuinely needs expiry zero must use KindInsertExplicitExpiry,
// which takes Expiry verbatim.
type Meta struct {
	Kind   Kind
	Expiry uint64
}

// WriteBatch is one atomic, ordered group of mutations backed by a single
// growable byte buffer. It is not safe for concurrent mutation.
//
// Use New; the zero value has no header and rejects every operation.
type WriteBatch struct {
	rep []byte
	tp  clock.TimeSource
}

func New() *WriteBatch {
	b := &WriteBatch{tp: clock.System{}}
	b.Clear()
	return b
}

// Clear resets the batch to an empty record stream with a zeroed header.
func (b *WriteBatch) Clear() {
	b.rep = b.rep[:0]
	b.rep = append(b.rep, make([]byte, headerSize)...)
}

// Count reports the number of records encoded so far.
func (b *WriteBatch) Count() uint32 {
	return coding.Fixed32(b.rep[8:headerSize])
}

func (b *WriteBatch) setCount(n uint32) {
	coding.PutFixed32(b.rep[8:headerSize], n)
}

// Put appends a plain insert record for key/value.
func (b *WriteBatch) Put(key, value []byte) {
	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(KindInsert))
	b.rep = coding.AppendVarstring(b.rep, key)
	b.rep = coding.AppendVarstring(b.rep, value)
}

// PutWithExpiry appends an insert record of the variant meta selects.
// A zero meta falls back to a plain insert.
func (b *WriteBatch) PutWithExpiry(key, value []byte, meta Meta) {
	switch meta.Kind {
	case KindInsertWriteTime, KindInsertExplicitExpiry:
	default:
		b.Put(key, value)
		return
	}

	expiry := meta.Expiry
	if meta.Kind == KindInsertWriteTime && expiry == 0 {
		expiry = uint64(b.tp.Now().UnixMilli())
	}

	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(meta.Kind))
	b.rep = coding.AppendVarstring(b.rep, key)
	b.rep = coding.AppendUvarint(b.rep, expiry)
	b.rep = coding.AppendVarstring(b.rep, value)
}

// Delete appends a deletion record for key.
func (b *WriteBatch) Delete(key []byte) {
	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(KindDelete))
	b.rep = coding.AppendVarstring(b.rep, key)
}

// Handler receives decoded records in encoding order. Plain inserts arrive
// with kind KindInsert and expiry zero; expiring inserts carry their tag and
// decoded expiry. A non-nil return aborts the iteration.
type Handler interface {
	Put(key, value []byte, kind Kind, expiry uint64) error
	Delete(key []byte) error
}

// Iterate replays the batch's record stream against h in encoding order.
//
// Every record is validated structurally as it is decoded, and the total
// number of decoded records is checked against the stored count afterwards,
// so a truncated record fails at the point of truncation and trailing garbage
// or a falsified count fails the final check. Failures are reported as
// dberrors.ErrCorruption with a reason.
//
// Records dispatched to h before a failure are not rolled back; a caller that
// needs all-or-nothing application must discard the handler's state itself.
func (b *WriteBatch) Iterate(h Handler) error {
	input := b.rep
	if len(input) < headerSize {
		return corruption("malformed batch (too small)")
	}
	input = input[headerSize:]

	var found uint32
	for len(input) > 0 {
		tag := Kind(input[0])
		input = input[1:]

		switch tag {
		case KindInsert:
			key, rest, ok := coding.GetVarstring(input)
			if !ok {
				return corruption("bad batch put")
			}
			value, rest, ok := coding.GetVarstring(rest)
			if !ok {
				return corruption("bad batch put")
			}
			input = rest
			if err := h.Put(key, value, KindInsert, 0); err != nil {
				return err
			}

		case KindDelete:
			key, rest, ok := coding.GetVarstring(input)
			if !ok {
				return corruption("bad batch delete")
			}
			input = rest
			if err := h.Delete(key); err != nil {
				return err
			}

		case KindInsertWriteTime, KindInsertExplicitExpiry:
			key, rest, ok := coding.GetVarstring(input)
			if !ok {
				return corruption("bad batch expiry")
			}
			expiry, rest, ok := coding.GetUvarint(rest)
			if !ok {
				return corruption("bad batch expiry")
			}
			value, rest, ok := coding.GetVarstring(rest)
			if !ok {
				return corruption("bad batch expiry")
			}
			input = rest
			if err := h.Put(key, value, tag, expiry); err != nil {
				return err
			}

		default:
			return corruption("unknown batch tag")
		}
		found++
	}

	if found != b.Count() {
		return corruption("batch has wrong count")
	}
	return nil
}

func corruption(reason string) error {
	return fmt.Errorf("%w: %s", dberrors.ErrCorruption, reason)
}
