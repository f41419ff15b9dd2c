package batch

import (
	"batchkv/pkg/clock"
	"batchkv/pkg/coding"
)

// Engine-internal manipulation of a WriteBatch's header and raw contents.
// The store and its journal need to renumber and reconstruct batches; user
// code building mutations has no business here, so these live as free
// functions instead of methods on the public type.

// Sequence returns the sequence number assigned to the first record in b.
func Sequence(b *WriteBatch) uint64 {
	return coding.Fixed64(b.rep[0:8])
}

// SetSequence overwrites the base sequence number in place.
func SetSequence(b *WriteBatch, seq uint64) {
	coding.PutFixed64(b.rep[0:8], seq)
}

// SetCount overwrites the stored record count in place, without touching the
// record stream.
func SetCount(b *WriteBatch, n uint32) {
	b.setCount(n)
}

// Contents returns the full encoded representation, header included. The
// returned slice aliases the batch's buffer and is invalidated by the next
// mutation.
func Contents(b *WriteBatch) []byte {
	return b.rep
}

// SetContents replaces the entire backing buffer with a previously encoded
// batch, e.g. one read back from the journal. contents must carry at least
// the 12-byte header; anything shorter is a programmer error and panics.
func SetContents(b *WriteBatch, contents []byte) {
	if len(contents) < headerSize {
		panic("batch: contents shorter than header")
	}
	b.rep = append(b.rep[:0], contents...)
}

// Append concatenates src's record stream (header excluded) onto dst and adds
// the two counts. dst keeps its own base sequence; sequence numbers are
// assigned at apply time purely from position in the merged stream, so src's
// records are never renumbered here.
func Append(dst, src *WriteBatch) {
	SetCount(dst, dst.Count()+src.Count())
	dst.rep = append(dst.rep, src.rep[headerSize:]...)
}

// SetTimeSource overrides the clock consulted when encoding write-time expiry
// records with the zero sentinel.
func SetTimeSource(b *WriteBatch, tp clock.TimeSource) {
	b.tp = tp
}
