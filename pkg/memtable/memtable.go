package memtable

import (
	"bytes"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"

	"batchkv/pkg/batch"
)

// per-entry bookkeeping beyond key and value bytes: sequence, kind, expiry
const entryOverhead = 17

type internalKey struct {
	user []byte
	seq  uint64
}

// Entries order by user key ascending, then sequence descending, so the
// newest version of a key sorts first among its versions.
func internalLess(a, b internalKey) bool {
	if c := bytes.Compare(a.user, b.user); c != 0 {
		return c < 0
	}
	return a.seq > b.seq
}

// Memtable is the ordered in-memory table mutations are applied into. Every
// applied version is retained under its own sequence number; deletions are
// tombstone versions, not removals.
//
// All methods are safe for concurrent use, but writers must keep sequence
// numbers for the same key distinct.
type Memtable struct {
	entries *skipmap.FuncMap[internalKey, Item]
	size    atomic.Uint64
}

func New() *Memtable {
	return &Memtable{
		entries: skipmap.NewFunc[internalKey, Item](internalLess),
	}
}

// Add inserts one mutation version. It implements batch.Table. Key and value
// are copied; the caller may reuse its buffers.
func (mt *Memtable) Add(seq uint64, kind batch.Kind, key, value []byte, expiry uint64) error {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	mt.entries.Store(internalKey{user: k, seq: seq}, Item{
		Key:    k,
		Value:  v,
		SeqNum: seq,
		Kind:   kind,
		Expiry: expiry,
	})
	mt.size.Add(uint64(len(k)+len(v)) + entryOverhead)

	return nil
}

// Get returns the newest version recorded for key. A found tombstone is
// returned as-is; interpreting it is the caller's concern.
func (mt *Memtable) Get(key []byte) (Item, bool) {
	var (
		item  Item
		found bool
	)
	mt.entries.Range(func(k internalKey, v Item) bool {
		switch bytes.Compare(k.user, key) {
		case -1:
			return true
		case 0:
			item, found = v, true
		}
		return false
	})
	return item, found
}

// Range visits every version in (key asc, sequence desc) order until f
// returns false.
func (mt *Memtable) Range(f func(Item) bool) {
	mt.entries.Range(func(_ internalKey, v Item) bool {
		return f(v)
	})
}

// Len reports the number of retained versions.
func (mt *Memtable) Len() int {
	return mt.entries.Len()
}

// ApproximateBytes reports the table's memory footprint estimate.
func (mt *Memtable) ApproximateBytes() uint64 {
	return mt.size.Load()
}
