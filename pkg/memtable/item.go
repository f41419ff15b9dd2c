package memtable

import (
	"batchkv/pkg/batch"
	"batchkv/pkg/types"
)

// Item is one applied mutation version.
type Item struct {
	Key    types.Key
	Value  types.Value
	SeqNum types.SeqNum
	Kind   batch.Kind
	Expiry uint64
}

// Tombstone reports whether the item marks a deletion.
func (it *Item) Tombstone() bool {
	return it.Kind == batch.KindDelete
}
