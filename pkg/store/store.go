// Package store is the engine facade: it allocates base sequence numbers,
// journals encoded batches, and applies them into the memtable.
package store

import (
	"fmt"
	"sync"

	"batchkv/pkg/batch"
	"batchkv/pkg/clock"
	"batchkv/pkg/dberrors"
	"batchkv/pkg/memtable"
	"batchkv/pkg/types"
	"batchkv/pkg/wal"
)

type iJournal interface {
	Append(contents []byte) error
	Replay(callback func(payload []byte) error) error
	Close() error
}

type iClock interface {
	Val() uint64
	Reserve(n uint64) uint64
	Set(t uint64)
}

// Options configures Open. Zero values get sensible defaults except DataDir,
// which is required.
type Options struct {
	DataDir string

	// TimeSource drives expiry checks on reads. Defaults to the system clock.
	TimeSource clock.TimeSource

	// Policy, when set, normalizes expiring inserts at apply time.
	Policy batch.ExpiryPolicy
}

type Store struct {
	// mu serializes Write: at most one apply is in flight against the table,
	// and journal order matches sequence order.
	mu     sync.Mutex
	closed bool

	tp     clock.TimeSource
	jr     iJournal
	seqN   iClock
	policy batch.ExpiryPolicy

	mt *memtable.Memtable
}

// Open creates or recovers a store under opts.DataDir, replaying the journal
// into a fresh memtable and restoring the sequence clock.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("%w: empty data dir", dberrors.ErrInvalidArgument)
	}
	if opts.TimeSource == nil {
		opts.TimeSource = clock.System{}
	}

	journal, err := wal.New(opts.DataDir)
	if err != nil {
		return nil, err
	}

	s := &Store{
		tp:     opts.TimeSource,
		jr:     journal,
		seqN:   clock.NewAtomic(0),
		policy: opts.Policy,
		mt:     memtable.New(),
	}

	if err := s.restoreFromJournal(); err != nil {
		_ = journal.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) restoreFromJournal() error {
	b := batch.New()
	return s.jr.Replay(func(payload []byte) error {
		if len(payload) < batch.HeaderSize {
			return fmt.Errorf("%w: journaled batch too small", dberrors.ErrCorruption)
		}
		batch.SetContents(b, payload)

		if err := batch.InsertInto(b, s.mt, s.policy); err != nil {
			return err
		}

		if n := uint64(b.Count()); n > 0 {
			if last := batch.Sequence(b) + n - 1; last > s.seqN.Val() {
				s.seqN.Set(last)
			}
		}
		return nil
	})
}

// Write applies b atomically: assigns its base sequence, journals the encoded
// contents, and inserts every record into the memtable. The batch keeps its
// assigned sequence afterwards.
//
// On a corrupt batch the memtable retains the records applied before the
// failure point; the journal entry was written first, so recovery replays the
// same prefix.
func (s *Store) Write(b *batch.WriteBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}

	n := uint64(b.Count())
	if n == 0 {
		return nil
	}

	batch.SetSequence(b, s.seqN.Reserve(n))

	if err := s.jr.Append(batch.Contents(b)); err != nil {
		return fmt.Errorf("failed to journal batch: %w", err)
	}

	return batch.InsertInto(b, s.mt, s.policy)
}

// Put writes a single plain insert.
func (s *Store) Put(key types.Key, value types.Value) error {
	b := batch.New()
	b.Put(key, value)
	return s.Write(b)
}

// PutWithExpiry writes a single insert of the variant meta selects.
// Write-time stamping uses the store's time source.
func (s *Store) PutWithExpiry(key types.Key, value types.Value, meta batch.Meta) error {
	b := batch.New()
	batch.SetTimeSource(b, s.tp)
	b.PutWithExpiry(key, value, meta)
	return s.Write(b)
}

// Delete writes a single deletion tombstone.
func (s *Store) Delete(key types.Key) error {
	b := batch.New()
	b.Delete(key)
	return s.Write(b)
}

// Get returns the newest value for key. Tombstoned keys and entries whose
// explicit expiry has passed read as absent. Write-time entries that no
// policy converted carry their write timestamp, not a deadline, and never
// expire here.
func (s *Store) Get(key types.Key) (types.Value, bool, error) {
	item, ok := s.mt.Get(key)
	if !ok {
		return nil, false, nil
	}

	if item.Tombstone() {
		return nil, false, nil
	}
	if item.Kind == batch.KindInsertExplicitExpiry && item.Expiry != 0 {
		if uint64(s.tp.Now().UnixMilli()) >= item.Expiry {
			return nil, false, nil
		}
	}

	return item.Value, true, nil
}

// LastSequence reports the highest sequence number assigned so far.
func (s *Store) LastSequence() types.SeqNum {
	return s.seqN.Val()
}

// Close flushes and closes the journal. Further writes fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.jr.Close()
}
