package clock

import "sync/atomic"

// AtomicClock hands out sequence numbers. The store owns one per table and
// restores it from the journal on startup.
type AtomicClock struct {
	atomic.Uint64
}

func NewAtomic(init uint64) *AtomicClock {
	var ac AtomicClock
	ac.Set(init)
	return &ac
}

func (ac *AtomicClock) Val() uint64 {
	return ac.Load()
}

func (ac *AtomicClock) Next() uint64 {
	return ac.Add(1)
}

// Reserve allocates n consecutive sequence numbers and returns the first.
func (ac *AtomicClock) Reserve(n uint64) uint64 {
	return ac.Add(n) - n + 1
}

func (ac *AtomicClock) Set(t uint64) {
	ac.Store(t)
}
