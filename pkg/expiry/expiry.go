// Package expiry provides apply-time normalization of expiring inserts. The
// store injects a policy into the batch applier; the batch subsystem itself
// never interprets expiry values.
package expiry

import (
	"time"

	"batchkv/pkg/batch"
	"batchkv/pkg/clock"
)

// TTLPolicy converts write-time inserts into explicit-expiry records whose
// deadline is the write timestamp plus TTL. Explicit expiries and plain
// inserts pass through verbatim. It implements batch.ExpiryPolicy.
type TTLPolicy struct {
	ttl time.Duration
	tp  clock.TimeSource
}

func NewTTL(ttl time.Duration, tp clock.TimeSource) *TTLPolicy {
	if tp == nil {
		tp = clock.System{}
	}
	return &TTLPolicy{ttl: ttl, tp: tp}
}

func (p *TTLPolicy) Normalize(key, value []byte, kind batch.Kind, expiry uint64) (batch.Kind, uint64) {
	if kind != batch.KindInsertWriteTime {
		return kind, expiry
	}

	// The encoder usually stamps the write time already; a zero that slipped
	// through (e.g. a hand-built batch) is stamped here.
	if expiry == 0 {
		expiry = uint64(p.tp.Now().UnixMilli())
	}

	return batch.KindInsertExplicitExpiry, expiry + uint64(p.ttl.Milliseconds())
}
