package expiry

import (
	"testing"
	"time"

	"batchkv/pkg/batch"
)

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

func TestNormalizeWriteTime(t *testing.T) {
	p := NewTTL(time.Minute, fixedTime{now: time.UnixMilli(1000)})

	kind, expiry := p.Normalize([]byte("k"), []byte("v"), batch.KindInsertWriteTime, 2000)
	if kind != batch.KindInsertExplicitExpiry {
		t.Fatalf("expected explicit expiry kind, got %v", kind)
	}
	if want := uint64(2000 + 60_000); expiry != want {
		t.Fatalf("expected expiry %d, got %d", want, expiry)
	}
}

func TestNormalizeWriteTimeZeroStamps(t *testing.T) {
	p := NewTTL(time.Second, fixedTime{now: time.UnixMilli(5000)})

	_, expiry := p.Normalize([]byte("k"), []byte("v"), batch.KindInsertWriteTime, 0)
	if want := uint64(5000 + 1000); expiry != want {
		t.Fatalf("expected expiry %d, got %d", want, expiry)
	}
}

func TestNormalizePassThrough(t *testing.T) {
	p := NewTTL(time.Minute, fixedTime{now: time.UnixMilli(1000)})

	kind, expiry := p.Normalize([]byte("k"), []byte("v"), batch.KindInsertExplicitExpiry, 42)
	if kind != batch.KindInsertExplicitExpiry || expiry != 42 {
		t.Fatalf("explicit expiry must pass through verbatim, got %v/%d", kind, expiry)
	}

	kind, expiry = p.Normalize([]byte("k"), []byte("v"), batch.KindInsert, 0)
	if kind != batch.KindInsert || expiry != 0 {
		t.Fatalf("plain insert must pass through verbatim, got %v/%d", kind, expiry)
	}
}
