package wal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"batchkv/pkg/dberrors"
)

func TestAppendReplay(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	payloads := [][]byte{
		[]byte("first batch contents"),
		[]byte("second"),
		{},
	}
	for i, p := range payloads {
		if err := w.Append(p); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	var got [][]byte
	err = w.Replay(func(payload []byte) error {
		got = append(got, append([]byte(nil), payload...))
		return nil
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	if len(got) != len(payloads) {
		t.Fatalf("expected %d payloads, got %d", len(payloads), len(got))
	}
	for i := range payloads {
		if !bytes.Equal(got[i], payloads[i]) {
			t.Fatalf("payload %d: expected %q, got %q", i, payloads[i], got[i])
		}
	}
}

func TestReplaySurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Append([]byte("durable")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer w2.Close()

	count := 0
	err = w2.Replay(func(payload []byte) error {
		count++
		if string(payload) != "durable" {
			t.Fatalf("expected 'durable', got %q", payload)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Replay after reopen failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 payload, got %d", count)
	}
}

func TestReplayDetectsCorruptedPayload(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Append([]byte("to be damaged")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Flip one payload byte on disk (past the 8-byte frame header).
	path := filepath.Join(dir, "wal.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[frameHeaderSize] ^= 0xFF
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	err = w.Replay(func([]byte) error { return nil })
	if !errors.Is(err, dberrors.ErrCorruption) {
		t.Fatalf("expected ErrCorruption, got %v", err)
	}
}

func TestReplayDetectsTruncatedFrame(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Append([]byte("going to lose my tail")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path := filepath.Join(dir, "wal.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-5], 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer w2.Close()

	err = w2.Replay(func([]byte) error { return nil })
	if !errors.Is(err, dberrors.ErrCorruption) {
		t.Fatalf("expected ErrCorruption, got %v", err)
	}
}

func TestAppendAfterCloseFails(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := w.Append([]byte("late")); !errors.Is(err, dberrors.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
