package monitor

import (
	"math/rand"
	"testing"
	"time"
)

func TestRandomWindowStaysInBounds(t *testing.T) {
	policy := RandomWindow(2*time.Hour, 4*time.Hour, rand.NewSource(1))
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		next := policy(last)
		gap := next.Sub(last)
		if gap < 2*time.Hour || gap >= 4*time.Hour {
			t.Fatalf("draw %d: gap %v outside [2h, 4h)", i, gap)
		}
	}
}

func TestRandomWindowVaries(t *testing.T) {
	policy := RandomWindow(2*time.Hour, 4*time.Hour, rand.NewSource(1))
	last := time.Now()

	seen := make(map[time.Time]bool)
	for i := 0; i < 50; i++ {
		seen[policy(last)] = true
	}
	// A fixed interval would collapse to one value.
	if len(seen) < 10 {
		t.Errorf("only %d distinct draws in 50, window not randomized", len(seen))
	}
}

func TestRandomWindowDeterministicPerSeed(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := RandomWindow(2*time.Hour, 4*time.Hour, rand.NewSource(7))
	b := RandomWindow(2*time.Hour, 4*time.Hour, rand.NewSource(7))
	for i := 0; i < 20; i++ {
		if got, want := a(last), b(last); !got.Equal(want) {
			t.Fatalf("draw %d: %v != %v with same seed", i, got, want)
		}
	}
}

func TestLockTableReturnsSameLockPerKey(t *testing.T) {
	tbl := newLockTable()
	if tbl.get("B00LOCK001") != tbl.get("B00LOCK001") {
		t.Error("same key produced different locks")
	}
	if tbl.get("B00LOCK001") == tbl.get("B00LOCK002") {
		t.Error("different keys share a lock")
	}
}
