package monitor

import (
	"math/rand"
	"sync"
	"time"
)

// IntervalPolicy draws the time a product is next due after a check
// that finished at last. Randomized in production so the fetch pattern
// stays unpredictable; injectable so scheduling tests are reproducible.
type IntervalPolicy func(last time.Time) time.Time

// RandomWindow returns a policy drawing uniformly from [min, max) past
// last. The rand source is supplied by the caller (fixed seed in tests).
func RandomWindow(min, max time.Duration, src rand.Source) IntervalPolicy {
	rng := rand.New(src)
	var mu sync.Mutex // rand.Rand is not safe for concurrent use
	return func(last time.Time) time.Time {
		mu.Lock()
		defer mu.Unlock()
		return last.Add(min + time.Duration(rng.Int63n(int64(max-min))))
	}
}

// lockTable hands out one mutex per product so the classify→dedupe→
// record section runs in a per-product critical section even if the
// in-progress marker were ever bypassed.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}
