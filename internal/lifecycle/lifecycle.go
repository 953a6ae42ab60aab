// Package lifecycle retires products that have gone quiet and brings
// them back when they matter again.
package lifecycle

import (
	"log"
	"time"

	"amazon-price-tracker/internal/database"
)

// Manager archives products whose last meaningful activity is older
// than the configured window. Archived products drop out of checking
// and recall scanning but keep their history.
type Manager struct {
	db    *database.DB
	every time.Duration
	quit  chan struct{}
}

func NewManager(db *database.DB, every time.Duration) *Manager {
	return &Manager{db: db, every: every, quit: make(chan struct{})}
}

// Start sweeps immediately and then on the configured cadence until
// Stop.
func (m *Manager) Start() {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()
	m.sweep()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.quit:
			return
		}
	}
}

func (m *Manager) Stop() {
	close(m.quit)
}

func (m *Manager) sweep() {
	if n, err := m.RunOnce(time.Now()); err != nil {
		log.Printf("LifecycleError: %v", err)
	} else if n > 0 {
		log.Printf("Lifecycle: archived %d inactive products", n)
	}
}

// RunOnce archives every active product inactive for longer than the
// archive window and returns how many were archived.
func (m *Manager) RunOnce(now time.Time) (int64, error) {
	settings, err := m.db.GetSettings()
	if err != nil {
		return 0, err
	}
	cutoff := now.AddDate(0, 0, -settings.ArchiveWindowDays)
	return m.db.ArchiveInactiveBefore(cutoff, now)
}

// Reactivate restores an archived product to active checking with a
// fresh activity clock. Reactivating an already active product is a
// no-op.
func (m *Manager) Reactivate(asin string) error {
	return m.db.ReactivateProduct(asin, time.Now())
}
