// Package alert gates notification dispatch so the same price event
// never notifies twice.
package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/models"
)

// Deduper approves at most one alert per (product, trigger kind) price
// floor. The caller must hold the product's check lock across the
// check-and-record pair; the invariant is enforced before the write,
// never repaired after it.
type Deduper struct {
	db *database.DB
}

// NewDeduper creates a deduplicator backed by the given store.
func NewDeduper(db *database.DB) *Deduper {
	return &Deduper{db: db}
}

// ApprovePrice decides whether a price trigger may dispatch. Approval
// requires the observed price to be strictly below the lowest price
// that has ever alerted this kind for this product; a price oscillating
// at or above an alerted floor stays silent. On approval the
// AlertRecord is written immediately, which is what moves the floor.
func (d *Deduper) ApprovePrice(asin string, kind models.TriggerKind, price float64) (bool, error) {
	floor, err := d.db.LowestAlertedPrice(asin, kind)
	if err != nil {
		return false, fmt.Errorf("reading dedup floor for %s/%s: %w", asin, kind, err)
	}
	if floor != nil && price >= *floor {
		return false, nil
	}
	rec := models.AlertRecord{
		ID:        uuid.NewString(),
		ASIN:      asin,
		Kind:      kind,
		Price:     &price,
		CreatedAt: time.Now(),
	}
	if err := d.db.InsertAlert(rec); err != nil {
		return false, fmt.Errorf("recording alert for %s/%s: %w", asin, kind, err)
	}
	return true, nil
}

// ApproveRecall decides whether a recall alert may dispatch: exactly
// once per (product, recall source id).
func (d *Deduper) ApproveRecall(asin, recallRef string) (bool, error) {
	exists, err := d.db.RecallAlertExists(asin, recallRef)
	if err != nil {
		return false, fmt.Errorf("reading recall alerts for %s: %w", asin, err)
	}
	if exists {
		return false, nil
	}
	rec := models.AlertRecord{
		ID:        uuid.NewString(),
		ASIN:      asin,
		Kind:      models.TriggerRecall,
		RecallRef: recallRef,
		CreatedAt: time.Now(),
	}
	if err := d.db.InsertAlert(rec); err != nil {
		return false, fmt.Errorf("recording recall alert for %s: %w", asin, err)
	}
	return true, nil
}
