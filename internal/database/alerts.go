package database

import (
	"database/sql"

	"amazon-price-tracker/internal/models"
)

// LowestAlertedPrice returns the dedup floor: the lowest price that has
// ever triggered the given kind for the product, or nil when no alert
// of that kind exists yet.
func (db *DB) LowestAlertedPrice(asin string, kind models.TriggerKind) (*float64, error) {
	var lowest sql.NullFloat64
	err := db.conn.QueryRow(
		"SELECT MIN(price) FROM alert_records WHERE asin = ? AND kind = ?",
		asin, string(kind)).Scan(&lowest)
	if err != nil {
		return nil, err
	}
	return floatPtr(lowest), nil
}

// RecallAlertExists reports whether a recall alert for this source id
// was already dispatched for the product.
func (db *DB) RecallAlertExists(asin, recallRef string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(1) FROM alert_records WHERE asin = ? AND kind = ? AND recall_ref = ?",
		asin, string(models.TriggerRecall), recallRef).Scan(&n)
	return n > 0, err
}

// InsertAlert records an approved dispatch.
func (db *DB) InsertAlert(rec models.AlertRecord) error {
	_, err := db.conn.Exec(`INSERT INTO alert_records (id, asin, kind, price, recall_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ASIN, string(rec.Kind), nullFloat(rec.Price), rec.RecallRef, rec.CreatedAt)
	return err
}

// Alerts returns every alert recorded for a product, oldest first.
func (db *DB) Alerts(asin string) ([]models.AlertRecord, error) {
	rows, err := db.conn.Query(`SELECT id, asin, kind, price, recall_ref, created_at
		FROM alert_records WHERE asin = ? ORDER BY created_at`, asin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.AlertRecord
	for rows.Next() {
		var a models.AlertRecord
		var price sql.NullFloat64
		var kind string
		if err := rows.Scan(&a.ID, &a.ASIN, &kind, &price, &a.RecallRef, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = models.TriggerKind(kind)
		a.Price = floatPtr(price)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
