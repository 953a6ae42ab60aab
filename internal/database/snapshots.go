package database

import (
	"database/sql"

	"amazon-price-tracker/internal/models"
)

// InsertSnapshot appends one price observation. Snapshots are never
// updated or deleted by the engine.
func (db *DB) InsertSnapshot(s models.PriceSnapshot) error {
	_, err := db.conn.Exec(`INSERT INTO price_snapshots
		(asin, taken_at, new_price, used_price, availability, screenshot_ref)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ASIN, s.TakenAt, nullFloat(s.NewPrice), nullFloat(s.UsedPrice),
		string(s.Availability), s.ScreenshotRef)
	return err
}

// Snapshots returns the most recent observations for a product, newest
// first.
func (db *DB) Snapshots(asin string, limit int) ([]models.PriceSnapshot, error) {
	rows, err := db.conn.Query(`SELECT asin, taken_at, new_price, used_price, availability, screenshot_ref
		FROM price_snapshots WHERE asin = ? ORDER BY taken_at DESC LIMIT ?`, asin, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.PriceSnapshot
	for rows.Next() {
		var s models.PriceSnapshot
		var newPrice, usedPrice sql.NullFloat64
		var avail string
		if err := rows.Scan(&s.ASIN, &s.TakenAt, &newPrice, &usedPrice, &avail, &s.ScreenshotRef); err != nil {
			return nil, err
		}
		s.NewPrice = floatPtr(newPrice)
		s.UsedPrice = floatPtr(usedPrice)
		s.Availability = models.Availability(avail)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
