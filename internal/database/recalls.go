package database

import (
	"amazon-price-tracker/internal/models"
)

// InsertRecallMatch stores a new recall match. Returns false when the
// (asin, source, source id) row already exists, dismissed or not, which
// is what keeps a feed that re-serves the same entry from re-alerting.
func (db *DB) InsertRecallMatch(m models.RecallMatch) (bool, error) {
	res, err := db.conn.Exec(`INSERT OR IGNORE INTO recall_matches
		(asin, source, source_id, number, title, description, url, hazard, remedy, recall_date, contact, dismissed, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		m.ASIN, m.Source, m.SourceID, m.Number, m.Title, m.Description,
		m.URL, m.Hazard, m.Remedy, m.Date, m.Contact, m.FirstSeen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// HasDismissedMatch reports whether the product carries any dismissed
// recall from the given source.
func (db *DB) HasDismissedMatch(asin, source string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(1) FROM recall_matches WHERE asin = ? AND source = ? AND dismissed = 1",
		asin, source).Scan(&n)
	return n > 0, err
}

// DismissRecall marks a match dismissed. Dismissal is permanent for the
// (asin, source id) pair; re-scans never clear it.
func (db *DB) DismissRecall(asin, source, sourceID string) error {
	_, err := db.conn.Exec(
		"UPDATE recall_matches SET dismissed = 1 WHERE asin = ? AND source = ? AND source_id = ?",
		asin, source, sourceID)
	return err
}

// ClearRecall removes a match entirely. This is the explicit un-dismiss
// operation: the next scan may then record the same source id as a
// fresh match. The alert record survives, so delivery still happens at
// most once per (asin, source id).
func (db *DB) ClearRecall(asin, source, sourceID string) error {
	_, err := db.conn.Exec(
		"DELETE FROM recall_matches WHERE asin = ? AND source = ? AND source_id = ?",
		asin, source, sourceID)
	return err
}

// RecallMatches returns every match recorded for a product.
func (db *DB) RecallMatches(asin string) ([]models.RecallMatch, error) {
	rows, err := db.conn.Query(`SELECT asin, source, source_id, number, title, description,
		url, hazard, remedy, recall_date, contact, dismissed, first_seen
		FROM recall_matches WHERE asin = ? ORDER BY first_seen`, asin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.RecallMatch
	for rows.Next() {
		var m models.RecallMatch
		if err := rows.Scan(&m.ASIN, &m.Source, &m.SourceID, &m.Number, &m.Title, &m.Description,
			&m.URL, &m.Hazard, &m.Remedy, &m.Date, &m.Contact, &m.Dismissed, &m.FirstSeen); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
