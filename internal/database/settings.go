package database

import (
	"database/sql"
	"time"

	"amazon-price-tracker/internal/models"
)

// GetSettings loads the singleton settings row.
func (db *DB) GetSettings() (*models.Settings, error) {
	var s models.Settings
	var newPct, newDollars, usedPct, usedDollars, target sql.NullFloat64
	var lastRecall, lastImport sql.NullTime

	err := db.conn.QueryRow(`SELECT global_alerts_enabled,
		global_new_pct, global_new_dollars, global_used_pct, global_used_dollars, global_target_price,
		archive_window_days, import_every_hours, last_recall_scan, last_import
		FROM settings WHERE id = 1`).Scan(&s.GlobalAlertsEnabled,
		&newPct, &newDollars, &usedPct, &usedDollars, &target,
		&s.ArchiveWindowDays, &s.ImportEveryHours, &lastRecall, &lastImport)
	if err != nil {
		return nil, err
	}

	s.Global = models.ThresholdSet{
		NewPct:      floatPtr(newPct),
		NewDollars:  floatPtr(newDollars),
		UsedPct:     floatPtr(usedPct),
		UsedDollars: floatPtr(usedDollars),
		TargetPrice: floatPtr(target),
	}
	s.LastRecallScan = timeVal(lastRecall)
	s.LastImport = timeVal(lastImport)
	if s.ArchiveWindowDays <= 0 {
		s.ArchiveWindowDays = models.DefaultArchiveWindowDays
	}
	return &s, nil
}

// SaveSettings persists the tunable fields of the settings row. The
// next sweep picks the new values up; in-flight checks keep the set
// they resolved with.
func (db *DB) SaveSettings(s *models.Settings) error {
	_, err := db.conn.Exec(`UPDATE settings SET global_alerts_enabled = ?,
		global_new_pct = ?, global_new_dollars = ?, global_used_pct = ?, global_used_dollars = ?,
		global_target_price = ?, archive_window_days = ?, import_every_hours = ?
		WHERE id = 1`,
		s.GlobalAlertsEnabled,
		nullFloat(s.Global.NewPct), nullFloat(s.Global.NewDollars),
		nullFloat(s.Global.UsedPct), nullFloat(s.Global.UsedDollars),
		nullFloat(s.Global.TargetPrice), s.ArchiveWindowDays, s.ImportEveryHours)
	return err
}

// SetLastRecallScan records when the recall sweep last completed.
func (db *DB) SetLastRecallScan(t time.Time) error {
	_, err := db.conn.Exec("UPDATE settings SET last_recall_scan = ? WHERE id = 1", t)
	return err
}

// SetLastImport records when the order import last completed.
func (db *DB) SetLastImport(t time.Time) error {
	_, err := db.conn.Exec("UPDATE settings SET last_import = ? WHERE id = 1", t)
	return err
}
