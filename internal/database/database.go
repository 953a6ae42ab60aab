package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection used by every engine component.
type DB struct {
	conn *sql.DB
}

// New opens the database at path and creates the schema if needed.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// churn between the sweep, recall and lifecycle goroutines.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// init creates tables and applies additive column migrations.
func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		asin TEXT PRIMARY KEY,
		title TEXT DEFAULT '',
		url TEXT DEFAULT '',
		source TEXT DEFAULT '',
		order_id TEXT DEFAULT '',
		purchase_price REAL,
		purchase_date DATETIME,
		current_new_price REAL,
		current_used_price REAL,
		availability TEXT DEFAULT 'unknown',
		last_checked DATETIME,
		next_check_due DATETIME,
		last_activity_at DATETIME,
		archived BOOLEAN DEFAULT 0,
		archived_at DATETIME,
		in_progress BOOLEAN DEFAULT 0,
		alert_new_pct REAL,
		alert_new_dollars REAL,
		alert_used_pct REAL,
		alert_used_dollars REAL,
		target_price REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS price_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asin TEXT NOT NULL,
		taken_at DATETIME NOT NULL,
		new_price REAL,
		used_price REAL,
		availability TEXT,
		screenshot_ref TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_asin_time ON price_snapshots(asin, taken_at);

	CREATE TABLE IF NOT EXISTS alert_records (
		id TEXT PRIMARY KEY,
		asin TEXT NOT NULL,
		kind TEXT NOT NULL,
		price REAL,
		recall_ref TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_asin_kind ON alert_records(asin, kind);

	CREATE TABLE IF NOT EXISTS recall_matches (
		asin TEXT NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		number TEXT DEFAULT '',
		title TEXT DEFAULT '',
		description TEXT DEFAULT '',
		url TEXT DEFAULT '',
		hazard TEXT DEFAULT '',
		remedy TEXT DEFAULT '',
		recall_date TEXT DEFAULT '',
		contact TEXT DEFAULT '',
		dismissed BOOLEAN DEFAULT 0,
		first_seen DATETIME NOT NULL,
		PRIMARY KEY (asin, source, source_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		global_alerts_enabled BOOLEAN DEFAULT 0,
		global_new_pct REAL,
		global_new_dollars REAL,
		global_used_pct REAL,
		global_used_dollars REAL,
		global_target_price REAL,
		archive_window_days INTEGER DEFAULT 35,
		import_every_hours INTEGER DEFAULT 12,
		last_recall_scan DATETIME,
		last_import DATETIME
	);
	INSERT OR IGNORE INTO settings (id) VALUES (1);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Additive migrations for databases created by older builds.
	// sqlite has no IF NOT EXISTS for ALTER TABLE, so errors are ignored.
	_, _ = db.conn.Exec("ALTER TABLE products ADD COLUMN target_price REAL")
	_, _ = db.conn.Exec("ALTER TABLE products ADD COLUMN in_progress BOOLEAN DEFAULT 0")
	_, _ = db.conn.Exec("ALTER TABLE products ADD COLUMN last_activity_at DATETIME")
	_, _ = db.conn.Exec("ALTER TABLE settings ADD COLUMN global_target_price REAL")

	return nil
}

// ResetInProgressMarkers clears check markers left behind by a crash
// mid-check. Must run once at startup, before the first sweep, or the
// affected products would stall forever.
func (db *DB) ResetInProgressMarkers() error {
	res, err := db.conn.Exec("UPDATE products SET in_progress = 0 WHERE in_progress = 1")
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("Reset %d stale in-progress marker(s) from a previous run", n)
	}
	return nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func timeVal(n sql.NullTime) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return n.Time
}
