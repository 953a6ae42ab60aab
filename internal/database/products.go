package database

import (
	"database/sql"
	"time"

	"amazon-price-tracker/internal/models"
)

const productColumns = `asin, title, url, source, order_id, purchase_price, purchase_date,
	current_new_price, current_used_price, availability, last_checked, next_check_due,
	last_activity_at, archived, archived_at, in_progress,
	alert_new_pct, alert_new_dollars, alert_used_pct, alert_used_dollars, target_price, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var purchasePrice, curNew, curUsed sql.NullFloat64
	var newPct, newDollars, usedPct, usedDollars, target sql.NullFloat64
	var purchaseDate, lastChecked, nextDue, lastActivity, archivedAt, createdAt sql.NullTime
	var availability sql.NullString

	err := row.Scan(&p.ASIN, &p.Title, &p.URL, &p.Source, &p.OrderID, &purchasePrice, &purchaseDate,
		&curNew, &curUsed, &availability, &lastChecked, &nextDue,
		&lastActivity, &p.Archived, &archivedAt, &p.InProgress,
		&newPct, &newDollars, &usedPct, &usedDollars, &target, &createdAt)
	if err != nil {
		return nil, err
	}

	p.PurchasePrice = floatPtr(purchasePrice)
	p.PurchaseDate = timeVal(purchaseDate)
	p.CurrentNewPrice = floatPtr(curNew)
	p.CurrentUsedPrice = floatPtr(curUsed)
	p.Availability = models.AvailabilityUnknown
	if availability.Valid && availability.String != "" {
		p.Availability = models.Availability(availability.String)
	}
	p.LastChecked = timeVal(lastChecked)
	p.NextCheckDue = timeVal(nextDue)
	p.LastActivityAt = timeVal(lastActivity)
	p.ArchivedAt = timeVal(archivedAt)
	p.CreatedAt = timeVal(createdAt)
	p.Thresholds = models.ThresholdSet{
		NewPct:      floatPtr(newPct),
		NewDollars:  floatPtr(newDollars),
		UsedPct:     floatPtr(usedPct),
		UsedDollars: floatPtr(usedDollars),
		TargetPrice: floatPtr(target),
	}
	return &p, nil
}

// CreateProduct inserts a new tracked product.
func (db *DB) CreateProduct(p *models.Product) error {
	_, err := db.conn.Exec(`INSERT INTO products
		(asin, title, url, source, order_id, purchase_price, purchase_date,
		 availability, next_check_due, last_activity_at,
		 alert_new_pct, alert_new_dollars, alert_used_pct, alert_used_dollars, target_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ASIN, p.Title, p.URL, p.Source, p.OrderID, nullFloat(p.PurchasePrice), nullTime(p.PurchaseDate),
		string(models.AvailabilityUnknown), nullTime(p.NextCheckDue), nullTime(p.LastActivityAt),
		nullFloat(p.Thresholds.NewPct), nullFloat(p.Thresholds.NewDollars),
		nullFloat(p.Thresholds.UsedPct), nullFloat(p.Thresholds.UsedDollars),
		nullFloat(p.Thresholds.TargetPrice), time.Now())
	return err
}

// GetProduct returns a product by ASIN, or nil when it is not tracked.
func (db *DB) GetProduct(asin string) (*models.Product, error) {
	row := db.conn.QueryRow("SELECT "+productColumns+" FROM products WHERE asin = ?", asin)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) queryProducts(query string, args ...any) ([]models.Product, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ActiveProducts returns every non-archived product.
func (db *DB) ActiveProducts() ([]models.Product, error) {
	return db.queryProducts("SELECT " + productColumns + " FROM products WHERE archived = 0")
}

// DueProducts returns active products whose next check has come due and
// that are not currently mid-check.
func (db *DB) DueProducts(now time.Time) ([]models.Product, error) {
	return db.queryProducts("SELECT "+productColumns+` FROM products
		WHERE archived = 0 AND in_progress = 0
		  AND (next_check_due IS NULL OR next_check_due <= ?)`, now)
}

// ClaimCheck atomically sets the in-progress marker. It reports false
// when the product is already mid-check (or archived), which is what
// keeps overlapping sweeps from double-dispatching a product.
func (db *DB) ClaimCheck(asin string) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE products SET in_progress = 1 WHERE asin = ? AND in_progress = 0 AND archived = 0",
		asin)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// FinishCheck clears the in-progress marker and advances the schedule.
// Runs on every completion path, success or failure.
func (db *DB) FinishCheck(asin string, lastChecked, nextDue time.Time) error {
	_, err := db.conn.Exec(
		"UPDATE products SET in_progress = 0, last_checked = ?, next_check_due = ? WHERE asin = ?",
		lastChecked, nextDue, asin)
	return err
}

// UpdatePrices writes the resolved price state after a successful fetch.
// The caller passes the prior value for any kind the page did not carry,
// so an unavailable price never erases the delta baseline.
func (db *DB) UpdatePrices(asin string, newPrice, usedPrice *float64, avail models.Availability) error {
	_, err := db.conn.Exec(
		"UPDATE products SET current_new_price = ?, current_used_price = ?, availability = ? WHERE asin = ?",
		nullFloat(newPrice), nullFloat(usedPrice), string(avail), asin)
	return err
}

// TouchActivity records a price change (or other reactivating event) as
// the product's latest activity, restarting the archive countdown.
func (db *DB) TouchActivity(asin string, at time.Time) error {
	_, err := db.conn.Exec("UPDATE products SET last_activity_at = ? WHERE asin = ?", at, asin)
	return err
}

// UpdateTitle replaces the stored title.
func (db *DB) UpdateTitle(asin, title string) error {
	_, err := db.conn.Exec("UPDATE products SET title = ? WHERE asin = ?", title, asin)
	return err
}

// UpdateThresholds replaces the per-product threshold set.
func (db *DB) UpdateThresholds(asin string, ts models.ThresholdSet) error {
	_, err := db.conn.Exec(`UPDATE products SET alert_new_pct = ?, alert_new_dollars = ?,
		alert_used_pct = ?, alert_used_dollars = ?, target_price = ? WHERE asin = ?`,
		nullFloat(ts.NewPct), nullFloat(ts.NewDollars),
		nullFloat(ts.UsedPct), nullFloat(ts.UsedDollars), nullFloat(ts.TargetPrice), asin)
	return err
}

// ArchiveInactiveBefore archives every active product whose last
// activity predates the cutoff. Returns how many were archived.
func (db *DB) ArchiveInactiveBefore(cutoff, now time.Time) (int64, error) {
	res, err := db.conn.Exec(`UPDATE products SET archived = 1, archived_at = ?
		WHERE archived = 0 AND last_activity_at IS NOT NULL AND last_activity_at < ?`,
		now, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReactivateProduct restores an archived product and restarts its
// archive countdown from now. Safe to call on an already-active product.
func (db *DB) ReactivateProduct(asin string, now time.Time) error {
	_, err := db.conn.Exec(`UPDATE products SET archived = 0, archived_at = NULL,
		last_activity_at = ?, next_check_due = ? WHERE asin = ?`,
		now, now, asin)
	return err
}

// ApplyOrder refreshes purchase fields from a re-imported order and
// restores the product if it had been archived.
func (db *DB) ApplyOrder(asin string, order models.Order, target *float64, now time.Time) error {
	_, err := db.conn.Exec(`UPDATE products SET source = 'orders', order_id = ?,
		purchase_price = ?, purchase_date = ?, target_price = ?,
		archived = 0, archived_at = NULL, last_activity_at = ?, next_check_due = ?
		WHERE asin = ?`,
		order.OrderID, nullFloat(order.PurchasePrice), nullTime(order.OrderDate),
		nullFloat(target), now, now, asin)
	return err
}
