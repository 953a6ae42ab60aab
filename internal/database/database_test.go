package database

import (
	"path/filepath"
	"testing"
	"time"

	"amazon-price-tracker/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func f(v float64) *float64 { return &v }

func seedProduct(t *testing.T, db *DB, asin string) {
	t.Helper()
	p := &models.Product{
		ASIN:           asin,
		Title:          "Anker USB C Charger 65W",
		URL:            "https://www.amazon.com/dp/" + asin,
		PurchasePrice:  f(49.99),
		LastActivityAt: time.Now(),
	}
	if err := db.CreateProduct(p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
}

func TestGetProductMissing(t *testing.T) {
	db := newTestDB(t)
	p, err := db.GetProduct("B000000000")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p != nil {
		t.Errorf("GetProduct returned %+v for untracked ASIN", p)
	}
}

func TestProductRoundTrip(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "B00TESTASI")

	p, err := db.GetProduct("B00TESTASI")
	if err != nil || p == nil {
		t.Fatalf("GetProduct: %v, %v", p, err)
	}
	if p.Title != "Anker USB C Charger 65W" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.PurchasePrice == nil || *p.PurchasePrice != 49.99 {
		t.Errorf("PurchasePrice = %v", p.PurchasePrice)
	}
	if p.CurrentNewPrice != nil {
		t.Errorf("CurrentNewPrice = %v, want nil before first check", *p.CurrentNewPrice)
	}
	if p.Availability != models.AvailabilityUnknown {
		t.Errorf("Availability = %q", p.Availability)
	}
	if p.Archived || p.InProgress {
		t.Errorf("fresh product archived=%v in_progress=%v", p.Archived, p.InProgress)
	}
}

func TestClaimCheckIsExclusive(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "B00CLAIM01")

	claimed, err := db.ClaimCheck("B00CLAIM01")
	if err != nil || !claimed {
		t.Fatalf("first claim = %v, %v", claimed, err)
	}
	claimed, err = db.ClaimCheck("B00CLAIM01")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Error("second claim succeeded while marker was set")
	}

	now := time.Now()
	if err := db.FinishCheck("B00CLAIM01", now, now.Add(3*time.Hour)); err != nil {
		t.Fatalf("FinishCheck: %v", err)
	}
	claimed, err = db.ClaimCheck("B00CLAIM01")
	if err != nil || !claimed {
		t.Errorf("claim after finish = %v, %v", claimed, err)
	}
}

func TestDueProductsRespectsScheduleAndMarkers(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "B00DUE0001")
	now := time.Now()

	// No next_check_due yet: due immediately.
	due, err := db.DueProducts(now)
	if err != nil {
		t.Fatalf("DueProducts: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("len(due) = %d, want 1", len(due))
	}

	// Scheduled in the future: not due.
	if err := db.FinishCheck("B00DUE0001", now, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("FinishCheck: %v", err)
	}
	due, _ = db.DueProducts(now)
	if len(due) != 0 {
		t.Errorf("len(due) = %d after scheduling ahead, want 0", len(due))
	}

	// Past due again, but mid-check: not selectable.
	if err := db.FinishCheck("B00DUE0001", now, now.Add(-time.Minute)); err != nil {
		t.Fatalf("FinishCheck: %v", err)
	}
	if _, err := db.ClaimCheck("B00DUE0001"); err != nil {
		t.Fatalf("ClaimCheck: %v", err)
	}
	due, _ = db.DueProducts(now)
	if len(due) != 0 {
		t.Errorf("len(due) = %d while in progress, want 0", len(due))
	}
}

func TestResetInProgressMarkers(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "B00RESET01")
	if _, err := db.ClaimCheck("B00RESET01"); err != nil {
		t.Fatalf("ClaimCheck: %v", err)
	}

	if err := db.ResetInProgressMarkers(); err != nil {
		t.Fatalf("ResetInProgressMarkers: %v", err)
	}
	p, _ := db.GetProduct("B00RESET01")
	if p.InProgress {
		t.Error("marker survived the startup reset")
	}
}

func TestArchiveAndReactivate(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "B00ARCH001")
	now := time.Now()

	// Push activity past the cutoff and archive.
	if err := db.TouchActivity("B00ARCH001", now.AddDate(0, 0, -40)); err != nil {
		t.Fatalf("TouchActivity: %v", err)
	}
	n, err := db.ArchiveInactiveBefore(now.AddDate(0, 0, -35), now)
	if err != nil {
		t.Fatalf("ArchiveInactiveBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("archived %d products, want 1", n)
	}
	p, _ := db.GetProduct("B00ARCH001")
	if !p.Archived || p.ArchivedAt.IsZero() {
		t.Fatalf("product not archived: %+v", p)
	}
	if due, _ := db.DueProducts(now); len(due) != 0 {
		t.Error("archived product still selected as due")
	}

	// Archiving again is a no-op.
	if n, _ := db.ArchiveInactiveBefore(now.AddDate(0, 0, -35), now); n != 0 {
		t.Errorf("second archive pass affected %d products", n)
	}

	if err := db.ReactivateProduct("B00ARCH001", now); err != nil {
		t.Fatalf("ReactivateProduct: %v", err)
	}
	p, _ = db.GetProduct("B00ARCH001")
	if p.Archived || !p.ArchivedAt.IsZero() {
		t.Errorf("reactivated product still archived: %+v", p)
	}
	// Activity clock restarted: not archivable with the same cutoff.
	if n, _ := db.ArchiveInactiveBefore(now.AddDate(0, 0, -35), now); n != 0 {
		t.Errorf("reactivated product immediately re-archived (%d)", n)
	}
}

func TestLowestAlertedPrice(t *testing.T) {
	db := newTestDB(t)

	floor, err := db.LowestAlertedPrice("B00ALERT01", models.TriggerNewPercent)
	if err != nil {
		t.Fatalf("LowestAlertedPrice: %v", err)
	}
	if floor != nil {
		t.Errorf("floor = %v with no alerts, want nil", *floor)
	}

	for i, price := range []float64{44, 40, 42} {
		rec := models.AlertRecord{
			ID:        "rec-" + string(rune('a'+i)),
			ASIN:      "B00ALERT01",
			Kind:      models.TriggerNewPercent,
			Price:     f(price),
			CreatedAt: time.Now(),
		}
		if err := db.InsertAlert(rec); err != nil {
			t.Fatalf("InsertAlert: %v", err)
		}
	}

	floor, _ = db.LowestAlertedPrice("B00ALERT01", models.TriggerNewPercent)
	if floor == nil || *floor != 40 {
		t.Errorf("floor = %v, want 40", floor)
	}
	// Floors are scoped per trigger kind.
	floor, _ = db.LowestAlertedPrice("B00ALERT01", models.TriggerNewDollar)
	if floor != nil {
		t.Errorf("new-dollar floor = %v, want nil", *floor)
	}
}

func TestRecallMatchLifecycle(t *testing.T) {
	db := newTestDB(t)
	match := models.RecallMatch{
		ASIN:      "B00RCL0001",
		Source:    "cpsc",
		SourceID:  "9001",
		Title:     "Chargers Recalled Due to Fire Hazard",
		FirstSeen: time.Now(),
	}

	created, err := db.InsertRecallMatch(match)
	if err != nil || !created {
		t.Fatalf("InsertRecallMatch = %v, %v", created, err)
	}
	// The feed re-serving the same entry changes nothing.
	created, err = db.InsertRecallMatch(match)
	if err != nil {
		t.Fatalf("InsertRecallMatch: %v", err)
	}
	if created {
		t.Error("duplicate match reported as created")
	}

	if dismissed, _ := db.HasDismissedMatch("B00RCL0001", "cpsc"); dismissed {
		t.Error("fresh match reported dismissed")
	}
	if err := db.DismissRecall("B00RCL0001", "cpsc", "9001"); err != nil {
		t.Fatalf("DismissRecall: %v", err)
	}
	if dismissed, _ := db.HasDismissedMatch("B00RCL0001", "cpsc"); !dismissed {
		t.Error("dismissal not recorded")
	}

	// Un-dismiss deletes the row, so the same source id can match anew.
	if err := db.ClearRecall("B00RCL0001", "cpsc", "9001"); err != nil {
		t.Fatalf("ClearRecall: %v", err)
	}
	if dismissed, _ := db.HasDismissedMatch("B00RCL0001", "cpsc"); dismissed {
		t.Error("cleared match still reported dismissed")
	}
	created, _ = db.InsertRecallMatch(match)
	if !created {
		t.Error("re-insert after clear not treated as new")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	s, err := db.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if s.GlobalAlertsEnabled {
		t.Error("global override enabled by default")
	}
	if s.ArchiveWindowDays != models.DefaultArchiveWindowDays {
		t.Errorf("ArchiveWindowDays = %d, want %d", s.ArchiveWindowDays, models.DefaultArchiveWindowDays)
	}

	s.GlobalAlertsEnabled = true
	s.Global.NewPct = f(20)
	s.ArchiveWindowDays = 60
	if err := db.SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, _ := db.GetSettings()
	if !got.GlobalAlertsEnabled || got.ArchiveWindowDays != 60 {
		t.Errorf("settings after save: %+v", got)
	}
	if got.Global.NewPct == nil || *got.Global.NewPct != 20 {
		t.Errorf("Global.NewPct = %v", got.Global.NewPct)
	}
}

func TestSnapshotsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().Add(-time.Hour)
	for i, price := range []float64{50, 48, 45} {
		snap := models.PriceSnapshot{
			ASIN:         "B00SNAP001",
			TakenAt:      base.Add(time.Duration(i) * time.Minute),
			NewPrice:     f(price),
			Availability: models.AvailabilityInStock,
		}
		if err := db.InsertSnapshot(snap); err != nil {
			t.Fatalf("InsertSnapshot: %v", err)
		}
	}

	snaps, err := db.Snapshots("B00SNAP001", 2)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	if snaps[0].NewPrice == nil || *snaps[0].NewPrice != 45 {
		t.Errorf("newest snapshot price = %v, want 45", snaps[0].NewPrice)
	}
}
