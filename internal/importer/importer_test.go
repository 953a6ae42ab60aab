package importer

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/models"
)

func f(v float64) *float64 { return &v }

type fakeOrders struct {
	orders []models.Order
}

func (c *fakeOrders) RecentOrders(ctx context.Context) ([]models.Order, error) {
	return c.orders, nil
}

func newTestService(t *testing.T, client *fakeOrders) (*Service, *database.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, client, 12*time.Hour), db
}

func order(asin, orderID string, price float64) models.Order {
	return models.Order{
		ASIN:          asin,
		OrderID:       orderID,
		Title:         "Hydro Flask 32oz Wide Mouth Water Bottle",
		PurchasePrice: f(price),
		OrderDate:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestRunOnceCreatesProduct(t *testing.T) {
	client := &fakeOrders{orders: []models.Order{order("B00IMP0001", "111-222", 44.95)}}
	s, db := newTestService(t, client)

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 1 {
		t.Fatalf("changed = %d, want 1", n)
	}

	p, _ := db.GetProduct("B00IMP0001")
	if p == nil {
		t.Fatal("product not created")
	}
	if p.PurchasePrice == nil || *p.PurchasePrice != 44.95 {
		t.Errorf("PurchasePrice = %v", p.PurchasePrice)
	}
	// Target sits one cent under the purchase price.
	if p.Thresholds.TargetPrice == nil || math.Abs(*p.Thresholds.TargetPrice-44.94) > 1e-9 {
		t.Errorf("TargetPrice = %v, want 44.94", p.Thresholds.TargetPrice)
	}
	// Immediately due for its first check.
	due, _ := db.DueProducts(time.Now())
	if len(due) != 1 {
		t.Errorf("due products = %d, want 1", len(due))
	}
}

func TestRunOnceFillsPlaceholderTitle(t *testing.T) {
	o := order("B00IMP0002", "111-333", 20)
	o.Title = ""
	client := &fakeOrders{orders: []models.Order{o}}
	s, db := newTestService(t, client)

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	p, _ := db.GetProduct("B00IMP0002")
	if !p.HasPlaceholderTitle() {
		t.Errorf("Title = %q, want a placeholder until the first fetch", p.Title)
	}
}

func TestRunOnceActiveProductIsNoop(t *testing.T) {
	client := &fakeOrders{orders: []models.Order{order("B00IMP0003", "111-444", 44.95)}}
	s, db := newTestService(t, client)

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	// Same order again, and a second order for the same product.
	client.orders = append(client.orders, order("B00IMP0003", "111-555", 39.95))
	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if n != 0 {
		t.Errorf("changed = %d for an already-tracked product, want 0", n)
	}
	p, _ := db.GetProduct("B00IMP0003")
	if *p.PurchasePrice != 44.95 {
		t.Errorf("PurchasePrice = %v, overwritten by a duplicate import", *p.PurchasePrice)
	}
}

func TestRunOnceRestoresArchivedProduct(t *testing.T) {
	client := &fakeOrders{orders: []models.Order{order("B00IMP0004", "111-666", 44.95)}}
	s, db := newTestService(t, client)

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	now := time.Now()
	if err := db.TouchActivity("B00IMP0004", now.AddDate(0, 0, -40)); err != nil {
		t.Fatalf("TouchActivity: %v", err)
	}
	if n, _ := db.ArchiveInactiveBefore(now.AddDate(0, 0, -35), now); n != 1 {
		t.Fatal("product not archived")
	}

	// Re-ordering it brings it back with the new purchase details.
	client.orders = []models.Order{order("B00IMP0004", "111-777", 39.95)}
	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("restore RunOnce: %v", err)
	}
	if n != 1 {
		t.Fatalf("changed = %d, want 1 restore", n)
	}

	p, _ := db.GetProduct("B00IMP0004")
	if p.Archived {
		t.Fatal("product still archived after re-order")
	}
	if p.OrderID != "111-777" || *p.PurchasePrice != 39.95 {
		t.Errorf("purchase fields not refreshed: order=%s price=%v", p.OrderID, *p.PurchasePrice)
	}
	if p.Thresholds.TargetPrice == nil || math.Abs(*p.Thresholds.TargetPrice-39.94) > 1e-9 {
		t.Errorf("TargetPrice = %v, want 39.94", p.Thresholds.TargetPrice)
	}
}

func TestRunOnceRecordsImportTime(t *testing.T) {
	s, db := newTestService(t, &fakeOrders{})

	before := time.Now()
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	settings, _ := db.GetSettings()
	if settings.LastImport.Before(before.Add(-time.Second)) {
		t.Errorf("LastImport = %v, not advanced", settings.LastImport)
	}
}
