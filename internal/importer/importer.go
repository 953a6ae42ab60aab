// Package importer pulls purchase orders into the tracked product set.
package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"amazon-price-tracker/internal/database"
	"amazon-price-tracker/internal/models"
)

// OrdersClient lists recent purchases from an order source.
type OrdersClient interface {
	RecentOrders(ctx context.Context) ([]models.Order, error)
}

// Service turns orders into tracked products. An order for an unknown
// ASIN creates a product; one for an archived product restores it; one
// for an active product is a no-op.
type Service struct {
	db     *database.DB
	client OrdersClient
	every  time.Duration
	quit   chan struct{}
}

func New(db *database.DB, client OrdersClient, every time.Duration) *Service {
	return &Service{db: db, client: client, every: every, quit: make(chan struct{})}
}

// Start imports on the configured cadence until Stop.
func (s *Service) Start() {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	s.run()
	for {
		select {
		case <-ticker.C:
			s.run()
		case <-s.quit:
			return
		}
	}
}

func (s *Service) Stop() {
	close(s.quit)
}

func (s *Service) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("ImportError: %v", err)
	}
}

// RunOnce fetches orders and applies each one, returning how many
// products were created or restored.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	orders, err := s.client.RecentOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing orders: %w", err)
	}

	changed := 0
	for _, order := range orders {
		applied, err := s.applyOrder(order)
		if err != nil {
			log.Printf("ImportError: order %s (%s): %v", order.OrderID, order.ASIN, err)
			continue
		}
		if applied {
			changed++
		}
	}
	if err := s.db.SetLastImport(time.Now()); err != nil {
		return changed, err
	}
	log.Printf("Import: %d orders, %d products created or restored", len(orders), changed)
	return changed, nil
}

func (s *Service) applyOrder(order models.Order) (bool, error) {
	existing, err := s.db.GetProduct(order.ASIN)
	if err != nil {
		return false, err
	}
	target := targetFromPurchase(order.PurchasePrice)
	now := time.Now()

	if existing == nil {
		p := s.newProduct(order, target, now)
		if err := s.db.CreateProduct(p); err != nil {
			return false, err
		}
		log.Printf("Import: tracking %s from order %s", order.ASIN, order.OrderID)
		return true, nil
	}
	if existing.Archived {
		// Buying it again means it matters again.
		if err := s.db.ApplyOrder(order.ASIN, order, target, now); err != nil {
			return false, err
		}
		log.Printf("Import: restored %s after re-order %s", order.ASIN, order.OrderID)
		return true, nil
	}
	return false, nil
}

func (s *Service) newProduct(order models.Order, target *float64, now time.Time) *models.Product {
	title := order.Title
	if title == "" {
		// The checker fills the real title in on first fetch.
		title = "Loading... " + order.ASIN
	}
	return &models.Product{
		ASIN:           order.ASIN,
		Title:          title,
		URL:            "https://www.amazon.com/dp/" + order.ASIN,
		Source:         "orders",
		OrderID:        order.OrderID,
		PurchasePrice:  order.PurchasePrice,
		PurchaseDate:   order.OrderDate,
		Availability:   models.AvailabilityUnknown,
		LastActivityAt: now,
		Thresholds:     models.ThresholdSet{TargetPrice: target},
		CreatedAt:      now,
	}
}

// targetFromPurchase sets the target a cent under what was paid, so
// any price strictly better than the purchase triggers.
func targetFromPurchase(purchase *float64) *float64 {
	if purchase == nil || *purchase <= 0 {
		return nil
	}
	t := *purchase - 0.01
	return &t
}
