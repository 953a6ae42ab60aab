package models

import (
	"strings"
	"time"
)

// Availability describes what the last successful page fetch said about
// the product's purchasability.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityInStock     Availability = "in_stock"
	AvailabilityUnavailable Availability = "unavailable"
)

// PriceKind distinguishes the two price streams tracked per product.
type PriceKind string

const (
	PriceNew  PriceKind = "new"
	PriceUsed PriceKind = "used"
)

// ThresholdSet holds the drop rules for one scope (per-product or global).
// A nil field means that rule is disabled at this scope.
type ThresholdSet struct {
	NewPct      *float64 // percent drop on the new price
	NewDollars  *float64 // dollar drop on the new price
	UsedPct     *float64 // percent drop on the used price
	UsedDollars *float64 // dollar drop on the used price
	TargetPrice *float64 // absolute price floor, applies to either kind
}

// Product is a tracked purchase. Price and schedule fields are written
// only by the check pipeline, the archived state only by the lifecycle
// sweep, and recall dismissal lives on RecallMatch rows, so no two
// writers ever share a field.
type Product struct {
	ASIN             string
	Title            string
	URL              string
	Source           string
	OrderID          string
	PurchasePrice    *float64
	PurchaseDate     time.Time
	CurrentNewPrice  *float64
	CurrentUsedPrice *float64
	Availability     Availability
	LastChecked      time.Time
	NextCheckDue     time.Time
	LastActivityAt   time.Time
	Archived         bool
	ArchivedAt       time.Time
	InProgress       bool
	Thresholds       ThresholdSet
	CreatedAt        time.Time
}

// CurrentPrice returns the recorded price for one kind, or nil when no
// price of that kind has ever been observed.
func (p *Product) CurrentPrice(kind PriceKind) *float64 {
	if kind == PriceUsed {
		return p.CurrentUsedPrice
	}
	return p.CurrentNewPrice
}

// Baseline is the reference price the next delta comparison for a kind
// runs against: the last recorded price of that kind, or the purchase
// price before any check has recorded one.
func (p *Product) Baseline(kind PriceKind) *float64 {
	if cur := p.CurrentPrice(kind); cur != nil {
		return cur
	}
	return p.PurchasePrice
}

// HasPlaceholderTitle reports whether the title is still the stand-in
// written at import time, before the first successful check.
func (p *Product) HasPlaceholderTitle() bool {
	return len(p.Title) < 5 ||
		strings.Contains(p.Title, "Loading") ||
		strings.Contains(p.Title, "Order Item")
}
