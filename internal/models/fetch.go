package models

import "time"

// FetchResult is what a scraper extracted from a product page. Any
// field may be missing on a partial page; an unavailable listing is a
// successful fetch with nil prices, not an error.
type FetchResult struct {
	NewPrice      *float64
	UsedPrice     *float64
	Title         string
	Availability  Availability
	ScreenshotRef string
}

// Order is one purchase row produced by the order-import collaborator.
type Order struct {
	ASIN          string
	OrderID       string
	Title         string
	PurchasePrice *float64
	OrderDate     time.Time
}
