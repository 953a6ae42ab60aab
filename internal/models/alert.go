package models

import "time"

// TriggerKind names the specific rule a price (or recall) satisfied.
type TriggerKind string

const (
	TriggerNewPercent  TriggerKind = "new-percent"
	TriggerNewDollar   TriggerKind = "new-dollar"
	TriggerNewTarget   TriggerKind = "new-target"
	TriggerUsedPercent TriggerKind = "used-percent"
	TriggerUsedDollar  TriggerKind = "used-dollar"
	TriggerUsedTarget  TriggerKind = "used-target"
	TriggerRecall      TriggerKind = "recall"
)

// AlertRecord is the persisted trace of an approved notification.
// Price alerts carry the triggering price; recall alerts carry the
// recall source id instead.
type AlertRecord struct {
	ID        string
	ASIN      string
	Kind      TriggerKind
	Price     *float64
	RecallRef string
	CreatedAt time.Time
}

// PriceSnapshot is one immutable historical observation. Rows are
// append-only; prices are nil when the page carried no offer of that
// kind.
type PriceSnapshot struct {
	ASIN          string
	TakenAt       time.Time
	NewPrice      *float64
	UsedPrice     *float64
	Availability  Availability
	ScreenshotRef string
}
