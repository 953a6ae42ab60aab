package models

import "time"

// RecallHit is one result from a recall feed client, already scored
// against the product title by the client's matching heuristic.
type RecallHit struct {
	Source      string // "cpsc" or "fda"
	SourceID    string
	Number      string
	Title       string
	Description string
	URL         string
	Hazard      string
	Remedy      string
	Date        string
	Contact     string
	Score       int
}

// RecallMatch ties a recall feed entry to a tracked product. Once
// dismissed, the same (product, source id) pair never notifies again,
// no matter how often the feed re-serves the entry.
type RecallMatch struct {
	ASIN        string
	Source      string
	SourceID    string
	Number      string
	Title       string
	Description string
	URL         string
	Hazard      string
	Remedy      string
	Date        string
	Contact     string
	Dismissed   bool
	FirstSeen   time.Time
}
