package models

import "time"

// DefaultArchiveWindowDays is how long a product may sit without a
// price change before the lifecycle sweep archives it.
const DefaultArchiveWindowDays = 35

// Settings is the singleton row of runtime-tunable configuration.
// Edits take effect for all subsequent evaluations; in-flight checks
// are not restarted.
type Settings struct {
	GlobalAlertsEnabled bool
	Global              ThresholdSet
	ArchiveWindowDays   int
	ImportEveryHours    int
	LastRecallScan      time.Time
	LastImport          time.Time
}
