// Package entity defines the result shapes of a synchronization run.
package entity

import "time"

// Run kinds.
const (
	KindSymbols = "symbols"
	KindIndices = "indices"
)

// SyncReport summarizes one run.
// Matched < Requested is a partial success and is not an error.
type SyncReport struct {
	Kind        string
	Requested   int
	Matched     int
	Committed   int
	Unmatched   int      // quotes returned that matched no requested instrument
	Errors      []string // provider-level failures, absorbed into the report
	Providers   []string // providers that contributed at least one matched quote
	NothingToDo bool
	StartedAt   time.Time
	Duration    time.Duration
}
