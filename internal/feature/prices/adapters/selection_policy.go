package adapters

import (
	"time"

	"gorm.io/gorm"
)

// SelectionPolicy decides which tracked, active symbols a sync run refreshes.
// It narrows the base query, which already joins symbols (s), exchanges (e)
// and left-joins symbol_prices (sp).
type SelectionPolicy interface {
	Name() string
	Apply(q *gorm.DB, now time.Time) *gorm.DB
}

// AllTrackedActive selects every tracked, active symbol.
type AllTrackedActive struct{}

func (AllTrackedActive) Name() string { return "all_tracked_active" }

func (AllTrackedActive) Apply(q *gorm.DB, _ time.Time) *gorm.DB { return q }

// StaleOlderThan selects symbols with no price yet or a price fetched before now-Threshold.
type StaleOlderThan struct {
	Threshold time.Duration
}

func (p StaleOlderThan) Name() string { return "stale_older_than_" + p.Threshold.String() }

func (p StaleOlderThan) Apply(q *gorm.DB, now time.Time) *gorm.DB {
	cutoff := now.Add(-p.Threshold).UTC()
	return q.Where("sp.fetched_at IS NULL OR sp.fetched_at < ?", cutoff)
}

// PolicyFor returns StaleOlderThan for a positive threshold, AllTrackedActive otherwise.
func PolicyFor(staleAfter time.Duration) SelectionPolicy {
	if staleAfter <= 0 {
		return AllTrackedActive{}
	}
	return StaleOlderThan{Threshold: staleAfter}
}
