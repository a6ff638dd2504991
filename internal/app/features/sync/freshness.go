package sync

import "time"

// Freshness labels describe how old the last completed batch sync is.
const (
	FreshnessFresh      = "fresh"      // under 12h
	FreshnessAcceptable = "acceptable" // 12-24h
	FreshnessStale      = "stale"      // 24-48h
	FreshnessOutdated   = "outdated"   // 48h and beyond
	FreshnessNoData     = "no_data"    // never synced
)

// FreshnessLabel classifies the age of the last sync at the given reference
// time.
func FreshnessLabel(lastSync *time.Time, now time.Time) string {
	if lastSync == nil {
		return FreshnessNoData
	}
	age := now.Sub(*lastSync)
	switch {
	case age < 12*time.Hour:
		return FreshnessFresh
	case age < 24*time.Hour:
		return FreshnessAcceptable
	case age < 48*time.Hour:
		return FreshnessStale
	}
	return FreshnessOutdated
}
