// scraper/change_detector.go
package scraper

import (
	"github.com/camalert/backend/models"
)

// HasChanged reports whether the freshly scraped canonical list differs
// meaningfully from the stored snapshot. It runs before any write or
// geocode call; a false result means no side effects downstream.
//
// Tuples are compared as a multiset of (normalized address, schedule)
// pairs. The same address can legitimately appear on several days, so
// keying by address alone would collapse those entries and miss a
// schedule change on just one of the days.
func HasChanged(current []models.CanonicalLocation, stored []models.CameraLocation) bool {
	if len(current) != len(stored) {
		return true
	}

	counts := make(map[string]int, len(current))
	for _, loc := range current {
		counts[NormalizeAddress(loc.Address)+"|"+loc.Schedule]++
	}
	for _, loc := range stored {
		key := NormalizeAddress(loc.Address) + "|" + loc.Schedule
		counts[key]--
		if counts[key] < 0 {
			return true
		}
	}
	for _, n := range counts {
		if n != 0 {
			return true
		}
	}

	return false
}
