// services/reconciler.go
package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/geocode"
	"github.com/camalert/backend/models"
	"github.com/camalert/backend/scraper"
	"github.com/camalert/backend/utils"
)

// Geocoder is the coordinate-resolution seam the reconciler depends on.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.Result, error)
}

// mergedLocation is one deployment-to-be: all canonical tuples sharing
// a normalized address, with their schedule labels collected in scrape
// order.
type mergedLocation struct {
	address     string
	cameraType  string
	description string
	schedules   []string
	tuples      []models.CanonicalLocation
}

// reconcileDeployments applies one confirmed change: geocodes each
// distinct address, then commits close-all-then-reopen plus the
// snapshot replacement in a single transaction via the store.
//
// The canonical list may carry the same address on several days. Those
// tuples are merged into one open deployment row with a combined
// schedule label, so an address never has more than one open row after
// a cycle. The snapshot keeps the per-day tuples, which is what the
// change detector compares against.
//
// Geocoding runs before the transaction opens so no network call ever
// holds a transaction open.
func reconcileDeployments(ctx context.Context, geocoder Geocoder, current []models.CanonicalLocation, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekLabel := utils.WeekLabel(now)

	merged := mergeByAddress(current)

	newDeployments := make([]models.Deployment, 0, len(merged))
	snapshot := make([]models.CameraLocation, 0, len(current))

	for _, m := range merged {
		var lat, lon *float64
		result, err := geocoder.Geocode(ctx, m.address)
		if err != nil {
			// Recoverable: the deployment is persisted with null
			// coordinates and the integrity analyzer surfaces it.
			log.Printf("WARN Service: Geocoding failed for %q, persisting without coordinates: %v\n", m.address, err)
		} else if result != nil {
			lat = &result.Lat
			lon = &result.Lon
		} else {
			log.Printf("Service: No coordinates resolved for %q, persisting without coordinates.\n", m.address)
		}

		newDeployments = append(newDeployments, models.Deployment{
			Address:     m.address,
			CameraType:  m.cameraType,
			Description: m.description,
			Schedule:    strings.Join(m.schedules, ", "),
			Latitude:    lat,
			Longitude:   lon,
			StartDate:   today,
			WeekOfYear:  weekLabel,
		})
		for _, loc := range m.tuples {
			snapshot = append(snapshot, models.CameraLocation{
				Address:     loc.Address,
				CameraType:  loc.CameraType,
				Description: loc.Description,
				Schedule:    loc.Schedule,
				Latitude:    lat,
				Longitude:   lon,
			})
		}
	}

	return database.ReplaceDeploymentCycle(newDeployments, snapshot, today)
}

// mergeByAddress groups canonical tuples by normalized address,
// preserving first-seen order.
func mergeByAddress(current []models.CanonicalLocation) []mergedLocation {
	index := make(map[string]int, len(current))
	var merged []mergedLocation

	for _, loc := range current {
		key := scraper.NormalizeAddress(loc.Address)
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, mergedLocation{
				address:     loc.Address,
				cameraType:  loc.CameraType,
				description: loc.Description,
				schedules:   []string{loc.Schedule},
				tuples:      []models.CanonicalLocation{loc},
			})
			continue
		}
		merged[i].schedules = append(merged[i].schedules, loc.Schedule)
		merged[i].tuples = append(merged[i].tuples, loc)
	}
	return merged
}
