// scraper/page_scraper.go
package scraper

import (
	"context"
	"log"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/models"
)

// FetchCurrentDeployments retrieves the city's schedule page and emits
// the canonical list of deployment tuples for this week, deduplicated
// by (normalized address, day).
//
// A network error, non-2xx status, or page yielding zero addresses
// returns a *FetchError. An empty canonical list is never a valid
// result: the change detector would read it as "all cameras removed".
func FetchCurrentDeployments(ctx context.Context) ([]models.CanonicalLocation, error) {
	srcCfg := config.AppConfig.Source
	log.Printf("Scraper: Fetching deployment schedule from %s\n", srcCfg.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcCfg.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: srcCfg.URL, Op: "request", Err: err}
	}

	client := http.Client{Timeout: srcCfg.FetchTimeout}
	res, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: srcCfg.URL, Op: "fetch", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: srcCfg.URL, Op: "fetch", Err: &statusError{Code: res.StatusCode}}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, &FetchError{URL: srcCfg.URL, Op: "parse", Err: err}
	}

	entries := ExtractScheduleEntries(doc, srcCfg.ContainerSelector)
	locations := normalizeEntries(entries)
	if len(locations) == 0 {
		return nil, &FetchError{URL: srcCfg.URL, Op: "extract", Err: errNoAddresses}
	}

	log.Printf("Scraper: Extracted %d canonical locations from %d schedule entries.\n", len(locations), len(entries))
	return locations, nil
}

// normalizeEntries flattens schedule entries into canonical tuples,
// dropping repeats of the same (normalized address, day) pair.
func normalizeEntries(entries []models.ScheduleEntry) []models.CanonicalLocation {
	seen := make(map[string]bool)
	var locations []models.CanonicalLocation

	for _, entry := range entries {
		for _, address := range entry.Addresses {
			key := NormalizeAddress(address) + "|" + entry.Day
			if seen[key] {
				continue
			}
			seen[key] = true

			locations = append(locations, models.CanonicalLocation{
				Address:     address,
				CameraType:  models.CameraTypeMobile,
				Description: "Mobile speed camera",
				Schedule:    entry.Label,
				Day:         entry.Day,
			})
		}
	}
	return locations
}
