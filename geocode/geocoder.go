// geocode/geocoder.go
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/scraper"
)

// Result is a resolved coordinate pair for an address.
type Result struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
}

// Geocoder resolves free-text addresses against a Nominatim-style
// provider. Rate limiting is a property of the adapter: every provider
// call waits on the internal limiter, so callers never need their own
// inter-call sleeps.
type Geocoder struct {
	cfg      config.GeocodingConfig
	client   *http.Client
	limiter  *rate.Limiter
	verified map[string]Result
}

func New(cfg config.GeocodingConfig) *Geocoder {
	return &Geocoder{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		verified: verifiedCoordinates,
	}
}

// Geocode resolves an address to coordinates. The verified table wins
// unconditionally; otherwise an ordered list of query formulations is
// tried against the provider, accepting only results inside the city
// bounding box or whose formatted address mentions the city.
//
// A nil, nil return means "no acceptable result"; the caller persists
// with null coordinates rather than failing.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	normalized := scraper.NormalizeAddress(address)
	if result, ok := g.verified[normalized]; ok {
		log.Printf("Geocode: Verified table hit for %q\n", address)
		return &result, nil
	}

	for _, query := range g.buildQueries(address) {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &GeocodeError{Address: address, Op: "rate-wait", Err: err}
		}

		result, err := g.queryProvider(ctx, query)
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}
		if g.accept(result) {
			return result, nil
		}
		log.Printf("Geocode: Rejected out-of-bounds result for query %q (%.4f, %.4f: %s)\n",
			query, result.Lat, result.Lon, result.FormattedAddress)
	}

	log.Printf("Geocode: No acceptable result for %q\n", address)
	return nil, nil
}

// buildQueries produces the ordered provider query formulations for an
// address. Intersections ("A & B") are decomposed into two street
// names with house numbers stripped and abbreviations expanded, then
// tried as a pair, as an "intersection of" phrase, and finally as a
// single-leg fallback.
func (g *Geocoder) buildQueries(address string) []string {
	suffix := fmt.Sprintf("%s, %s, USA", g.cfg.City, g.cfg.State)
	longSuffix := fmt.Sprintf("%s, %s, %s, USA", g.cfg.City, g.cfg.County, g.cfg.State)

	if strings.Contains(address, "&") {
		legs := strings.SplitN(address, "&", 2)
		street1 := cleanStreet(legs[0])
		street2 := cleanStreet(legs[1])
		return []string{
			fmt.Sprintf("%s and %s, %s", street1, street2, longSuffix),
			fmt.Sprintf("intersection of %s and %s, %s", street1, street2, suffix),
			fmt.Sprintf("%s, %s", street1, suffix),
		}
	}

	return []string{
		fmt.Sprintf("%s, %s", strings.TrimSpace(address), suffix),
		fmt.Sprintf("%s, %s", cleanStreet(address), suffix),
	}
}

var houseNumberRegex = regexp.MustCompile(`^\s*\d+\s+`)

// cleanStreet strips the leading house number and expands street-type
// abbreviations, turning "5800 Eastern Ave." into "eastern avenue".
func cleanStreet(leg string) string {
	leg = houseNumberRegex.ReplaceAllString(strings.TrimSpace(leg), "")
	return scraper.NormalizeAddress(leg)
}

// accept applies the wrong-city sanity filter: the result must fall
// inside the municipality's bounding box or textually mention the city.
func (g *Geocoder) accept(result *Result) bool {
	b := g.cfg.Bounds
	inBounds := result.Lat >= b.MinLat && result.Lat <= b.MaxLat &&
		result.Lon >= b.MinLon && result.Lon <= b.MaxLon
	if inBounds {
		return true
	}
	return strings.Contains(strings.ToLower(result.FormattedAddress), strings.ToLower(g.cfg.City))
}

// providerResult mirrors the Nominatim search response; lat/lon arrive
// as strings.
type providerResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *Geocoder) queryProvider(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	requestURL := g.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &GeocodeError{Address: query, Op: "request", Err: err}
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)

	res, err := g.client.Do(req)
	if err != nil {
		return nil, &GeocodeError{Address: query, Op: "fetch", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &GeocodeError{Address: query, Op: "fetch", Err: fmt.Errorf("received status code %d", res.StatusCode)}
	}

	var results []providerResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return nil, &GeocodeError{Address: query, Op: "decode", Err: err}
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, &GeocodeError{Address: query, Op: "decode", Err: fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, &GeocodeError{Address: query, Op: "decode", Err: fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)}
	}

	return &Result{Lat: lat, Lon: lon, FormattedAddress: results[0].DisplayName}, nil
}
