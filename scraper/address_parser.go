// scraper/address_parser.go
package scraper

import (
	"regexp"
	"strings"
)

// The source page frequently packs several locations into one line,
// joined with dashes, ampersands, or the word "and". Hyphen/dash only
// count as delimiters when surrounded by whitespace so hyphenated
// street names survive.
var addressDelimiterRegex = regexp.MustCompile(`(?i)\s+[-–]\s+|\s*&\s*|\s+and\s+`)

// Fragments shorter than this after splitting are delimiter artifacts,
// not addresses.
const minAddressLen = 5

// SplitAddresses splits a raw schedule-line segment into one or more
// discrete street addresses. If splitting yields fewer than two usable
// fragments the original trimmed input is returned as a single element,
// so no input data is ever dropped.
func SplitAddresses(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parts := addressDelimiterRegex.Split(trimmed, -1)
	var usable []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < minAddressLen {
			continue
		}
		usable = append(usable, p)
	}

	if len(usable) <= 1 {
		return []string{trimmed}
	}
	return usable
}

// Street-type abbreviations as they appear on the source page, expanded
// for normalized comparison and geocoding queries.
var streetAbbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"rd":   "road",
	"blvd": "boulevard",
	"dr":   "drive",
	"ct":   "court",
	"ln":   "lane",
	"pkwy": "parkway",
	"hwy":  "highway",
	"pl":   "place",
	"ter":  "terrace",
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeAddress lowercases, expands street-type abbreviations, and
// collapses whitespace so that "5800 Eastern Ave." and "5800 eastern avenue"
// compare equal. All address comparison goes through here.
func NormalizeAddress(address string) string {
	lower := strings.ToLower(strings.TrimSpace(address))
	words := whitespaceRegex.Split(lower, -1)
	for i, w := range words {
		w = strings.TrimSuffix(w, ".")
		if full, ok := streetAbbreviations[w]; ok {
			w = full
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}
