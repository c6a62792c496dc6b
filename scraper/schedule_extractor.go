// scraper/schedule_extractor.go
package scraper

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/camalert/backend/models"
)

// A schedule entry starts with a day name followed by a colon; the rest
// of the line is one or more addresses, optionally with a date range
// like "(6/1-6/7)" appended.
var (
	dayLineRegex   = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s*:\s*(.+)$`)
	dateRangeRegex = regexp.MustCompile(`\(\s*\d{1,2}/\d{1,2}\s*[-–]\s*\d{1,2}/\d{1,2}\s*\)`)
)

// ExtractScheduleEntries pulls (day, addresses, label) tuples out of the
// parsed source page. It first walks the expected list/paragraph nodes
// inside containerSelector; if the site's markup has changed and nothing
// matches, it falls back to scanning the whole page text line by line.
func ExtractScheduleEntries(doc *goquery.Document, containerSelector string) []models.ScheduleEntry {
	var entries []models.ScheduleEntry

	container := doc.Find(containerSelector)
	if container.Length() == 0 {
		container = doc.Selection
	}

	container.Find("li, p").Each(func(i int, sel *goquery.Selection) {
		for _, line := range splitLines(sel.Text()) {
			if entry, ok := parseScheduleLine(line); ok {
				entries = append(entries, entry)
			}
		}
	})

	if len(entries) == 0 {
		log.Printf("Scraper: No schedule entries found in structured markup (selector '%s'), falling back to whole-page text scan.\n", containerSelector)
		for _, line := range splitLines(doc.Text()) {
			if entry, ok := parseScheduleLine(line); ok {
				entries = append(entries, entry)
			}
		}
	}

	return entries
}

// parseScheduleLine turns one "Dayname: addresses (range)" line into a
// ScheduleEntry. Returns false when the line is not a schedule line.
func parseScheduleLine(line string) (models.ScheduleEntry, bool) {
	line = strings.TrimSpace(line)
	matches := dayLineRegex.FindStringSubmatch(line)
	if matches == nil {
		return models.ScheduleEntry{}, false
	}

	day := capitalizeDay(matches[1])
	remainder := strings.TrimSpace(matches[2])

	label := day
	if dateRange := dateRangeRegex.FindString(remainder); dateRange != "" {
		label = day + " " + dateRange
		remainder = strings.TrimSpace(dateRangeRegex.ReplaceAllString(remainder, ""))
	}

	addresses := SplitAddresses(remainder)
	if len(addresses) == 0 {
		return models.ScheduleEntry{}, false
	}

	return models.ScheduleEntry{
		Day:       day,
		Addresses: addresses,
		Label:     label,
	}, true
}

func capitalizeDay(day string) string {
	day = strings.ToLower(day)
	return strings.ToUpper(day[:1]) + day[1:]
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
