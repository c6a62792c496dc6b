// models/scrape.go
package models

// ScheduleEntry is one day's worth of raw addresses pulled from the
// source page before address splitting and deduplication.
type ScheduleEntry struct {
	Day       string   // "Monday" ... "Sunday"
	Addresses []string // one or more raw address fragments for that day
	Label     string   // schedule label as published, e.g. "Monday (6/1-6/7)"
}

// CanonicalLocation is one tuple of the canonical list: the deduplicated,
// parsed set of locations extracted from one scrape pass, representing
// what the source currently says is deployed this week.
type CanonicalLocation struct {
	Address     string `json:"address"`
	CameraType  string `json:"camera_type"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Day         string `json:"day"`
}
