// utils/week.go
package utils

import (
	"fmt"
	"time"
)

// WeekLabel returns the ISO week label for t, e.g. "2026-W35". Deployments
// are tagged with this label so history can be grouped week by week.
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
