// services/integrity_service.go
package services

import (
	"fmt"
	"log"
	"sort"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/models"
	"github.com/camalert/backend/scraper"
)

// DuplicateGroup is every deployment row sharing one normalized
// address, newest first.
type DuplicateGroup struct {
	Address     string              `json:"address"`
	Deployments []models.Deployment `json:"deployments"`
}

// IntegrityReport is the read-only output of an analyzer pass.
// Violations here are data to report, not errors: the reconciler should
// never produce them, but scrape races and manual edits can.
type IntegrityReport struct {
	DuplicateGroups    []DuplicateGroup    `json:"duplicate_groups"`
	OverlapViolations  []DuplicateGroup    `json:"overlap_violations"`
	MissingCoordinates []models.Deployment `json:"missing_coordinates"`
}

// CleanupResult summarizes a destructive duplicate-cleanup pass.
type CleanupResult struct {
	Kept    int      `json:"kept"`
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors,omitempty"`
}

// AnalyzeDeployments scans the full deployment history for duplicate
// addresses, overlapping-open records, and missing coordinates.
func AnalyzeDeployments() (*IntegrityReport, error) {
	deployments, err := database.GetAllDeployments()
	if err != nil {
		return nil, fmt.Errorf("integrity analysis failed: %w", err)
	}

	report := &IntegrityReport{}

	for _, group := range groupByAddress(deployments) {
		if len(group.Deployments) > 1 {
			report.DuplicateGroups = append(report.DuplicateGroups, group)
		}

		openCount := 0
		for i := range group.Deployments {
			if group.Deployments[i].IsOpen() {
				openCount++
			}
		}
		if openCount > 1 {
			report.OverlapViolations = append(report.OverlapViolations, group)
		}
	}

	for _, d := range deployments {
		if !d.HasCoordinates() {
			report.MissingCoordinates = append(report.MissingCoordinates, d)
		}
	}

	log.Printf("Service: Integrity analysis: %d duplicate group(s), %d overlap violation(s), %d row(s) missing coordinates.\n",
		len(report.DuplicateGroups), len(report.OverlapViolations), len(report.MissingCoordinates))
	return report, nil
}

// CleanupDuplicates collapses each duplicate group down to its most
// recent row (maximum start date). With onlyClosed set, open rows are
// never deleted, so live deployments are undisturbed. Per-row delete
// failures are collected and reported; the batch continues. Kept
// counts every row that survives, including open rows a scoped run
// skipped.
func CleanupDuplicates(onlyClosed bool) (*CleanupResult, error) {
	deployments, err := database.GetAllDeployments()
	if err != nil {
		return nil, fmt.Errorf("duplicate cleanup failed: %w", err)
	}

	result := &CleanupResult{}

	for _, group := range groupByAddress(deployments) {
		if len(group.Deployments) < 2 {
			continue
		}

		// Newest first; the head row is always preserved.
		result.Kept++
		for _, d := range group.Deployments[1:] {
			if onlyClosed && d.IsOpen() {
				log.Printf("Service: Skipping open deployment %d (%s) during scoped cleanup.\n", d.ID, d.Address)
				result.Kept++
				continue
			}
			if err := database.DeleteDeployment(d.ID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("deployment %d (%s): %v", d.ID, d.Address, err))
				result.Kept++
				continue
			}
			result.Deleted++
		}
	}

	log.Printf("Service: Duplicate cleanup complete: kept %d, deleted %d, %d error(s).\n",
		result.Kept, result.Deleted, len(result.Errors))
	return result, nil
}

// groupByAddress buckets deployments by normalized address, each group
// sorted by start date descending (ties broken by id descending, so
// the latest insert wins).
func groupByAddress(deployments []models.Deployment) []DuplicateGroup {
	buckets := make(map[string][]models.Deployment)
	var order []string
	for _, d := range deployments {
		key := scraper.NormalizeAddress(d.Address)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], d)
	}

	groups := make([]DuplicateGroup, 0, len(order))
	for _, key := range order {
		group := buckets[key]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].StartDate.Equal(group[j].StartDate) {
				return group[i].StartDate.After(group[j].StartDate)
			}
			return group[i].ID > group[j].ID
		})
		groups = append(groups, DuplicateGroup{Address: key, Deployments: group})
	}
	return groups
}
