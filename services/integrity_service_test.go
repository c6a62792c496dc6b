// services/integrity_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/camalert/backend/database"
)

var deploymentCols = []string{
	"id", "address", "camera_type", "description", "schedule",
	"latitude", "longitude", "start_date", "end_date", "week_of_year",
	"created_at", "updated_at",
}

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	old := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = old
		db.Close()
	})
	return mock
}

func day(d int) time.Time {
	return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzeDeploymentsFindsViolations(t *testing.T) {
	mock := setupMockDB(t)

	lat, lon := 41.55, -90.57
	now := time.Now()
	rows := sqlmock.NewRows(deploymentCols).
		// Two open rows for the same address: duplicate AND overlap.
		AddRow(1, "5800 Eastern Ave", "mobile", "", "Monday", lat, lon, day(8), nil, "2026-W24", now, now).
		AddRow(2, "5800 Eastern Ave.", "mobile", "", "Monday", lat, lon, day(1), nil, "2026-W23", now, now).
		// Closed row missing coordinates.
		AddRow(3, "1900 Brady St", "mobile", "", "Tuesday", nil, nil, day(1), day(7), "2026-W23", now, now)
	mock.ExpectQuery("FROM deployments").WillReturnRows(rows)

	report, err := AnalyzeDeployments()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.DuplicateGroups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(report.DuplicateGroups))
	}
	if report.DuplicateGroups[0].Address != "5800 eastern avenue" {
		t.Errorf("expected normalized group address, got %q", report.DuplicateGroups[0].Address)
	}
	if len(report.OverlapViolations) != 1 {
		t.Fatalf("expected 1 overlap violation, got %d", len(report.OverlapViolations))
	}
	if len(report.MissingCoordinates) != 1 || report.MissingCoordinates[0].ID != 3 {
		t.Fatalf("unexpected missing-coordinate rows: %+v", report.MissingCoordinates)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCleanupDuplicatesKeepsNewest(t *testing.T) {
	mock := setupMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(deploymentCols).
		AddRow(10, "5800 Eastern Ave", "mobile", "", "Monday", nil, nil, day(15), day(21), "2026-W25", now, now).
		AddRow(11, "5800 Eastern Ave", "mobile", "", "Monday", nil, nil, day(1), day(7), "2026-W23", now, now).
		AddRow(12, "5800 Eastern Ave", "mobile", "", "Monday", nil, nil, day(8), day(14), "2026-W24", now, now)
	mock.ExpectQuery("FROM deployments").WillReturnRows(rows)

	// Newest (id 10, start 6/15) survives; 12 then 11 are deleted in
	// start-date-descending order.
	mock.ExpectExec("DELETE FROM deployments").WithArgs(int64(12)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM deployments").WithArgs(int64(11)).WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := CleanupDuplicates(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kept != 1 || result.Deleted != 2 {
		t.Fatalf("expected kept=1 deleted=2, got %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected per-row errors: %v", result.Errors)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCleanupDuplicatesScopedSkipsOpenRows(t *testing.T) {
	mock := setupMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(deploymentCols).
		AddRow(20, "1900 Brady St", "mobile", "", "Tuesday", nil, nil, day(15), day(21), "2026-W25", now, now).
		// Older but still open: scoped cleanup must not touch it.
		AddRow(21, "1900 Brady St", "mobile", "", "Tuesday", nil, nil, day(1), nil, "2026-W23", now, now)
	mock.ExpectQuery("FROM deployments").WillReturnRows(rows)

	result, err := CleanupDuplicates(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Deleted != 0 {
		t.Fatalf("scoped cleanup deleted an open row: %+v", result)
	}
	if result.Kept != 2 {
		t.Fatalf("skipped open row must count as kept, got %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
