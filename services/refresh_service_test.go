// services/refresh_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/geocode"
	"github.com/camalert/backend/models"
)

var cameraLocationCols = []string{
	"id", "address", "camera_type", "description", "schedule",
	"latitude", "longitude", "scraped_at",
}

type fakeGeocoder struct {
	calls []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*geocode.Result, error) {
	f.calls = append(f.calls, address)
	if strings.Contains(address, "Eastern") {
		return &geocode.Result{Lat: 41.5796, Lon: -90.5513, FormattedAddress: "5800 Eastern Avenue, Davenport, Iowa"}, nil
	}
	return nil, nil
}

type fakeNotifier struct {
	calls      int
	dispatched bool
}

func (f *fakeNotifier) NotifyLocationChange(ctx context.Context, locations []models.CanonicalLocation) (bool, error) {
	f.calls++
	return f.dispatched, nil
}

func withScheduleServer(t *testing.T, body string, status int) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	old := config.AppConfig.Source
	config.AppConfig.Source = config.SourceConfig{
		URL:               server.URL,
		ContainerSelector: "div.content_area",
		FetchTimeout:      5 * time.Second,
	}
	t.Cleanup(func() { config.AppConfig.Source = old })
}

const weekOnePage = `
	<html><body><div class="content_area"><ul>
		<li>Monday: 5800 Eastern Ave (6/1-6/7)</li>
	</ul></div></body></html>`

const weekTwoPage = `
	<html><body><div class="content_area"><ul>
		<li>Monday: 5800 Eastern Ave (6/1-6/7)</li>
		<li>Tuesday: 1900 Brady St (6/1-6/7)</li>
	</ul></div></body></html>`

func newTestRefreshService(geocoder Geocoder, notifier Notifier) *RefreshService {
	s := NewRefreshService(geocoder, notifier)
	s.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestRunCycleNoChangeMeansNoWrites(t *testing.T) {
	mock := setupMockDB(t)
	withScheduleServer(t, weekOnePage, http.StatusOK)

	// Snapshot already matches the page: the only DB access allowed is
	// the snapshot read.
	rows := sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", nil, nil, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)

	geocoder := &fakeGeocoder{}
	notifier := &fakeNotifier{dispatched: true}
	s := newTestRefreshService(geocoder, notifier)

	result, err := s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Changed {
		t.Fatal("identical scrape output must not register as a change")
	}
	if len(geocoder.calls) != 0 {
		t.Fatalf("no-op cycle must not geocode, saw calls: %v", geocoder.calls)
	}
	if notifier.calls != 0 {
		t.Fatal("no-op cycle must not dispatch")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected writes in no-op cycle: %v", err)
	}
}

func TestRunCycleChangeReconcilesAndNotifies(t *testing.T) {
	mock := setupMockDB(t)
	withScheduleServer(t, weekTwoPage, http.StatusOK)

	// Stored snapshot has only Eastern Ave; Brady St is new.
	rows := sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", nil, nil, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deployments SET end_date").
		WillReturnResult(sqlmock.NewResult(0, 1))

	insertDeployments := mock.ExpectPrepare("INSERT INTO deployments")
	insertDeployments.ExpectExec().
		WithArgs("5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)",
			41.5796, -90.5513, sqlmock.AnyArg(), "2026-W23").
		WillReturnResult(sqlmock.NewResult(1, 1))
	insertDeployments.ExpectExec().
		WithArgs("1900 Brady St", "mobile", "Mobile speed camera", "Tuesday (6/1-6/7)",
			nil, nil, sqlmock.AnyArg(), "2026-W23").
		WillReturnResult(sqlmock.NewResult(2, 1))

	mock.ExpectExec("DELETE FROM camera_locations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertSnapshot := mock.ExpectPrepare("INSERT INTO camera_locations")
	insertSnapshot.ExpectExec().
		WithArgs("5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", 41.5796, -90.5513).
		WillReturnResult(sqlmock.NewResult(1, 1))
	insertSnapshot.ExpectExec().
		WithArgs("1900 Brady St", "mobile", "Mobile speed camera", "Tuesday (6/1-6/7)", nil, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	geocoder := &fakeGeocoder{}
	notifier := &fakeNotifier{dispatched: true}
	s := newTestRefreshService(geocoder, notifier)

	result, err := s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Changed || !result.Notified {
		t.Fatalf("expected changed and notified cycle, got %+v", result)
	}
	if result.LocationCount != 2 {
		t.Fatalf("expected 2 locations, got %d", result.LocationCount)
	}
	// Geocoding is per-address sequential; Brady St resolving to
	// nothing still produced a (coordinate-less) insert above.
	if len(geocoder.calls) != 2 {
		t.Fatalf("expected 2 geocode calls, got %v", geocoder.calls)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected exactly one dispatch attempt, got %d", notifier.calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunCycleFetchFailureWritesNothing(t *testing.T) {
	mock := setupMockDB(t)
	withScheduleServer(t, "", http.StatusBadGateway)

	geocoder := &fakeGeocoder{}
	notifier := &fakeNotifier{}
	s := newTestRefreshService(geocoder, notifier)

	_, err := s.RunCycle(context.Background(), false)
	if err == nil {
		t.Fatal("expected a fetch failure to abort the cycle")
	}
	if notifier.calls != 0 {
		t.Fatal("failed cycle must not dispatch")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("failed cycle touched the database: %v", err)
	}
}

func TestRunCycleRejectsConcurrentInvocation(t *testing.T) {
	s := newTestRefreshService(&fakeGeocoder{}, &fakeNotifier{})

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.RunCycle(context.Background(), false)
	if err != ErrCycleInProgress {
		t.Fatalf("expected ErrCycleInProgress, got %v", err)
	}
}

func withMutableScheduleServer(t *testing.T, body func() string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body()))
	}))
	t.Cleanup(server.Close)

	old := config.AppConfig.Source
	config.AppConfig.Source = config.SourceConfig{
		URL:               server.URL,
		ContainerSelector: "div.content_area",
		FetchTimeout:      5 * time.Second,
	}
	t.Cleanup(func() { config.AppConfig.Source = old })
}

const sameAddressTwoDaysPage = `
	<html><body><div class="content_area"><ul>
		<li>Monday: 5800 Eastern Ave (6/1-6/7)</li>
		<li>Tuesday: 5800 Eastern Ave (6/1-6/7)</li>
	</ul></div></body></html>`

func TestRunCycleMergesSameAddressAcrossDays(t *testing.T) {
	mock := setupMockDB(t)
	withScheduleServer(t, sameAddressTwoDaysPage, http.StatusOK)

	rows := sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", nil, nil, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deployments SET end_date").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// One open row per address, never one per day: the two tuples merge
	// into a single insert with a combined schedule label.
	insertDeployments := mock.ExpectPrepare("INSERT INTO deployments")
	insertDeployments.ExpectExec().
		WithArgs("5800 Eastern Ave", "mobile", "Mobile speed camera",
			"Monday (6/1-6/7), Tuesday (6/1-6/7)",
			41.5796, -90.5513, sqlmock.AnyArg(), "2026-W23").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// The snapshot keeps both per-day tuples.
	mock.ExpectExec("DELETE FROM camera_locations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertSnapshot := mock.ExpectPrepare("INSERT INTO camera_locations")
	insertSnapshot.ExpectExec().
		WithArgs("5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", 41.5796, -90.5513).
		WillReturnResult(sqlmock.NewResult(1, 1))
	insertSnapshot.ExpectExec().
		WithArgs("5800 Eastern Ave", "mobile", "Mobile speed camera", "Tuesday (6/1-6/7)", 41.5796, -90.5513).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	geocoder := &fakeGeocoder{}
	notifier := &fakeNotifier{dispatched: true}
	s := newTestRefreshService(geocoder, notifier)

	result, err := s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Changed {
		t.Fatal("expected reconciliation")
	}
	if len(geocoder.calls) != 1 {
		t.Fatalf("merged address must geocode once, got %v", geocoder.calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunCycleSequence(t *testing.T) {
	mock := setupMockDB(t)

	page := weekOnePage
	withMutableScheduleServer(t, func() string { return page })

	geocoder := &fakeGeocoder{}
	notifier := &fakeNotifier{dispatched: true}
	s := newTestRefreshService(geocoder, notifier)

	// Cycle 1: empty snapshot, first scrape is a change.
	mock.ExpectQuery("FROM camera_locations").
		WillReturnRows(sqlmock.NewRows(cameraLocationCols))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deployments SET end_date").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO deployments").ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM camera_locations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO camera_locations").ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("cycle 1: unexpected error: %v", err)
	}
	if !result.Changed || !result.Notified {
		t.Fatalf("cycle 1: expected changed and notified, got %+v", result)
	}

	// Cycle 2: identical page, snapshot now matches. Only the snapshot
	// read may hit the database, and no dispatch happens.
	rows := sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", 41.5796, -90.5513, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)

	result, err = s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("cycle 2: unexpected error: %v", err)
	}
	if result.Changed {
		t.Fatal("cycle 2: identical page must not register as a change")
	}
	if notifier.calls != 1 {
		t.Fatalf("cycle 2: expected no new dispatch attempt, got %d", notifier.calls)
	}

	// Cycle 3: the page gains an address while the dispatcher is still
	// in its cooldown window: reconciliation runs, notification is
	// skipped, and the result reports both.
	page = weekTwoPage
	notifier.dispatched = false

	rows = sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", 41.5796, -90.5513, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deployments SET end_date").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertDeployments := mock.ExpectPrepare("INSERT INTO deployments")
	insertDeployments.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	insertDeployments.ExpectExec().WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("DELETE FROM camera_locations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertSnapshot := mock.ExpectPrepare("INSERT INTO camera_locations")
	insertSnapshot.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	insertSnapshot.ExpectExec().WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	result, err = s.RunCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("cycle 3: unexpected error: %v", err)
	}
	if !result.Changed {
		t.Fatal("cycle 3: new address must register as a change")
	}
	if result.Notified {
		t.Fatal("cycle 3: cooldown-suppressed dispatch must not report as notified")
	}
	if notifier.calls != 2 {
		t.Fatalf("cycle 3: expected a second dispatch attempt, got %d", notifier.calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunCycleForceBypassesChangeDetection(t *testing.T) {
	mock := setupMockDB(t)
	withScheduleServer(t, weekOnePage, http.StatusOK)

	rows := sqlmock.NewRows(cameraLocationCols).
		AddRow(1, "5800 Eastern Ave", "mobile", "Mobile speed camera", "Monday (6/1-6/7)", nil, nil, time.Now())
	mock.ExpectQuery("FROM camera_locations").WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deployments SET end_date").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertDeployments := mock.ExpectPrepare("INSERT INTO deployments")
	insertDeployments.ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM camera_locations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insertSnapshot := mock.ExpectPrepare("INSERT INTO camera_locations")
	insertSnapshot.ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := newTestRefreshService(&fakeGeocoder{}, &fakeNotifier{dispatched: true})

	result, err := s.RunCycle(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Changed {
		t.Fatal("forced cycle must always reconcile")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
