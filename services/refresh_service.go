// services/refresh_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/models"
	"github.com/camalert/backend/scraper"
)

// ErrCycleInProgress is returned when a cycle is requested while one is
// already running. At most one cycle may be in flight.
var ErrCycleInProgress = errors.New("a refresh cycle is already running")

// Notifier is the fan-out seam the refresh cycle calls after a change
// is persisted.
type Notifier interface {
	NotifyLocationChange(ctx context.Context, locations []models.CanonicalLocation) (bool, error)
}

// CycleResult summarizes one scrape-reconcile-notify cycle.
type CycleResult struct {
	Changed       bool `json:"changed"`
	Notified      bool `json:"notified"`
	LocationCount int  `json:"location_count"`
}

// RefreshService orchestrates the pipeline: fetch, detect, reconcile,
// notify. Both the cron scheduler and the manual admin endpoint go
// through RunCycle; the mutex serializes them.
type RefreshService struct {
	mu         sync.Mutex
	geocoder   Geocoder
	dispatcher Notifier
	now        func() time.Time
}

func NewRefreshService(geocoder Geocoder, dispatcher Notifier) *RefreshService {
	return &RefreshService{
		geocoder:   geocoder,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// RunCycle runs one scrape-reconcile-notify cycle. With force set the
// change check is bypassed and reconciliation always runs (the cooldown
// still governs whether notifications go out).
//
// A fetch or persistence failure aborts the cycle with nothing written;
// snapshot and history stay as they were until the next successful run.
func (s *RefreshService) RunCycle(ctx context.Context, force bool) (*CycleResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer s.mu.Unlock()

	log.Printf("Service: Starting refresh cycle (force=%t)...\n", force)

	current, err := scraper.FetchCurrentDeployments(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh cycle aborted: %w", err)
	}

	stored, err := database.GetCameraLocations()
	if err != nil {
		return nil, fmt.Errorf("refresh cycle aborted: %w", err)
	}

	result := &CycleResult{LocationCount: len(current)}

	if !force && !scraper.HasChanged(current, stored) {
		log.Println("Service: No meaningful change detected, cycle complete with no writes.")
		return result, nil
	}
	result.Changed = true

	if err := reconcileDeployments(ctx, s.geocoder, current, s.now()); err != nil {
		return nil, fmt.Errorf("refresh cycle aborted: %w", err)
	}

	notified, err := s.dispatcher.NotifyLocationChange(ctx, current)
	if err != nil {
		// Reconciliation is already committed; a dispatch failure is
		// reported but does not undo the cycle.
		log.Printf("ERROR Service: Notification dispatch failed after reconciliation: %v\n", err)
		return result, fmt.Errorf("reconciled but dispatch failed: %w", err)
	}
	result.Notified = notified

	log.Printf("Service: Refresh cycle complete: %d locations, notified=%t.\n", result.LocationCount, result.Notified)
	return result, nil
}
