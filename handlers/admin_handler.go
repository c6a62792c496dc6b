// handlers/admin_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/camalert/backend/services"
)

// AdminHandler exposes the manual-trigger and integrity endpoints.
type AdminHandler struct {
	Refresh *services.RefreshService
}

func NewAdminHandler(refresh *services.RefreshService) *AdminHandler {
	return &AdminHandler{Refresh: refresh}
}

// RunCycleHandler handles POST /api/admin/refresh (force=true, always
// reconciles) and POST /api/admin/check (force=false, reconciles only
// on a detected change). Both funnel into the same serialized cycle.
func (h *AdminHandler) RunCycleHandler(force bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
			return
		}

		result, err := h.Refresh.RunCycle(r.Context(), force)
		if errors.Is(err, services.ErrCycleInProgress) {
			respondWithError(w, http.StatusConflict, "A refresh cycle is already running")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Refresh cycle failed: %v", err))
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}

// IntegrityReportHandler handles GET /api/admin/integrity.
func (h *AdminHandler) IntegrityReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	report, err := services.AnalyzeDeployments()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Integrity analysis failed: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// IntegrityCleanupHandler handles POST /api/admin/integrity/cleanup.
// Query param scope=closed (default) restricts deletion to rows that
// are not currently open; scope=all collapses every duplicate group.
func (h *AdminHandler) IntegrityCleanupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	scope := r.URL.Query().Get("scope")
	var onlyClosed bool
	switch scope {
	case "", "closed":
		onlyClosed = true
	case "all":
		onlyClosed = false
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid scope '%s'. Use 'closed' or 'all'.", scope))
		return
	}

	result, err := services.CleanupDuplicates(onlyClosed)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Duplicate cleanup failed: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
