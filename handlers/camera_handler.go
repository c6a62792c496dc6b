// handlers/camera_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/models"
	"github.com/camalert/backend/services"
)

// CameraHandler exposes the read API the map UI consumes, plus the
// stationary-camera admin surface.
type CameraHandler struct {
	Geocoder services.Geocoder
}

func NewCameraHandler(geocoder services.Geocoder) *CameraHandler {
	return &CameraHandler{Geocoder: geocoder}
}

// CurrentLocationsHandler handles GET /api/locations, serving the
// snapshot of this week's canonical list.
func (h *CameraHandler) CurrentLocationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	locations, err := database.GetCameraLocations()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load current locations: %v", err))
		return
	}
	if locations == nil {
		locations = []models.CameraLocation{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

// DeploymentsHandler handles GET /api/deployments with optional query
// params: status=open|closed, week=YYYY-Www. Without params the full
// history is returned.
func (h *CameraHandler) DeploymentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	var (
		deployments []models.Deployment
		err         error
	)

	if week := r.URL.Query().Get("week"); week != "" {
		deployments, err = database.GetDeploymentsByWeek(week)
	} else {
		switch status := r.URL.Query().Get("status"); status {
		case "open":
			deployments, err = database.GetOpenDeployments()
		case "closed":
			deployments, err = database.GetClosedDeployments()
		case "":
			deployments, err = database.GetAllDeployments()
		default:
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid status '%s'. Use 'open' or 'closed'.", status))
			return
		}
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load deployments: %v", err))
		return
	}
	if deployments == nil {
		deployments = []models.Deployment{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"deployments": deployments})
}

// StationaryCamerasHandler handles GET and POST /api/stationary.
// POST creates a fixture camera, geocoding it once on creation.
func (h *CameraHandler) StationaryCamerasHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cameras, err := database.GetStationaryCameras(r.URL.Query().Get("status"))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load stationary cameras: %v", err))
			return
		}
		if cameras == nil {
			cameras = []models.StationaryCamera{}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"cameras": cameras})

	case http.MethodPost:
		var cam models.StationaryCamera
		if err := json.NewDecoder(r.Body).Decode(&cam); err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
			return
		}
		if cam.Address == "" {
			respondWithError(w, http.StatusBadRequest, "Field 'address' is required")
			return
		}
		if cam.CameraType == "" {
			cam.CameraType = models.CameraTypeRedLight
		}
		if cam.Status == "" {
			cam.Status = models.StationaryStatusUnconfirmed
		}

		// Fixtures are geocoded once at creation; a miss is recoverable
		// and shows up in the integrity report, not an API failure.
		if result, err := h.Geocoder.Geocode(r.Context(), cam.Address); err == nil && result != nil {
			cam.Latitude = &result.Lat
			cam.Longitude = &result.Lon
		}

		if err := database.SaveStationaryCamera(&cam); err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save stationary camera: %v", err))
			return
		}
		respondWithJSON(w, http.StatusCreated, cam)

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
	}
}

type stationaryStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// StationaryStatusHandler handles POST /api/stationary/status, moving a
// fixture through its active/inactive/unconfirmed lifecycle.
func (h *CameraHandler) StationaryStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req stationaryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	switch req.Status {
	case models.StationaryStatusActive, models.StationaryStatusInactive, models.StationaryStatusUnconfirmed:
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid status '%s'.", req.Status))
		return
	}

	if err := database.UpdateStationaryCameraStatus(req.ID, req.Status); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update stationary camera: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Status updated."})
}
