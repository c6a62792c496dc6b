// handlers/export_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/models"
)

// deploymentExportRow flattens a deployment into the CSV columns the
// download exposes. Nullable fields export as empty cells.
type deploymentExportRow struct {
	ID         int64   `csv:"id"`
	Address    string  `csv:"address"`
	CameraType string  `csv:"camera_type"`
	Schedule   string  `csv:"schedule"`
	Latitude   float64 `csv:"latitude,omitempty"`
	Longitude  float64 `csv:"longitude,omitempty"`
	StartDate  string  `csv:"start_date"`
	EndDate    string  `csv:"end_date,omitempty"`
	WeekOfYear string  `csv:"week_of_year"`
}

// ExportDeploymentsHandler handles GET /api/deployments/export and
// streams the full deployment history as CSV.
func ExportDeploymentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	deployments, err := database.GetAllDeployments()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load deployments: %v", err))
		return
	}

	rows := make([]deploymentExportRow, 0, len(deployments))
	for _, d := range deployments {
		rows = append(rows, exportRow(d))
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to build CSV export: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="deployment_history.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func exportRow(d models.Deployment) deploymentExportRow {
	row := deploymentExportRow{
		ID:         d.ID,
		Address:    d.Address,
		CameraType: d.CameraType,
		Schedule:   d.Schedule,
		StartDate:  d.StartDate.Format(time.DateOnly),
		WeekOfYear: d.WeekOfYear,
	}
	if d.Latitude != nil {
		row.Latitude = *d.Latitude
	}
	if d.Longitude != nil {
		row.Longitude = *d.Longitude
	}
	if d.EndDate != nil {
		row.EndDate = d.EndDate.Format(time.DateOnly)
	}
	return row
}
