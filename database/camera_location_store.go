// database/camera_location_store.go
package database

import (
	"database/sql"
	"errors"

	"github.com/camalert/backend/models"
)

var errNotInitialized = errors.New("database connection is not initialized")

// GetCameraLocations returns the current-state snapshot: the canonical
// list persisted by the last successful reconciliation.
func GetCameraLocations() ([]models.CameraLocation, error) {
	if DB == nil {
		return nil, &PersistenceError{Op: "query camera locations", Err: errNotInitialized}
	}

	rows, err := DB.Query(`
		SELECT id, address, camera_type, description, schedule,
		       latitude, longitude, scraped_at
		FROM camera_locations
		ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "query camera locations", Err: err}
	}
	defer rows.Close()

	var locations []models.CameraLocation
	for rows.Next() {
		var loc models.CameraLocation
		var lat, lon sql.NullFloat64

		err := rows.Scan(
			&loc.ID, &loc.Address, &loc.CameraType, &loc.Description, &loc.Schedule,
			&lat, &lon, &loc.ScrapedAt,
		)
		if err != nil {
			return nil, &PersistenceError{Op: "scan camera location row", Err: err}
		}
		if lat.Valid {
			loc.Latitude = &lat.Float64
		}
		if lon.Valid {
			loc.Longitude = &lon.Float64
		}
		locations = append(locations, loc)
	}
	if err = rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate camera location rows", Err: err}
	}
	return locations, nil
}

// replaceCameraLocationsTx clears and bulk-inserts the snapshot table
// inside the caller's transaction. Only the reconciliation transaction
// calls this.
func replaceCameraLocationsTx(tx *sql.Tx, locations []models.CameraLocation) error {
	_, err := tx.Exec("DELETE FROM camera_locations")
	if err != nil {
		return &PersistenceError{Op: "clear camera locations", Err: err}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO camera_locations (
			address, camera_type, description, schedule,
			latitude, longitude, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW())
	`)
	if err != nil {
		return &PersistenceError{Op: "prepare camera location insert", Err: err}
	}
	defer stmt.Close()

	for _, loc := range locations {
		_, err := stmt.Exec(
			loc.Address, loc.CameraType, loc.Description, loc.Schedule,
			nullFloat(loc.Latitude), nullFloat(loc.Longitude),
		)
		if err != nil {
			return &PersistenceError{Op: "insert camera location for " + loc.Address, Err: err}
		}
	}
	return nil
}
