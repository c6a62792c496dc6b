// database/stationary_store.go
package database

import (
	"database/sql"

	"github.com/camalert/backend/models"
)

// SaveStationaryCamera inserts a fixture camera and fills in its
// generated ID and timestamps.
func SaveStationaryCamera(cam *models.StationaryCamera) error {
	if DB == nil {
		return &PersistenceError{Op: "save stationary camera", Err: errNotInitialized}
	}

	result, err := DB.Exec(`
		INSERT INTO stationary_cameras (
			address, camera_type, description, status,
			latitude, longitude, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		cam.Address, cam.CameraType, cam.Description, cam.Status,
		nullFloat(cam.Latitude), nullFloat(cam.Longitude),
	)
	if err != nil {
		return &PersistenceError{Op: "save stationary camera", Err: err}
	}

	cam.ID, err = result.LastInsertId()
	if err != nil {
		return &PersistenceError{Op: "save stationary camera id", Err: err}
	}
	return nil
}

// GetStationaryCameras returns all fixture cameras, optionally filtered
// by status ("" returns everything).
func GetStationaryCameras(status string) ([]models.StationaryCamera, error) {
	if DB == nil {
		return nil, &PersistenceError{Op: "query stationary cameras", Err: errNotInitialized}
	}

	query := `
		SELECT id, address, camera_type, description, status,
		       latitude, longitude, created_at, updated_at
		FROM stationary_cameras`
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "query stationary cameras", Err: err}
	}
	defer rows.Close()

	var cameras []models.StationaryCamera
	for rows.Next() {
		var cam models.StationaryCamera
		var lat, lon sql.NullFloat64

		err := rows.Scan(
			&cam.ID, &cam.Address, &cam.CameraType, &cam.Description, &cam.Status,
			&lat, &lon, &cam.CreatedAt, &cam.UpdatedAt,
		)
		if err != nil {
			return nil, &PersistenceError{Op: "scan stationary camera row", Err: err}
		}
		if lat.Valid {
			cam.Latitude = &lat.Float64
		}
		if lon.Valid {
			cam.Longitude = &lon.Float64
		}
		cameras = append(cameras, cam)
	}
	if err = rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate stationary camera rows", Err: err}
	}
	return cameras, nil
}

// UpdateStationaryCameraStatus moves a fixture through its lifecycle
// (active / inactive / unconfirmed).
func UpdateStationaryCameraStatus(id int64, status string) error {
	if DB == nil {
		return &PersistenceError{Op: "update stationary camera", Err: errNotInitialized}
	}
	_, err := DB.Exec(
		"UPDATE stationary_cameras SET status = ?, updated_at = NOW() WHERE id = ?",
		status, id,
	)
	if err != nil {
		return &PersistenceError{Op: "update stationary camera", Err: err}
	}
	return nil
}
