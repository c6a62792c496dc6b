// database/deployment_store.go
package database

import (
	"database/sql"
	"log"
	"time"

	"github.com/camalert/backend/models"
)

const deploymentColumns = `
	id, address, camera_type, description, schedule,
	latitude, longitude, start_date, end_date, week_of_year,
	created_at, updated_at`

// GetAllDeployments returns the full deployment history, newest first.
func GetAllDeployments() ([]models.Deployment, error) {
	return queryDeployments(`
		SELECT` + deploymentColumns + `
		FROM deployments
		ORDER BY start_date DESC, id DESC`)
}

// GetOpenDeployments returns deployments with no end date, the set
// currently believed active.
func GetOpenDeployments() ([]models.Deployment, error) {
	return queryDeployments(`
		SELECT` + deploymentColumns + `
		FROM deployments
		WHERE end_date IS NULL
		ORDER BY start_date DESC, id DESC`)
}

// GetClosedDeployments returns the historical (ended) deployments.
func GetClosedDeployments() ([]models.Deployment, error) {
	return queryDeployments(`
		SELECT` + deploymentColumns + `
		FROM deployments
		WHERE end_date IS NOT NULL
		ORDER BY start_date DESC, id DESC`)
}

// GetDeploymentsByWeek returns deployments tagged with the given ISO
// week label, e.g. "2026-W35".
func GetDeploymentsByWeek(weekLabel string) ([]models.Deployment, error) {
	return queryDeployments(`
		SELECT`+deploymentColumns+`
		FROM deployments
		WHERE week_of_year = ?
		ORDER BY start_date DESC, id DESC`, weekLabel)
}

// ReplaceDeploymentCycle applies one confirmed change atomically:
// closes every currently-open deployment, inserts the fresh open rows,
// and replaces the camera_locations snapshot wholesale. Everything runs
// in a single transaction so readers never observe a half-applied cycle
// or a momentarily empty snapshot.
func ReplaceDeploymentCycle(newDeployments []models.Deployment, snapshot []models.CameraLocation, endDate time.Time) error {
	if DB == nil {
		return &PersistenceError{Op: "replace-cycle", Err: errNotInitialized}
	}

	tx, err := DB.Begin()
	if err != nil {
		return &PersistenceError{Op: "replace-cycle begin", Err: err}
	}
	defer tx.Rollback()

	// Step 1: close all open rows, whether or not their address is in
	// the new list. The source republishes the entire weekly schedule
	// atomically, so each refresh is a full-week replacement.
	result, err := tx.Exec(
		"UPDATE deployments SET end_date = ?, updated_at = NOW() WHERE end_date IS NULL",
		endDate,
	)
	if err != nil {
		return &PersistenceError{Op: "close open deployments", Err: err}
	}
	closed, _ := result.RowsAffected()

	// Step 2: insert a fresh open row per canonical tuple.
	stmt, err := tx.Prepare(`
		INSERT INTO deployments (
			address, camera_type, description, schedule,
			latitude, longitude, start_date, end_date, week_of_year,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, NOW(), NOW())
	`)
	if err != nil {
		return &PersistenceError{Op: "prepare deployment insert", Err: err}
	}
	defer stmt.Close()

	for _, d := range newDeployments {
		_, err := stmt.Exec(
			d.Address, d.CameraType, d.Description, d.Schedule,
			nullFloat(d.Latitude), nullFloat(d.Longitude),
			d.StartDate, d.WeekOfYear,
		)
		if err != nil {
			return &PersistenceError{Op: "insert deployment for " + d.Address, Err: err}
		}
	}

	// Step 3: replace the snapshot so the next change-detector run
	// compares against exactly what was just computed.
	if err := replaceCameraLocationsTx(tx, snapshot); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "replace-cycle commit", Err: err}
	}

	log.Printf("Database: Reconciliation applied: closed %d open deployments, opened %d, snapshot now %d rows.\n",
		closed, len(newDeployments), len(snapshot))
	return nil
}

// DeleteDeployment removes a single deployment row. Only the integrity
// analyzer's duplicate-cleanup path should ever call this.
func DeleteDeployment(id int64) error {
	if DB == nil {
		return &PersistenceError{Op: "delete deployment", Err: errNotInitialized}
	}
	_, err := DB.Exec("DELETE FROM deployments WHERE id = ?", id)
	if err != nil {
		return &PersistenceError{Op: "delete deployment", Err: err}
	}
	return nil
}

func queryDeployments(query string, args ...interface{}) ([]models.Deployment, error) {
	if DB == nil {
		return nil, &PersistenceError{Op: "query deployments", Err: errNotInitialized}
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "query deployments", Err: err}
	}
	defer rows.Close()

	var deployments []models.Deployment
	for rows.Next() {
		var d models.Deployment
		var lat, lon sql.NullFloat64
		var endDate sql.NullTime

		err := rows.Scan(
			&d.ID, &d.Address, &d.CameraType, &d.Description, &d.Schedule,
			&lat, &lon, &d.StartDate, &endDate, &d.WeekOfYear,
			&d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, &PersistenceError{Op: "scan deployment row", Err: err}
		}
		if lat.Valid {
			d.Latitude = &lat.Float64
		}
		if lon.Valid {
			d.Longitude = &lon.Float64
		}
		if endDate.Valid {
			d.EndDate = &endDate.Time
		}
		deployments = append(deployments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate deployment rows", Err: err}
	}
	return deployments, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
