// models/deployment.go
package models

import "time"

// Camera type values as stored in the deployments and stationary_cameras tables.
const (
	CameraTypeMobile   = "mobile"
	CameraTypeFixed    = "fixed"
	CameraTypeRedLight = "red_light"
)

// Deployment is a time-bounded assignment of a mobile camera to an address.
// A deployment is open while EndDate is NULL; there is no separate active
// flag, openness is derived from EndDate only.
type Deployment struct {
	ID          int64      `db:"id" json:"id"`
	Address     string     `db:"address" json:"address"`
	CameraType  string     `db:"camera_type" json:"camera_type"`
	Description string     `db:"description" json:"description,omitempty"`
	Schedule    string     `db:"schedule" json:"schedule,omitempty"`
	Latitude    *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64   `db:"longitude" json:"longitude,omitempty"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	WeekOfYear  string     `db:"week_of_year" json:"week_of_year"` // e.g. "2026-W35"
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// IsOpen reports whether the deployment is currently believed active.
func (d *Deployment) IsOpen() bool {
	return d.EndDate == nil
}

// HasCoordinates reports whether geocoding succeeded for this deployment.
func (d *Deployment) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}
