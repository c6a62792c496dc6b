// models/camera.go
package models

import "time"

// CameraLocation is one row of the current-state snapshot table: the
// latest-known-good canonical list used purely for change detection.
// The table is fully replaced (clear + bulk insert) on every confirmed
// change, never partially updated.
type CameraLocation struct {
	ID          int64     `db:"id" json:"id"`
	Address     string    `db:"address" json:"address"`
	CameraType  string    `db:"camera_type" json:"camera_type"`
	Description string    `db:"description" json:"description,omitempty"`
	Schedule    string    `db:"schedule" json:"schedule,omitempty"`
	Latitude    *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64  `db:"longitude" json:"longitude,omitempty"`
	ScrapedAt   time.Time `db:"scraped_at" json:"scraped_at"`
}

// StationaryCamera status values.
const (
	StationaryStatusActive      = "active"
	StationaryStatusInactive    = "inactive"
	StationaryStatusUnconfirmed = "unconfirmed"
)

// StationaryCamera is a fixture outside the weekly deployment cycle,
// e.g. a red-light camera at a fixed intersection. Geocoded once on
// creation and managed through the admin API.
type StationaryCamera struct {
	ID          int64     `db:"id" json:"id"`
	Address     string    `db:"address" json:"address"`
	CameraType  string    `db:"camera_type" json:"camera_type"`
	Description string    `db:"description" json:"description,omitempty"`
	Status      string    `db:"status" json:"status"`
	Latitude    *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
