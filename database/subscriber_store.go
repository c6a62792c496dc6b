// database/subscriber_store.go
package database

import (
	"database/sql"

	"github.com/camalert/backend/models"
)

// GetAlertSubscribers returns the active subscribers whose preferences
// include location-change alerts.
func GetAlertSubscribers() ([]models.Subscriber, error) {
	if DB == nil {
		return nil, &PersistenceError{Op: "query subscribers", Err: errNotInitialized}
	}

	rows, err := DB.Query(`
		SELECT id, email, push_token, location_alerts, active, created_at
		FROM subscribers
		WHERE active = TRUE AND location_alerts = TRUE
		ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "query subscribers", Err: err}
	}
	defer rows.Close()

	var subscribers []models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		var pushToken sql.NullString

		err := rows.Scan(&s.ID, &s.Email, &pushToken, &s.LocationAlerts, &s.Active, &s.CreatedAt)
		if err != nil {
			return nil, &PersistenceError{Op: "scan subscriber row", Err: err}
		}
		if pushToken.Valid {
			s.PushToken = pushToken.String
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate subscriber rows", Err: err}
	}
	return subscribers, nil
}
