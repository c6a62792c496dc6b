// database/notification_store.go
package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/camalert/backend/models"
)

// InsertNotificationRecord writes one audit row for a delivery attempt,
// success or failure.
func InsertNotificationRecord(rec *models.NotificationRecord) error {
	if DB == nil {
		return &PersistenceError{Op: "insert notification record", Err: errNotInitialized}
	}

	result, err := DB.Exec(`
		INSERT INTO notification_records (
			subscriber_id, batch_id, channel, status, error_message, sent_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SubscriberID, rec.BatchID, rec.Channel, rec.Status,
		nullString(rec.ErrorMessage), rec.SentAt,
	)
	if err != nil {
		return &PersistenceError{Op: "insert notification record", Err: err}
	}

	rec.ID, err = result.LastInsertId()
	if err != nil {
		return &PersistenceError{Op: "insert notification record id", Err: err}
	}
	return nil
}

// GetNotificationState loads the single persisted cooldown row. A
// missing row means no batch has ever been dispatched; that is not an
// error, just a state with no last-sent time.
func GetNotificationState() (*models.NotificationState, error) {
	if DB == nil {
		return nil, &PersistenceError{Op: "query notification state", Err: errNotInitialized}
	}

	var state models.NotificationState
	var lastSentAt sql.NullTime

	err := DB.QueryRow(`
		SELECT id, last_sent_at, updated_at
		FROM notification_state
		WHERE id = 1`).Scan(&state.ID, &lastSentAt, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NotificationState{ID: 1}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "query notification state", Err: err}
	}

	if lastSentAt.Valid {
		state.LastSentAt = &lastSentAt.Time
	}
	return &state, nil
}

// UpdateNotificationState upserts the cooldown row with the time of the
// latest successfully dispatched batch.
func UpdateNotificationState(lastSentAt time.Time) error {
	if DB == nil {
		return &PersistenceError{Op: "update notification state", Err: errNotInitialized}
	}

	_, err := DB.Exec(`
		INSERT INTO notification_state (id, last_sent_at, updated_at)
		VALUES (1, ?, NOW())
		ON DUPLICATE KEY UPDATE
			last_sent_at = VALUES(last_sent_at),
			updated_at = NOW()`,
		lastSentAt,
	)
	if err != nil {
		return &PersistenceError{Op: "update notification state", Err: err}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
