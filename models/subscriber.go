// models/subscriber.go
package models

import "time"

// Subscriber holds notification preferences and delivery tokens. The
// subscription CRUD surface is owned elsewhere; the notifier only reads
// subscribers and writes audit records.
type Subscriber struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PushToken      string    `db:"push_token" json:"push_token,omitempty"`
	LocationAlerts bool      `db:"location_alerts" json:"location_alerts"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Notification audit statuses and channels.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"

	NotificationChannelEmail = "email"
	NotificationChannelPush  = "push"
)

// NotificationRecord is one audit row per (subscriber, dispatch attempt),
// written after every attempt, success or failure. BatchID groups all
// attempts belonging to one dispatch fan-out.
type NotificationRecord struct {
	ID           int64     `db:"id" json:"id"`
	SubscriberID int64     `db:"subscriber_id" json:"subscriber_id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	Channel      string    `db:"channel" json:"channel"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	SentAt       time.Time `db:"sent_at" json:"sent_at"`
}

// NotificationState is the single persisted row tracking when the last
// successful notification batch went out. The cooldown window is backed
// by this row so it survives process restarts.
type NotificationState struct {
	ID         int64      `db:"id" json:"id"`
	LastSentAt *time.Time `db:"last_sent_at" json:"last_sent_at,omitempty"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
