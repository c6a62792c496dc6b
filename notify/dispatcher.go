// notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/camalert/backend/database"
	"github.com/camalert/backend/models"
)

// Store is the persistence surface the dispatcher needs: the fan-out
// set, the audit trail, and the persisted cooldown state.
type Store interface {
	GetAlertSubscribers() ([]models.Subscriber, error)
	InsertNotificationRecord(rec *models.NotificationRecord) error
	GetNotificationState() (*models.NotificationState, error)
	UpdateNotificationState(lastSentAt time.Time) error
}

// DBStore backs Store with the database package.
type DBStore struct{}

func (DBStore) GetAlertSubscribers() ([]models.Subscriber, error) {
	return database.GetAlertSubscribers()
}
func (DBStore) InsertNotificationRecord(rec *models.NotificationRecord) error {
	return database.InsertNotificationRecord(rec)
}
func (DBStore) GetNotificationState() (*models.NotificationState, error) {
	return database.GetNotificationState()
}
func (DBStore) UpdateNotificationState(lastSentAt time.Time) error {
	return database.UpdateNotificationState(lastSentAt)
}

// Dispatcher fans a confirmed location change out to subscribers,
// enforcing the cooldown window between batches. The last-sent
// timestamp is persisted, so restarts neither reset the window nor
// double-fire.
type Dispatcher struct {
	store    Store
	email    EmailSender
	push     PushSender
	cooldown time.Duration
	limiter  *rate.Limiter

	mu         sync.Mutex
	lastSentAt *time.Time

	now func() time.Time
}

func NewDispatcher(store Store, email EmailSender, push PushSender, cooldown, sendInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		store:    store,
		email:    email,
		push:     push,
		cooldown: cooldown,
		limiter:  rate.NewLimiter(rate.Every(sendInterval), 1),
		now:      time.Now,
	}
}

// Initialize loads the persisted cooldown state. Must be called once at
// startup before the first dispatch.
func (d *Dispatcher) Initialize() error {
	state, err := d.store.GetNotificationState()
	if err != nil {
		return fmt.Errorf("failed to load notification state: %w", err)
	}

	d.mu.Lock()
	d.lastSentAt = state.LastSentAt
	d.mu.Unlock()

	if state.LastSentAt != nil {
		log.Printf("Notify: Initialized last notification time from DB: %s\n", state.LastSentAt.Format(time.RFC3339))
	} else {
		log.Println("Notify: No previous notification batch on record.")
	}
	return nil
}

// NotifyLocationChange dispatches alerts for the new canonical list to
// every eligible subscriber. Returns true when at least one delivery
// succeeded and the cooldown timestamp advanced.
//
// Rules, in order:
//   - inside the cooldown window: skip entirely, even for a real change;
//   - each subscriber gets an email attempt and, when a push token is
//     present, an independent push attempt, each audited sent/failed;
//   - one subscriber's failure never aborts the loop;
//   - a batch where every delivery failed does not advance the cooldown
//     timestamp, so the whole batch is retried on the next change.
func (d *Dispatcher) NotifyLocationChange(ctx context.Context, locations []models.CanonicalLocation) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.lastSentAt != nil {
		elapsed := now.Sub(*d.lastSentAt)
		if elapsed < d.cooldown {
			log.Printf("Notify: Cooldown active (%s elapsed of %s), skipping dispatch.\n",
				elapsed.Round(time.Minute), d.cooldown)
			return false, nil
		}
	}

	subscribers, err := d.store.GetAlertSubscribers()
	if err != nil {
		return false, fmt.Errorf("failed to load subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		log.Println("Notify: No eligible subscribers, nothing to dispatch.")
		return false, nil
	}

	batchID := uuid.NewString()
	log.Printf("Notify: Dispatching batch %s to %d subscriber(s) for %d location(s).\n",
		batchID, len(subscribers), len(locations))

	anySuccess := false
	for _, sub := range subscribers {
		if err := d.limiter.Wait(ctx); err != nil {
			return anySuccess, fmt.Errorf("dispatch interrupted: %w", err)
		}

		emailErr := d.email.SendLocationAlert(sub.Email, locations)
		d.audit(sub.ID, batchID, models.NotificationChannelEmail, emailErr)
		if emailErr == nil {
			anySuccess = true
		} else {
			log.Printf("Notify: Email to subscriber %d failed: %v\n", sub.ID, emailErr)
		}

		if sub.PushToken != "" {
			pushErr := d.push.SendPush(
				sub.PushToken,
				"Camera locations updated",
				fmt.Sprintf("%d mobile camera location(s) are active this week.", len(locations)),
				map[string]string{"type": "location_change"},
			)
			d.audit(sub.ID, batchID, models.NotificationChannelPush, pushErr)
			if pushErr == nil {
				anySuccess = true
			} else {
				log.Printf("Notify: Push to subscriber %d failed: %v\n", sub.ID, pushErr)
			}
		}
	}

	if !anySuccess {
		log.Printf("Notify: Every delivery in batch %s failed; cooldown timestamp not advanced.\n", batchID)
		return false, nil
	}

	sentAt := d.now()
	if err := d.store.UpdateNotificationState(sentAt); err != nil {
		// The batch went out; failing to persist only risks an extra
		// batch after restart.
		log.Printf("ERROR Notify: Failed to persist notification state: %v\n", err)
	}
	d.lastSentAt = &sentAt

	log.Printf("Notify: Batch %s dispatched, cooldown timestamp set to %s.\n", batchID, sentAt.Format(time.RFC3339))
	return true, nil
}

// audit writes one record per delivery attempt. Audit failures are
// logged, never allowed to abort dispatch.
func (d *Dispatcher) audit(subscriberID int64, batchID, channel string, attemptErr error) {
	rec := &models.NotificationRecord{
		SubscriberID: subscriberID,
		BatchID:      batchID,
		Channel:      channel,
		Status:       models.NotificationStatusSent,
		SentAt:       d.now(),
	}
	if attemptErr != nil {
		rec.Status = models.NotificationStatusFailed
		rec.ErrorMessage = attemptErr.Error()
	}
	if err := d.store.InsertNotificationRecord(rec); err != nil {
		log.Printf("ERROR Notify: Failed to write audit record for subscriber %d: %v\n", subscriberID, err)
	}
}
