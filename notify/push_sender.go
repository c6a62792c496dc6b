// notify/push_sender.go
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/models"
)

// PushSender delivers a push notification to one device token.
type PushSender interface {
	SendPush(token, title, body string, data map[string]string) error
}

// FCMSender posts notifications to the Firebase Cloud Messaging HTTP
// endpoint.
type FCMSender struct {
	cfg    config.FCMConfig
	client *http.Client
}

func NewFCMSender(cfg config.FCMConfig) *FCMSender {
	return &FCMSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

func (s *FCMSender) SendPush(token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(fcmMessage{
		To:           token,
		Notification: fcmNotification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "marshal", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)

	res, err := s.client.Do(req)
	if err != nil {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "send", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "send",
			Err: fmt.Errorf("received status code %d", res.StatusCode)}
	}

	var fcmRes fcmResponse
	if err := json.NewDecoder(res.Body).Decode(&fcmRes); err != nil {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "decode", Err: err}
	}
	if fcmRes.Failure > 0 {
		return &DispatchError{Channel: models.NotificationChannelPush, Op: "send",
			Err: fmt.Errorf("provider reported %d failed message(s)", fcmRes.Failure)}
	}
	return nil
}
