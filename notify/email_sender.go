// notify/email_sender.go
package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/models"
)

// EmailSender delivers a location-change alert to one subscriber.
type EmailSender interface {
	SendLocationAlert(to string, locations []models.CanonicalLocation) error
}

// SMTPSender sends plain-text alert mail over SMTP, with optional
// implicit TLS.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendLocationAlert(to string, locations []models.CanonicalLocation) error {
	subject := "Davenport mobile camera locations have changed"

	var body strings.Builder
	body.WriteString("The mobile traffic camera deployment schedule has been updated.\n\n")
	body.WriteString("Current locations:\n")
	for _, loc := range locations {
		body.WriteString(fmt.Sprintf("  - %s", loc.Address))
		if loc.Schedule != "" {
			body.WriteString(fmt.Sprintf(" (%s)", loc.Schedule))
		}
		body.WriteString("\n")
	}
	body.WriteString("\nView the map for details.\n")

	if err := s.send(to, subject, body.String()); err != nil {
		return &DispatchError{Channel: models.NotificationChannelEmail, Op: "send", Err: err}
	}
	return nil
}

func (s *SMTPSender) send(to string, subject string, body string) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	headers := map[string]string{
		"From":         s.cfg.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=\"utf-8\"",
	}

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	if s.cfg.UseTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
		if err != nil {
			return err
		}
		c, err := smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			return err
		}
		defer c.Quit()
		if err := c.Auth(auth); err != nil {
			return err
		}
		if err := c.Mail(s.cfg.From); err != nil {
			return err
		}
		if err := c.Rcpt(to); err != nil {
			return err
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(msg.String()))
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		return err
	}

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
