package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/models"
)

// Mailer sends one email. Implementations retry internally; a returned
// error means delivery gave up.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Store persists notification rows alongside delivery.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkDelivered(ctx context.Context, notificationID string, at time.Time) error
}

// Service records and delivers user notifications. Every message gets a
// persisted row; email delivery is best effort and never propagates an
// error to the caller.
type Service struct {
	store  Store
	mailer Mailer
	log    zerolog.Logger
}

func NewService(store Store, mailer Mailer, log zerolog.Logger) *Service {
	return &Service{store: store, mailer: mailer, log: log}
}

// Notify persists the notification and attempts email delivery.
func (s *Service) Notify(ctx context.Context, user *models.User, subject, message string) {
	n := &models.Notification{
		RecipientID: user.ID,
		Subject:     subject,
		Message:     message,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.log.Error().Err(err).Str("recipient", user.ID).Msg("Failed to persist notification")
		return
	}

	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, user.Email, subject, message); err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Str("subject", subject).Msg("Email delivery failed")
		return
	}
	now := time.Now()
	if err := s.store.MarkDelivered(ctx, n.ID, now); err != nil {
		s.log.Error().Err(err).Str("notification", n.ID).Msg("Failed to mark notification delivered")
	}
}

// SMTPMailer delivers mail over plain SMTP with auth, retrying transient
// failures with exponential backoff.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body))

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(func() error {
		return smtp.SendMail(addr, auth, from, []string{to}, msg)
	}, policy)
}
