// Package email sends transactional mail through SendGrid, throttled to stay
// under the provider's rate limits.
package email

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/time/rate"

	"college-reclaim/config"
)

// Sender wraps the SendGrid client. All sends go through a shared limiter of
// one message per second; this is a blunt global cap, not per-recipient
// scheduling.
type Sender struct {
	client    *sendgrid.Client
	limiter   *rate.Limiter
	fromName  string
	fromEmail string
	enabled   bool
}

// NewSender creates a sender. With an empty API key the sender is disabled
// and sends are logged and dropped, which keeps local development working.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		limiter:   rate.NewLimiter(rate.Limit(1), 3),
		fromName:  cfg.EmailFromName,
		fromEmail: cfg.EmailFromAddress,
		enabled:   cfg.SendGridAPIKey != "",
	}
}

// Send delivers a single HTML email. Errors are returned for the caller to
// log or collect; there is no retry queue.
func (s *Sender) Send(ctx context.Context, recipient, subject, plainText, htmlContent string) error {
	if !s.enabled {
		log.Infof("Email disabled, dropping %q to %s", subject, recipient)
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(recipient, recipient)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", response.StatusCode, response.Body)
	}

	log.Infof("Email %q sent to %s", subject, recipient)
	return nil
}
