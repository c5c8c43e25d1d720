package notify

import (
	"context"
	"log"
)

// Mailer delivers the seller email. Delivery is fire-and-forget from the
// core's point of view; callers log and move on when it fails.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes the email to the process log instead of sending it.
// Stands in for the real provider in dev and tests.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Printf("mail to=%s subject=%q body=%q", to, subject, body)
	return nil
}
