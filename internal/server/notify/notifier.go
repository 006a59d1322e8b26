// Package notify delivers account emails: the welcome message after
// registration and the password-reset code. Delivery is best effort.
package notify

import "context"

// Notifier sends account notifications to an email address.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, code string) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

const (
	subjectWelcome = "Welcome! Your account is ready"
	subjectReset   = "Your password reset code"
)
