package notify

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// LogNotifier stands in for SMTP when no credentials are configured: it
// logs each message instead of sending it. The reset code is written at
// debug level only.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notify", "delivery", "simulated")}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, email, name string) error {
	n.logger.Info(ctx, "welcome email", "to", email, "subject", subjectWelcome, "name", name)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, name, code string) error {
	n.logger.Info(ctx, "password reset email", "to", email, "subject", subjectReset, "name", name)
	n.logger.Debug(ctx, "password reset code", "to", email, "code", code)
	return nil
}
