package identity

import (
	"context"
)

// logNotifier is the default Notifier: it records the link instead of
// delivering it. Real deployments plug in an email or queue backed
// implementation through WithNotifier.
type logNotifier struct {
	logger Logger
}

var _ Notifier = (*logNotifier)(nil)

// NewLogNotifier returns a notifier that only logs verification links.
func NewLogNotifier(logger Logger) Notifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendVerificationLink(ctx context.Context, subjectID int64, link string) error {
	n.logger.Info("verification link for user %d: %s", subjectID, link)
	return nil
}
