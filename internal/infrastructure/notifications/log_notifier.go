package notifications

import (
	"context"

	"go.uber.org/zap"

	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/pkg/logger"
)

// LogNotifier writes notifications to the log instead of sending them.
// Used when SMTP is not configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Send(ctx context.Context, n gateways.Notification) error {
	if _, err := renderTemplate(n.Template, n.Data); err != nil {
		return err
	}
	logger.Info(ctx, "Notification (not delivered)",
		zap.String("template", n.Template),
		zap.String("to", n.To),
		zap.String("subject", subjectFor(n)),
	)
	return nil
}
