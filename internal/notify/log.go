package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes alerts to the application log. It is used when no
// broker is configured.
type LogPublisher struct {
	log *zap.SugaredLogger
}

// NewLogPublisher returns a LogPublisher writing to log.
func NewLogPublisher(log *zap.SugaredLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

// PublishBudgetAlert logs msg as a warning. It never fails.
func (p *LogPublisher) PublishBudgetAlert(_ context.Context, msg *BudgetAlertMessage) error {
	p.log.Warnw(msg.Message,
		"user_id", msg.UserID,
		"alert_key", msg.AlertKey,
		"expenses", msg.Expenses.String(),
		"budget", msg.Budget.String())
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
