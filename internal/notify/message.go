// Package notify fans budget alerts out to whatever is listening: a
// RabbitMQ exchange in deployed environments or the structured log
// otherwise.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"pocketledger/internal/alert"

	"github.com/shopspring/decimal"
)

// Publisher delivers budget alert messages.
type Publisher interface {
	PublishBudgetAlert(ctx context.Context, msg *BudgetAlertMessage) error
	Close() error
}

// BudgetAlertMessage describes one budget breach the user was notified of.
type BudgetAlertMessage struct {
	UserID    string          `json:"user_id"`
	AlertKey  string          `json:"alert_key"`
	Expenses  decimal.Decimal `json:"expenses"`
	Budget    decimal.Decimal `json:"budget"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewBudgetAlertMessage builds the message for a breach decision.
func NewBudgetAlertMessage(userID string, d alert.Decision) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		UserID:    userID,
		AlertKey:  alert.Key,
		Expenses:  d.Expenses,
		Budget:    d.Budget,
		Message:   d.Message(),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes a message published by AMQPPublisher.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
