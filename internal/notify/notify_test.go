package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketledger/internal/alert"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeChannel struct {
	exchangeErr error
	publishErr  error
	declared    []string
	bound       [3]string
	published   []amqp091.Publishing
	keys        []string
	closed      bool
	deadlineSet bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp091.Table) error {
	if f.exchangeErr != nil {
		return f.exchangeErr
	}
	f.declared = append(f.declared, "exchange:"+name+":"+kind)
	if !durable {
		f.declared = append(f.declared, "not-durable")
	}
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	f.declared = append(f.declared, "queue:"+name)
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	f.bound = [3]string{name, key, exchange}
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	_, f.deadlineSet = ctx.Deadline()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func breach() alert.Decision {
	return alert.Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(150))
}

func TestNewBudgetAlertMessage(t *testing.T) {
	msg := NewBudgetAlertMessage("user-1", breach())

	if msg.AlertKey != alert.Key {
		t.Errorf("expected alert key %q, got %q", alert.Key, msg.AlertKey)
	}
	if msg.Message != "Budget Alert: Expenses ($150.00) exceed your budget of $100.00!" {
		t.Errorf("unexpected message %q", msg.Message)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := BudgetAlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.UserID != "user-1" || !decoded.Expenses.Equal(decimal.NewFromInt(150)) {
		t.Errorf("decoded message mismatch: %+v", decoded)
	}
}

func TestAMQPPublisher_SetupDeclaresTopology(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newAMQPPublisher(ch, "alerts", "budget_alerts", zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.declared) != 2 || ch.declared[0] != "exchange:alerts:direct" || ch.declared[1] != "queue:budget_alerts" {
		t.Errorf("unexpected declarations: %v", ch.declared)
	}
	if ch.bound != [3]string{"budget_alerts", "budget_alerts", "alerts"} {
		t.Errorf("unexpected binding: %v", ch.bound)
	}
}

func TestAMQPPublisher_SetupFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{exchangeErr: errors.New("access refused")}
	_, err := newAMQPPublisher(ch, "alerts", "budget_alerts", zap.NewNop().Sugar())
	if err == nil {
		t.Fatal("expected setup error")
	}
	if !ch.closed {
		t.Error("channel should be closed after a failed setup")
	}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	t.Run("persistent_json", func(t *testing.T) {
		ch := &fakeChannel{}
		p, _ := newAMQPPublisher(ch, "alerts", "budget_alerts", zap.NewNop().Sugar())

		msg := NewBudgetAlertMessage("user-1", breach())
		if err := p.PublishBudgetAlert(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(ch.published) != 1 {
			t.Fatalf("expected 1 publishing, got %d", len(ch.published))
		}
		pub := ch.published[0]
		if pub.ContentType != "application/json" || pub.DeliveryMode != amqp091.Persistent {
			t.Errorf("unexpected publishing properties: %+v", pub)
		}
		if ch.keys[0] != "budget_alerts" {
			t.Errorf("routing key should be the queue name, got %q", ch.keys[0])
		}
		if !ch.deadlineSet {
			t.Error("publish should run under a timeout")
		}
		decoded, err := BudgetAlertMessageFromJSON(pub.Body)
		if err != nil || decoded.UserID != "user-1" {
			t.Errorf("body should decode to the message, got %+v (%v)", decoded, err)
		}
	})

	t.Run("broker_error", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("channel closed")}
		p, _ := newAMQPPublisher(ch, "alerts", "budget_alerts", zap.NewNop().Sugar())

		err := p.PublishBudgetAlert(context.Background(), NewBudgetAlertMessage("user-1", breach()))
		if err == nil {
			t.Fatal("expected publish error")
		}
	})
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core).Sugar())

	msg := NewBudgetAlertMessage("user-9", breach())
	msg.Timestamp = time.Unix(0, 0)
	if err := p.PublishBudgetAlert(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[0].Message != msg.Message {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if entries[0].ContextMap()["user_id"] != "user-9" {
		t.Errorf("entry should carry the user id, got %v", entries[0].ContextMap())
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
