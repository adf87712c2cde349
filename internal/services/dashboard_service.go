package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pocketledger/internal/aggregate"
	"pocketledger/internal/alert"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
	"pocketledger/internal/notify"
	"pocketledger/internal/session"
)

// AlertView is the budget alert as the client should render it.
type AlertView struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	State   string `json:"state"`
	// Notify is set on the one response that first reports this breach.
	Notify bool `json:"notify"`
}

// Dashboard is the derived view returned after every recompute.
type Dashboard struct {
	TotalIncome      decimal.Decimal           `json:"total_income"`
	TotalExpenses    decimal.Decimal           `json:"total_expenses"`
	Balance          decimal.Decimal           `json:"balance"`
	Categories       []aggregate.CategoryTotal `json:"categories"`
	Budget           decimal.Decimal           `json:"budget"`
	Alert            *AlertView                `json:"alert,omitempty"`
	TransactionCount int                       `json:"transaction_count"`
	MalformedCount   int                       `json:"malformed_count"`
}

// sharedFetchTimeout bounds a store read that may outlive the request
// that started it.
const sharedFetchTimeout = 30 * time.Second

// snapshot is one store read together with the session sequence number taken
// before the read started.
type snapshot struct {
	seq uint64
	txs []models.Transaction
}

// dashboardService recomputes aggregates from a fresh store snapshot and
// evaluates the budget alert once per recompute.
type dashboardService struct {
	transactions TransactionServicer
	sessions     *session.Store
	publisher    notify.Publisher
	fetches      singleflight.Group
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(transactions TransactionServicer, sessions *session.Store, publisher notify.Publisher) DashboardServicer {
	return &dashboardService{
		transactions: transactions,
		sessions:     sessions,
		publisher:    publisher,
	}
}

// Refresh fetches the user's transactions and recomputes the dashboard.
// Concurrent refreshes for the same user share one store round trip.
func (s *dashboardService) Refresh(ctx context.Context, userID string) (*Dashboard, error) {
	snap, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, userID, snap), nil
}

// SetBudget replaces the session budget and recomputes. Negative budgets
// are rejected; zero turns alerting off.
func (s *dashboardService) SetBudget(ctx context.Context, userID string, budget decimal.Decimal) (*Dashboard, error) {
	if budget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Budget must be zero or more")
	}
	s.sessions.Get(userID).SetBudget(budget)
	return s.Refresh(ctx, userID)
}

// DismissAlert acknowledges the visible alert. The same breach stays silent
// until its numbers change.
func (s *dashboardService) DismissAlert(_ context.Context, userID string) (bool, error) {
	return s.sessions.Get(userID).DismissAlert(), nil
}

// AddTransaction stores a transaction and then awaits a full refresh, so the
// returned dashboard always includes the new record.
func (s *dashboardService) AddTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, *Dashboard, error) {
	tx, err := s.transactions.CreateTransaction(ctx, userID, in)
	if err != nil {
		return nil, nil, err
	}

	// A fetch that started before the insert must not be reused.
	s.fetches.Forget(userID)
	dashboard, err := s.Refresh(ctx, userID)
	if err != nil {
		return tx, nil, err
	}
	return tx, dashboard, nil
}

// EndSession drops the user's budget and alert state.
func (s *dashboardService) EndSession(userID string) {
	s.sessions.Clear(userID)
}

// fetch reads the user's transactions, joining a read already in flight.
// The shared read is detached from any single caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (s *dashboardService) fetch(ctx context.Context, userID string) (snapshot, error) {
	ch := s.fetches.DoChan(userID, func() (interface{}, error) {
		seq := s.sessions.Get(userID).Snapshot()

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		txs, err := s.transactions.ListTransactions(fetchCtx, userID)
		if err != nil {
			return nil, err
		}
		return snapshot{seq: seq, txs: txs}, nil
	})

	select {
	case <-ctx.Done():
		return snapshot{}, apperrors.Wrap(apperrors.ErrStore, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return snapshot{}, res.Err
		}
		return res.Val.(snapshot), nil
	}
}

func (s *dashboardService) recompute(ctx context.Context, userID string, snap snapshot) *Dashboard {
	txs := snap.txs
	summary := aggregate.Compute(txs)
	for _, m := range summary.Malformed {
		logger.Get().Warnw("skipping malformed transaction",
			"user_id", userID,
			"transaction_id", m.TransactionID,
			"reason", m.Reason,
		)
	}

	sess := s.sessions.Get(userID)
	decision, shouldNotify := sess.EvaluateSnapshot(snap.seq, summary.TotalExpenses)

	dashboard := &Dashboard{
		TotalIncome:      summary.TotalIncome,
		TotalExpenses:    summary.TotalExpenses,
		Balance:          summary.Balance,
		Categories:       summary.Categories,
		Budget:           sess.Budget(),
		TransactionCount: len(txs),
		MalformedCount:   len(summary.Malformed),
	}

	if decision.IsBreach() {
		dashboard.Alert = &AlertView{
			Key:     alert.Key,
			Message: decision.Message(),
			State:   sess.AlertState().String(),
			Notify:  shouldNotify,
		}
	}

	if shouldNotify {
		msg := notify.NewBudgetAlertMessage(userID, decision)
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			logger.Get().Errorw("failed to publish budget alert", "error", err, "user_id", userID)
		}
	}

	return dashboard
}
