package services

import (
	"context"
	"sync"

	"pocketledger/internal/models"
	"pocketledger/internal/notify"
	"pocketledger/internal/pagination"
)

type mockTransactionService struct {
	createFn func(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, error)
	listFn   func(ctx context.Context, userID string) ([]models.Transaction, error)
	pageFn   func(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTransactionService) GetTransactionsPage(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.pageFn != nil {
		return m.pageFn(ctx, userID, page)
	}
	resp := pagination.NewPageResponse[models.Transaction](nil, 1, 20, 0)
	return &resp, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	err  error
	msgs []*notify.BudgetAlertMessage
}

func (p *recordingPublisher) PublishBudgetAlert(_ context.Context, msg *notify.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}
