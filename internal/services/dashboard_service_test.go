package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/session"
	"pocketledger/internal/testutil"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(txType models.TransactionType, amount, category string) models.Transaction {
	return models.Transaction{
		Type:     txType,
		Amount:   decimal.NewNullDecimal(dec(amount)),
		Category: category,
	}
}

// staticStore serves a fixed, replaceable transaction list.
type staticStore struct {
	mu  sync.Mutex
	txs []models.Transaction
}

func (s *staticStore) set(txs ...models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
}

func (s *staticStore) add(tx models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
}

func (s *staticStore) list() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction(nil), s.txs...)
}

func (s *staticStore) service() *mockTransactionService {
	return &mockTransactionService{
		listFn: func(_ context.Context, _ string) ([]models.Transaction, error) {
			return s.list(), nil
		},
	}
}

func newTestDashboard(txSvc TransactionServicer) (DashboardServicer, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewDashboardService(txSvc, session.NewStore(time.Hour), pub), pub
}

func TestDashboard_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario_a_totals", func(t *testing.T) {
		store := &staticStore{}
		store.set(
			txn(models.TransactionTypeIncome, "1000", "Salary"),
			txn(models.TransactionTypeExpense, "200", "Food"),
			txn(models.TransactionTypeExpense, "50", "Food"),
		)
		svc, _ := newTestDashboard(store.service())

		d, err := svc.Refresh(ctx, "user-1")
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "total income", d.TotalIncome, "1000")
		testutil.AssertDecimal(t, "total expenses", d.TotalExpenses, "250")
		testutil.AssertDecimal(t, "balance", d.Balance, "750")
		if len(d.Categories) != 1 || d.Categories[0].Category != "Food" || !d.Categories[0].Amount.Equal(dec("250")) {
			t.Errorf("unexpected categories: %+v", d.Categories)
		}
		if d.Alert != nil {
			t.Error("no alert expected without a budget")
		}
		if d.TransactionCount != 3 {
			t.Errorf("expected 3 transactions, got %d", d.TransactionCount)
		}
	})

	t.Run("scenario_b_empty_with_budget", func(t *testing.T) {
		svc, pub := newTestDashboard((&staticStore{}).service())

		d, err := svc.SetBudget(ctx, "user-1", dec("500"))
		testutil.AssertNoError(t, err)

		if !d.Balance.IsZero() || !d.TotalExpenses.IsZero() || len(d.Categories) != 0 {
			t.Errorf("expected an all-zero dashboard, got %+v", d)
		}
		if d.Alert != nil || pub.count() != 0 {
			t.Error("no alert expected")
		}
		testutil.AssertDecimal(t, "budget", d.Budget, "500")
	})

	t.Run("malformed_records_are_counted_not_summed", func(t *testing.T) {
		store := &staticStore{}
		store.set(
			txn(models.TransactionTypeExpense, "10", "Food"),
			models.Transaction{Base: models.Base{ID: "bad"}, Type: models.TransactionTypeExpense},
		)
		svc, _ := newTestDashboard(store.service())

		d, err := svc.Refresh(ctx, "user-1")
		testutil.AssertNoError(t, err)
		if d.MalformedCount != 1 || !d.TotalExpenses.Equal(dec("10")) {
			t.Errorf("expected 1 malformed and expenses 10, got %d and %s", d.MalformedCount, d.TotalExpenses)
		}
	})

	t.Run("store_error", func(t *testing.T) {
		svc, _ := newTestDashboard(&mockTransactionService{
			listFn: func(_ context.Context, _ string) ([]models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrStore, errors.New("connection reset"))
			},
		})

		_, err := svc.Refresh(ctx, "user-1")
		testutil.AssertAppError(t, err, "STORE_ERROR")
	})
}

func TestDashboard_ScenarioC_AlertNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	store := &staticStore{}
	store.set(
		txn(models.TransactionTypeExpense, "100", "Food"),
		txn(models.TransactionTypeExpense, "50", "Bills"),
	)
	svc, pub := newTestDashboard(store.service())

	d, err := svc.SetBudget(ctx, "user-1", dec("100"))
	testutil.AssertNoError(t, err)
	if d.Alert == nil || !d.Alert.Notify || d.Alert.State != "shown" {
		t.Fatalf("expected a fresh alert, got %+v", d.Alert)
	}
	if d.Alert.Message != "Budget Alert: Expenses ($150.00) exceed your budget of $100.00!" {
		t.Errorf("unexpected message %q", d.Alert.Message)
	}
	if pub.count() != 1 {
		t.Fatalf("expected 1 published alert, got %d", pub.count())
	}

	d, _ = svc.Refresh(ctx, "user-1")
	if d.Alert == nil || d.Alert.Notify {
		t.Error("same numbers must keep the alert without re-notifying")
	}
	if pub.count() != 1 {
		t.Errorf("expected no new publication, got %d", pub.count())
	}

	store.set(
		txn(models.TransactionTypeExpense, "100", "Food"),
		txn(models.TransactionTypeExpense, "100", "Bills"),
	)
	d, _ = svc.Refresh(ctx, "user-1")
	if d.Alert == nil || !d.Alert.Notify {
		t.Error("changed expenses should re-notify")
	}
	if pub.count() != 2 {
		t.Errorf("expected 2 publications, got %d", pub.count())
	}
}

func TestDashboard_DismissAlert(t *testing.T) {
	ctx := context.Background()
	store := &staticStore{}
	store.set(txn(models.TransactionTypeExpense, "150", "Food"))
	svc, pub := newTestDashboard(store.service())

	if dismissed, _ := svc.DismissAlert(ctx, "user-1"); dismissed {
		t.Error("nothing to dismiss yet")
	}

	_, _ = svc.SetBudget(ctx, "user-1", dec("100"))
	dismissed, err := svc.DismissAlert(ctx, "user-1")
	testutil.AssertNoError(t, err)
	if !dismissed {
		t.Fatal("expected the alert to be dismissed")
	}

	d, _ := svc.Refresh(ctx, "user-1")
	if d.Alert == nil || d.Alert.State != "dismissed" || d.Alert.Notify {
		t.Errorf("dismissed alert should stay silent, got %+v", d.Alert)
	}

	store.set(txn(models.TransactionTypeExpense, "175", "Food"))
	d, _ = svc.Refresh(ctx, "user-1")
	if d.Alert == nil || !d.Alert.Notify {
		t.Error("new numbers after dismissal should notify")
	}
	if pub.count() != 2 {
		t.Errorf("expected 2 publications, got %d", pub.count())
	}
}

func TestDashboard_SetBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("negative_rejected", func(t *testing.T) {
		svc, _ := newTestDashboard((&staticStore{}).service())
		_, err := svc.SetBudget(ctx, "user-1", dec("-5"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("zero_disables_alert", func(t *testing.T) {
		store := &staticStore{}
		store.set(txn(models.TransactionTypeExpense, "150", "Food"))
		svc, _ := newTestDashboard(store.service())

		_, _ = svc.SetBudget(ctx, "user-1", dec("100"))
		d, err := svc.SetBudget(ctx, "user-1", decimal.Zero)
		testutil.AssertNoError(t, err)
		if d.Alert != nil {
			t.Error("budget 0 must clear the alert")
		}
	})

	t.Run("budget_is_per_user", func(t *testing.T) {
		store := &staticStore{}
		store.set(txn(models.TransactionTypeExpense, "150", "Food"))
		svc, _ := newTestDashboard(store.service())

		_, _ = svc.SetBudget(ctx, "user-1", dec("100"))
		d, _ := svc.Refresh(ctx, "user-2")
		if !d.Budget.IsZero() || d.Alert != nil {
			t.Error("another user's budget must not leak")
		}
	})
}

func TestDashboard_AddTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh_includes_new_record", func(t *testing.T) {
		store := &staticStore{}
		txSvc := store.service()
		txSvc.createFn = func(_ context.Context, _ string, in CreateTransactionInput) (*models.Transaction, error) {
			tx := models.Transaction{Base: models.Base{ID: "new"}, Type: in.Type, Amount: decimal.NewNullDecimal(in.Amount), Category: in.Category}
			store.add(tx)
			return &tx, nil
		}
		svc, _ := newTestDashboard(txSvc)

		tx, d, err := svc.AddTransaction(ctx, "user-1", expenseInput("12.5"))
		testutil.AssertNoError(t, err)
		if tx.ID != "new" {
			t.Errorf("expected created record, got %+v", tx)
		}
		if d.TransactionCount != 1 || !d.TotalExpenses.Equal(dec("12.5")) {
			t.Errorf("dashboard should include the new record, got %+v", d)
		}
	})

	t.Run("create_failure_skips_refresh", func(t *testing.T) {
		var listed atomic.Int32
		svc, _ := newTestDashboard(&mockTransactionService{
			createFn: func(_ context.Context, _ string, _ CreateTransactionInput) (*models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrStore, errors.New("timeout"))
			},
			listFn: func(_ context.Context, _ string) ([]models.Transaction, error) {
				listed.Add(1)
				return nil, nil
			},
		})

		_, _, err := svc.AddTransaction(ctx, "user-1", expenseInput("1"))
		testutil.AssertAppError(t, err, "STORE_ERROR")
		if listed.Load() != 0 {
			t.Error("no refresh expected after a failed create")
		}
	})
}

func TestDashboard_ConcurrentRefreshSharesFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	svc, _ := newTestDashboard(&mockTransactionService{
		listFn: func(_ context.Context, _ string) ([]models.Transaction, error) {
			calls.Add(1)
			<-release
			return []models.Transaction{txn(models.TransactionTypeIncome, "1", "Salary")}, nil
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(context.Background(), "user-1"); err != nil {
				t.Errorf("refresh: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected one shared fetch, got %d", calls.Load())
	}
}

func TestDashboard_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	svc, _ := newTestDashboard(&mockTransactionService{
		listFn: func(ctx context.Context, _ string) ([]models.Transaction, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			if err := ctx.Err(); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrStore, err)
			}
			return []models.Transaction{txn(models.TransactionTypeIncome, "5", "Salary")}, nil
		},
	})

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(firstCtx, "user-1")
		firstErr <- err
	}()
	<-started

	type result struct {
		d   *Dashboard
		err error
	}
	second := make(chan result, 1)
	go func() {
		d, err := svc.Refresh(context.Background(), "user-1")
		second <- result{d, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	testutil.AssertAppError(t, <-firstErr, "STORE_ERROR")

	close(release)
	got := <-second
	testutil.AssertNoError(t, got.err)
	testutil.AssertDecimal(t, "total income", got.d.TotalIncome, "5")
	if calls.Load() != 1 {
		t.Errorf("expected one shared fetch, got %d", calls.Load())
	}
}

func TestDashboard_StaleRefreshDoesNotRearmAlert(t *testing.T) {
	ctx := context.Background()
	store := &staticStore{}
	store.set(txn(models.TransactionTypeExpense, "90", "Food"))

	var hold atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	txSvc := &mockTransactionService{
		listFn: func(_ context.Context, _ string) ([]models.Transaction, error) {
			txs := store.list()
			if hold.CompareAndSwap(true, false) {
				close(entered)
				<-release
			}
			return txs, nil
		},
		createFn: func(_ context.Context, _ string, in CreateTransactionInput) (*models.Transaction, error) {
			tx := models.Transaction{Type: in.Type, Amount: decimal.NewNullDecimal(in.Amount), Category: in.Category}
			store.add(tx)
			return &tx, nil
		},
	}
	svc, pub := newTestDashboard(txSvc)

	d, err := svc.SetBudget(ctx, "user-1", dec("100"))
	testutil.AssertNoError(t, err)
	if d.Alert != nil {
		t.Fatal("no alert expected under budget")
	}

	// A refresh reads expenses of 90 and stalls before recomputing.
	hold.Store(true)
	slow := make(chan *Dashboard, 1)
	go func() {
		d, _ := svc.Refresh(ctx, "user-1")
		slow <- d
	}()
	<-entered

	_, d, err = svc.AddTransaction(ctx, "user-1", expenseInput("60"))
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "total expenses", d.TotalExpenses, "150")
	if d.Alert == nil || !d.Alert.Notify {
		t.Fatalf("expected a fresh alert after the insert, got %+v", d.Alert)
	}

	close(release)
	if stale := <-slow; stale.Alert != nil {
		t.Errorf("stalled refresh reports its own numbers, got %+v", stale.Alert)
	}

	d, err = svc.Refresh(ctx, "user-1")
	testutil.AssertNoError(t, err)
	if d.Alert == nil || d.Alert.Notify || d.Alert.State != "shown" {
		t.Errorf("unchanged breach must stay shown without notifying, got %+v", d.Alert)
	}
	if pub.count() != 1 {
		t.Errorf("expected 1 publication, got %d", pub.count())
	}
}

func TestDashboard_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := &staticStore{}
	store.set(txn(models.TransactionTypeExpense, "150", "Food"))
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewDashboardService(store.service(), session.NewStore(time.Hour), pub)

	d, err := svc.SetBudget(context.Background(), "user-1", dec("100"))
	testutil.AssertNoError(t, err)
	if d.Alert == nil || !d.Alert.Notify {
		t.Error("alert should still be reported to the client")
	}
}

func TestDashboard_EndSession(t *testing.T) {
	store := &staticStore{}
	store.set(txn(models.TransactionTypeExpense, "150", "Food"))
	svc, _ := newTestDashboard(store.service())

	_, _ = svc.SetBudget(context.Background(), "user-1", dec("100"))
	svc.EndSession("user-1")

	d, _ := svc.Refresh(context.Background(), "user-1")
	if !d.Budget.IsZero() || d.Alert != nil {
		t.Error("signing out must reset budget and alert")
	}
}
