package session

import (
	"sync"
	"testing"
	"time"

	"pocketledger/internal/alert"

	"github.com/shopspring/decimal"
)

func TestStore_GetReturnsSameSession(t *testing.T) {
	st := NewStore(time.Hour)

	a := st.Get("user-1")
	b := st.Get("user-1")
	if a != b {
		t.Error("expected the same session for the same user")
	}
	if st.Get("user-2") == a {
		t.Error("users must not share sessions")
	}
	if st.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", st.Len())
	}
}

func TestStore_DefaultBudgetDisablesAlerts(t *testing.T) {
	s := NewStore(time.Hour).Get("user-1")

	if !s.Budget().IsZero() {
		t.Errorf("expected zero budget, got %s", s.Budget())
	}
	d, notify := s.Evaluate(decimal.NewFromInt(1000))
	if d.IsBreach() || notify {
		t.Error("no alert expected without a budget")
	}
}

func TestStore_Clear(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.Get("user-1")
	s.SetBudget(decimal.NewFromInt(100))
	s.Evaluate(decimal.NewFromInt(150))

	st.Clear("user-1")

	fresh := st.Get("user-1")
	if fresh == s {
		t.Fatal("expected a new session after clear")
	}
	if !fresh.Budget().IsZero() || fresh.AlertState() != alert.Quiet {
		t.Error("cleared session state must not survive")
	}
}

func TestStore_Expiry(t *testing.T) {
	st := NewStore(20 * time.Millisecond)
	s := st.Get("user-1")
	s.SetBudget(decimal.NewFromInt(5))

	time.Sleep(40 * time.Millisecond)

	if st.Get("user-1") == s {
		t.Error("idle session should have expired")
	}
}

func TestSession_EvaluateAndDismiss(t *testing.T) {
	s := NewStore(time.Hour).Get("user-1")
	s.SetBudget(decimal.NewFromInt(100))

	d, notify := s.Evaluate(decimal.NewFromInt(150))
	if !d.IsBreach() || !notify {
		t.Fatal("first breach should notify")
	}
	if _, notify := s.Evaluate(decimal.NewFromInt(150)); notify {
		t.Error("same breach should not notify twice")
	}
	if !s.DismissAlert() {
		t.Error("dismiss should succeed while the alert is shown")
	}
	if s.AlertState() != alert.Dismissed {
		t.Errorf("expected dismissed, got %v", s.AlertState())
	}
	if _, notify := s.Evaluate(decimal.NewFromInt(150)); notify {
		t.Error("dismissed breach should stay silent")
	}
}

func TestSession_ConcurrentUse(t *testing.T) {
	st := NewStore(time.Hour)
	var wg sync.WaitGroup
	notified := make(chan struct{}, 64)

	st.Get("user-1").SetBudget(decimal.NewFromInt(10))
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, notify := st.Get("user-1").Evaluate(decimal.NewFromInt(50)); notify {
				notified <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(notified)

	count := 0
	for range notified {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly one notification, got %d", count)
	}
}

func TestSession_StaleSnapshotDoesNotMoveLatch(t *testing.T) {
	s := NewStore(time.Hour).Get("user-1")
	s.SetBudget(decimal.NewFromInt(100))

	older := s.Snapshot()
	newer := s.Snapshot()
	if newer <= older {
		t.Fatalf("snapshots must increase, got %d then %d", older, newer)
	}

	if _, notify := s.EvaluateSnapshot(newer, decimal.NewFromInt(150)); !notify {
		t.Fatal("newest breach should notify")
	}

	d, notify := s.EvaluateSnapshot(older, decimal.NewFromInt(90))
	if d.IsBreach() || notify {
		t.Errorf("stale snapshot is evaluated on its own numbers without notifying, got %v/%v", d.Kind, notify)
	}
	if s.AlertState() != alert.Shown {
		t.Errorf("stale snapshot must not reset the alert, got %v", s.AlertState())
	}

	if _, notify := s.Evaluate(decimal.NewFromInt(150)); notify {
		t.Error("unchanged breach must not notify again")
	}
}
