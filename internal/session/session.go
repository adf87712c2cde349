// Package session keeps the per-user state that lives only as long as the
// user is signed in: the budget and the alert latch.
package session

import (
	"sync"
	"time"

	"pocketledger/internal/alert"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Session is the mutable state of one signed-in user. It is safe for
// concurrent use.
type Session struct {
	mu     sync.Mutex
	budget decimal.Decimal
	latch  alert.Latch

	// seq is the last snapshot number handed out, applied the newest one
	// the latch has seen.
	seq     uint64
	applied uint64
}

// Budget returns the current budget. Zero means alerting is off.
func (s *Session) Budget() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// SetBudget replaces the budget.
func (s *Session) SetBudget(b decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = b
}

// Snapshot returns a new, strictly increasing snapshot number. Take it
// before reading the transactions the evaluation will be based on.
func (s *Session) Snapshot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Evaluate checks totalExpenses against the budget for a snapshot taken
// now. See EvaluateSnapshot.
func (s *Session) Evaluate(totalExpenses decimal.Decimal) (d alert.Decision, notify bool) {
	return s.EvaluateSnapshot(s.Snapshot(), totalExpenses)
}

// EvaluateSnapshot checks totalExpenses, read under snapshot seq, against
// the budget and feeds the result to the alert latch in one step. notify is
// true when the user must be told. A snapshot older than one the latch
// already saw is evaluated but never observed.
func (s *Session) EvaluateSnapshot(seq uint64, totalExpenses decimal.Decimal) (d alert.Decision, notify bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d = alert.Evaluate(s.budget, totalExpenses)
	if seq < s.applied {
		return d, false
	}
	s.applied = seq
	return d, s.latch.Observe(d)
}

// DismissAlert acknowledges the visible alert. It reports false when no
// alert was showing.
func (s *Session) DismissAlert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latch.Dismiss()
}

// AlertState returns the latch state.
func (s *Session) AlertState() alert.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latch.State()
}

// Store holds one Session per user ID. Sessions expire after ttl without
// access; every Get extends the lifetime.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore returns a Store whose sessions idle out after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get returns the session of userID, creating an empty one when needed.
func (st *Store) Get(userID string) *Session {
	if v, ok := st.cache.Get(userID); ok {
		s := v.(*Session)
		st.cache.Set(userID, s, st.ttl)
		return s
	}

	s := &Session{}
	if err := st.cache.Add(userID, s, st.ttl); err != nil {
		// Lost the race with a concurrent Get.
		if v, ok := st.cache.Get(userID); ok {
			return v.(*Session)
		}
		st.cache.Set(userID, s, st.ttl)
	}
	return s
}

// Clear forgets the session of userID.
func (st *Store) Clear(userID string) {
	st.cache.Delete(userID)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.ItemCount()
}
