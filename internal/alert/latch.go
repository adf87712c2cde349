package alert

// State is the visible state of the budget alert.
type State int

const (
	// Quiet: no breach is being reported.
	Quiet State = iota
	// Shown: the user has been notified and the alert is still visible.
	Shown
	// Dismissed: the user acknowledged the alert; the same numbers stay silent.
	Dismissed
)

func (s State) String() string {
	switch s {
	case Shown:
		return "shown"
	case Dismissed:
		return "dismissed"
	default:
		return "quiet"
	}
}

// Latch suppresses repeat notifications for a breach the user already saw.
// A new notification is emitted only when the breach numbers differ from the
// last shown ones. Latch is not safe for concurrent use; callers serialize
// access (see session.Session).
type Latch struct {
	state State
	last  fingerprint
}

// State returns the current state.
func (l *Latch) State() State { return l.state }

// Observe feeds the latest decision into the latch and reports whether the
// caller should emit a notification for it.
func (l *Latch) Observe(d Decision) bool {
	if !d.IsBreach() {
		l.state = Quiet
		l.last = fingerprint{}
		return false
	}

	// decimal.Decimal is immutable and Decision is passed by value, so the
	// latch can keep these without copying.
	fp := fingerprint{expenses: d.Expenses, budget: d.Budget}
	if l.state != Quiet && l.last.equal(fp) {
		return false
	}

	l.state = Shown
	l.last = fp
	return true
}

// Dismiss acknowledges the visible alert. It reports false when there was
// nothing to dismiss.
func (l *Latch) Dismiss() bool {
	if l.state != Shown {
		return false
	}
	l.state = Dismissed
	return true
}

// Reset forgets any breach, e.g. on sign-out.
func (l *Latch) Reset() {
	l.state = Quiet
	l.last = fingerprint{}
}
