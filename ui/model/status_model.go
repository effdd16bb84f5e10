package model

import (
	"fmt"

	"github.com/soocke/mystic-booth/domain/session"
)

// StatusModel turns session events into the texts shown above the preview.
// The zero value is usable. Updates happen on the UI thread only.
type StatusModel struct {
	state     session.State
	attempt   int
	maxShots  int
	remaining int
	failure   error
}

// Apply folds ev into the model.
func (m *StatusModel) Apply(ev session.Event) {
	if m == nil {
		return
	}
	m.state = ev.State
	if ev.Attempt > 0 {
		m.attempt = ev.Attempt
	}
	switch ev.Kind {
	case session.EventTick:
		m.remaining = ev.Remaining
	case session.EventCaptureFailed:
		m.failure = ev.Err
		m.remaining = 0
	case session.EventTransition:
		if ev.State != session.StateCountingDown {
			m.remaining = 0
		}
		if ev.State != session.StateReady {
			m.failure = nil
		}
	}
}

// SetMaxShots records the strip length used in status texts.
func (m *StatusModel) SetMaxShots(n int) {
	if m != nil {
		m.maxShots = n
	}
}

// State returns the last applied state.
func (m *StatusModel) State() session.State { return m.state }

// Countdown returns the big countdown digit, or "" outside a countdown.
func (m *StatusModel) Countdown() string {
	if m == nil || m.state != session.StateCountingDown || m.remaining <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", m.remaining)
}

// Status returns the one-line prompt for the current state.
func (m *StatusModel) Status() string {
	if m == nil {
		return ""
	}
	total := m.maxShots
	if total <= 0 {
		total = session.DefaultMaxShots
	}
	switch m.state {
	case session.StateIdle:
		return "Step inside the booth"
	case session.StateReady:
		if m.failure != nil {
			return "The spirits blinked, try again"
		}
		return fmt.Sprintf("Shot %d of %d", m.attempt, total)
	case session.StateCountingDown:
		return fmt.Sprintf("Shot %d of %d, hold still", m.attempt, total)
	case session.StateReviewing:
		return "Keep it or retake?"
	case session.StateCompleted:
		return "Your strip is ready"
	default:
		return ""
	}
}

// Failure returns the last capture failure while it is still relevant.
func (m *StatusModel) Failure() error {
	if m == nil {
		return nil
	}
	return m.failure
}
