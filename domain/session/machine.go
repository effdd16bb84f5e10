// Package session sequences the shots of one photo strip: countdowns, capture,
// review with accept or retake, and completion. Machine holds the state and
// exposes pure transitions. Session runs it on one goroutine with timers.
package session

import (
	"fmt"

	"github.com/soocke/mystic-booth/domain/raster"
)

// Machine is the session state as a value. Every transition returns the next
// Machine and leaves the receiver untouched; every successful transition
// advances Epoch, which is what timers and in-flight captures are keyed on.
//
// Invariants: len(shots) == attempt-1 outside Reviewing, len(shots) <= MaxShots,
// pending != nil iff state == StateReviewing.
type Machine struct {
	cfg       Config
	state     State
	attempt   int
	shots     []*raster.Source
	pending   *raster.Source
	remaining int
	capturing bool
	epoch     uint64
	signalled bool
}

// NewMachine returns an idle machine.
func NewMachine(cfg Config) Machine {
	return Machine{cfg: cfg.normalized(), state: StateIdle, attempt: 1}
}

func (m Machine) State() State             { return m.state }
func (m Machine) Attempt() int             { return m.attempt }
func (m Machine) Config() Config           { return m.cfg }
func (m Machine) Epoch() uint64            { return m.epoch }
func (m Machine) Remaining() int           { return m.remaining }
func (m Machine) Capturing() bool          { return m.capturing }
func (m Machine) Pending() *raster.Source  { return m.pending }
func (m Machine) Accepted() int            { return len(m.shots) }

// Shots returns the accepted shots in capture order. The slice is a copy.
func (m Machine) Shots() []*raster.Source {
	out := make([]*raster.Source, len(m.shots))
	copy(out, m.shots)
	return out
}

// CompletionPending reports a completed session whose completion has not
// been acknowledged yet.
func (m Machine) CompletionPending() bool {
	return m.state == StateCompleted && !m.signalled
}

// Snapshot summarises the machine for readers.
func (m Machine) Snapshot() Snapshot {
	return Snapshot{
		State:     m.state,
		Attempt:   m.attempt,
		Accepted:  len(m.shots),
		Remaining: m.remaining,
		Reviewing: m.pending != nil,
		Capturing: m.capturing,
		Epoch:     m.epoch,
		Config:    m.cfg,
	}
}

func (m Machine) advance() Machine {
	m.epoch++
	return m
}

func (m Machine) invalid(op string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, op, m.state)
}

// Begin opens an idle session for shooting.
func (m Machine) Begin() (Machine, error) {
	if m.state != StateIdle {
		return m, m.invalid("begin")
	}
	m.state = StateReady
	return m.advance(), nil
}

// StartShot starts the countdown, or asks for an immediate capture when the
// timer is 0. In the latter case the machine stays Ready with Capturing set
// until CaptureSucceeded or CaptureFailed.
func (m Machine) StartShot() (Machine, error) {
	if m.state != StateReady || m.capturing || m.attempt > m.cfg.MaxShots {
		return m, m.invalid("start shot")
	}
	if m.cfg.TimerSeconds > 0 {
		m.state = StateCountingDown
		m.remaining = m.cfg.TimerSeconds
	} else {
		m.capturing = true
	}
	return m.advance(), nil
}

// Tick advances the countdown by one second. At zero the machine asks for a
// capture.
func (m Machine) Tick() (Machine, error) {
	if m.state != StateCountingDown || m.capturing {
		return m, m.invalid("tick")
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.capturing = true
	}
	return m.advance(), nil
}

// CaptureSucceeded puts src under review.
func (m Machine) CaptureSucceeded(src *raster.Source) (Machine, error) {
	if !m.capturing {
		return m, m.invalid("capture result")
	}
	if src == nil {
		return m, fmt.Errorf("%w: nil capture", ErrInvalidTransition)
	}
	m.capturing = false
	m.remaining = 0
	m.state = StateReviewing
	m.pending = src
	return m.advance(), nil
}

// CaptureFailed aborts the current shot and returns to Ready. The attempt
// counter is unchanged.
func (m Machine) CaptureFailed() (Machine, error) {
	if !m.capturing {
		return m, m.invalid("capture failure")
	}
	m.capturing = false
	m.remaining = 0
	m.state = StateReady
	return m.advance(), nil
}

// Accept keeps the pending shot. After the last shot the machine completes.
func (m Machine) Accept() (Machine, error) {
	if m.state != StateReviewing || m.pending == nil {
		return m, m.invalid("accept")
	}
	shots := make([]*raster.Source, len(m.shots), len(m.shots)+1)
	copy(shots, m.shots)
	m.shots = append(shots, m.pending)
	m.pending = nil
	m.attempt++
	if m.attempt > m.cfg.MaxShots {
		m.state = StateCompleted
	} else {
		m.state = StateReady
	}
	return m.advance(), nil
}

// Retake drops the pending shot and returns it so the caller can release it.
func (m Machine) Retake() (Machine, *raster.Source, error) {
	if m.state != StateReviewing || m.pending == nil {
		return m, nil, m.invalid("retake")
	}
	discarded := m.pending
	m.pending = nil
	m.state = StateReady
	return m.advance(), discarded, nil
}

// Upload puts src under review without a countdown. Any countdown or
// in-flight capture is abandoned; a shot already under review is replaced and
// returned for release.
func (m Machine) Upload(src *raster.Source) (Machine, *raster.Source, error) {
	if m.state.Terminal() || m.attempt > m.cfg.MaxShots {
		return m, nil, m.invalid("upload")
	}
	if src == nil {
		return m, nil, fmt.Errorf("%w: nil upload", ErrInvalidTransition)
	}
	replaced := m.pending
	m.capturing = false
	m.remaining = 0
	m.state = StateReviewing
	m.pending = src
	return m.advance(), replaced, nil
}

// Reconfigure changes timer and auto mode between shots.
func (m Machine) Reconfigure(timerSeconds int, autoMode bool) (Machine, error) {
	if (m.state != StateIdle && m.state != StateReady) || m.capturing {
		return m, m.invalid("reconfigure")
	}
	if !ValidTimer(timerSeconds) {
		return m, fmt.Errorf("%w: timer %ds not supported", ErrInvalidTransition, timerSeconds)
	}
	m.cfg.TimerSeconds = timerSeconds
	m.cfg.AutoMode = autoMode
	return m.advance(), nil
}

// AckCompletion records that the completion signal was delivered.
func (m Machine) AckCompletion() Machine {
	m.signalled = true
	return m
}

// Reset returns a fresh idle machine with the same config and a newer epoch,
// plus every source the old machine held so the caller can release them.
func (m Machine) Reset() (Machine, []*raster.Source) {
	held := m.Shots()
	if m.pending != nil {
		held = append(held, m.pending)
	}
	next := NewMachine(m.cfg)
	next.epoch = m.epoch + 1
	return next, held
}
