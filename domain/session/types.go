package session

import (
	"context"
	"errors"
	"time"

	"github.com/soocke/mystic-booth/domain/raster"
)

// State enumerates the capture session states.
type State int

const (
	StateIdle State = iota
	StateReady
	StateCountingDown
	StateReviewing
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateCountingDown:
		return "counting_down"
	case StateReviewing:
		return "reviewing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions apply.
func (s State) Terminal() bool { return s == StateCompleted }

const (
	DefaultMaxShots = 4
	// AutoStartDelay is how long auto mode waits in Ready before shooting.
	AutoStartDelay = time.Second
	// AutoAcceptDelay is how long auto mode shows a shot before keeping it.
	AutoAcceptDelay = 1500 * time.Millisecond
	// TickInterval is the countdown step.
	TickInterval = time.Second
)

// TimerChoices lists the countdown lengths, in seconds, the booth offers.
var TimerChoices = []int{0, 3, 5, 10}

// ValidTimer reports whether seconds is one of TimerChoices.
func ValidTimer(seconds int) bool {
	for _, c := range TimerChoices {
		if c == seconds {
			return true
		}
	}
	return false
}

// Config controls one session.
type Config struct {
	MaxShots     int
	TimerSeconds int
	AutoMode     bool
}

// normalized fills defaults: MaxShots defaults to DefaultMaxShots and
// unsupported timers fall back to 0.
func (c Config) normalized() Config {
	if c.MaxShots <= 0 {
		c.MaxShots = DefaultMaxShots
	}
	if !ValidTimer(c.TimerSeconds) {
		c.TimerSeconds = 0
	}
	return c
}

var (
	// ErrInvalidTransition reports an operation not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrClosed reports use of a closed session.
	ErrClosed = errors.New("session closed")
)

// Capturer produces a shot from the live feed. It runs off the session
// goroutine and may block.
type Capturer interface {
	Capture(ctx context.Context) (*raster.Source, error)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(ctx context.Context) (*raster.Source, error)

func (f CapturerFunc) Capture(ctx context.Context) (*raster.Source, error) { return f(ctx) }

// EventKind classifies listener notifications.
type EventKind int

const (
	EventTransition EventKind = iota
	EventTick
	EventCaptureFailed
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventTick:
		return "tick"
	case EventCaptureFailed:
		return "capture_failed"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners on the session goroutine.
type Event struct {
	Kind      EventKind
	Prev      State
	State     State
	Attempt   int
	Remaining int            // countdown value for EventTick
	Pending   *raster.Source // shot under review, set when State is StateReviewing
	Shots     []*raster.Source
	Err       error
}

// Listener receives session events. It runs on the session goroutine and must
// not block or call back into the session synchronously.
type Listener func(Event)

// Snapshot is a read-only view of the session for presenters.
type Snapshot struct {
	State     State
	Attempt   int
	Accepted  int
	Remaining int
	Reviewing bool
	Capturing bool
	Epoch     uint64
	Config    Config
}

// Stats counts events that did not advance the session.
type Stats struct {
	StaleEvents      uint64
	DiscardedCapture uint64
	CaptureFailures  uint64
	Listeners        int
}
