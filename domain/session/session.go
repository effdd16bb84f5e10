package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/mystic-booth/domain/raster"
)

// Session owns a Machine on a single goroutine. User actions, countdown ticks,
// auto-mode delays and capture results are all funnelled through one event
// channel, so transitions never interleave. Timers and captures are tagged with
// the epoch they were started under and dropped when it no longer matches.
type Session struct {
	logger   *slog.Logger
	clock    Clock
	capturer Capturer

	events    chan any
	done      chan struct{}
	draining  chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// postMu fences post against shutdown so nothing is enqueued after the
	// final drain.
	postMu sync.RWMutex
	closed bool
	ctx       context.Context
	cancel    context.CancelFunc

	// loop-owned
	m         Machine
	timer     Timer
	listeners []listenerEntry
	nextID    uint64

	mu   sync.RWMutex
	snap Snapshot

	staleEvents     atomic.Uint64
	discarded       atomic.Uint64
	captureFailures atomic.Uint64
	listenerCount   atomic.Int64
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for countdowns and auto-mode delays.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// New constructs an idle session and starts its event loop.
func New(cfg Config, capturer Capturer, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		clock:    RealClock,
		capturer: capturer,
		events:   make(chan any, 64),
		done:     make(chan struct{}),
		draining: make(chan struct{}),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		m:        NewMachine(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap = s.m.Snapshot()
	go s.loop()
	return s
}

type timerKind int

const (
	timerTick timerKind = iota
	timerAutoStart
	timerAutoAccept
)

func (k timerKind) String() string {
	switch k {
	case timerTick:
		return "tick"
	case timerAutoStart:
		return "auto_start"
	case timerAutoAccept:
		return "auto_accept"
	default:
		return "unknown"
	}
}

// events
type (
	evtBegin       struct{}
	evtStartShot   struct{}
	evtAccept      struct{}
	evtRetake      struct{}
	evtReset       struct{}
	evtUpload      struct{ src *raster.Source }
	evtReconfigure struct {
		timerSeconds int
		autoMode     bool
	}
	evtAddListener struct {
		l  Listener
		id chan uint64
	}
	evtRemoveListener struct{ id uint64 }
	evtQuery       struct{ reply chan Machine }
	evtTimer       struct {
		kind  timerKind
		epoch uint64
	}
	evtCaptured struct {
		epoch uint64
		src   *raster.Source
		err   error
	}
	request struct {
		ev    any
		reply chan error
	}
)

func (s *Session) loop() {
	defer close(s.stopped)
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("session panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	for {
		select {
		case <-s.done:
			s.shutdown()
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Session) dispatch(ev any) {
	switch e := ev.(type) {
	case request:
		e.reply <- s.handle(e.ev)
	case evtQuery:
		e.reply <- s.m
	case evtTimer:
		s.onTimer(e)
	case evtCaptured:
		s.onCaptured(e)
	}
}

func (s *Session) handle(ev any) error {
	switch e := ev.(type) {
	case evtAddListener:
		s.nextID++
		s.listeners = append(s.listeners, listenerEntry{id: s.nextID, l: e.l})
		s.listenerCount.Store(int64(len(s.listeners)))
		e.id <- s.nextID
		return nil
	case evtRemoveListener:
		for i, le := range s.listeners {
			if le.id == e.id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				s.listenerCount.Store(int64(len(s.listeners)))
				break
			}
		}
		return nil
	case evtBegin:
		return s.step(s.m.Begin())
	case evtStartShot:
		return s.step(s.m.StartShot())
	case evtAccept:
		return s.step(s.m.Accept())
	case evtRetake:
		next, discarded, err := s.m.Retake()
		if err != nil {
			return err
		}
		s.apply(next)
		discarded.Release()
		return nil
	case evtUpload:
		next, replaced, err := s.m.Upload(e.src)
		if err != nil {
			return err
		}
		s.apply(next)
		replaced.Release()
		return nil
	case evtReconfigure:
		return s.step(s.m.Reconfigure(e.timerSeconds, e.autoMode))
	case evtReset:
		next, held := s.m.Reset()
		s.apply(next)
		raster.ReleaseAll(held)
		return nil
	default:
		return fmt.Errorf("%w: unknown request %T", ErrInvalidTransition, ev)
	}
}

func (s *Session) step(next Machine, err error) error {
	if err != nil {
		return err
	}
	s.apply(next)
	return nil
}

// apply installs next, cancels whatever was armed for the previous epoch,
// notifies listeners and arms the timer or capture the new state needs.
func (s *Session) apply(next Machine) {
	prev := s.m
	s.m = next
	s.disarm()
	s.publish()

	if prev.State() != next.State() || prev.Pending() != next.Pending() {
		if s.logger != nil {
			s.logger.Debug("session.transition",
				"from", prev.State().String(),
				"to", next.State().String(),
				"attempt", next.Attempt(),
				"epoch", next.Epoch(),
			)
		}
		s.emit(Event{Kind: EventTransition, Prev: prev.State(), State: next.State(), Attempt: next.Attempt(), Pending: next.Pending()})
	}
	if next.State() == StateCountingDown && next.Remaining() > 0 &&
		(prev.State() != StateCountingDown || prev.Remaining() != next.Remaining()) {
		s.emit(Event{Kind: EventTick, Prev: prev.State(), State: next.State(), Attempt: next.Attempt(), Remaining: next.Remaining()})
	}
	if next.CompletionPending() {
		s.m = s.m.AckCompletion()
		shots := next.Shots()
		if s.logger != nil {
			s.logger.Info("session completed", "shots", len(shots))
		}
		s.emit(Event{Kind: EventCompleted, Prev: prev.State(), State: next.State(), Attempt: next.Attempt(), Shots: shots})
	}
	s.arm()
}

func (s *Session) arm() {
	m := s.m
	if m.Capturing() {
		s.launchCapture(m.Epoch())
		return
	}
	switch m.State() {
	case StateCountingDown:
		s.schedule(TickInterval, timerTick, m.Epoch())
	case StateReady:
		if m.Config().AutoMode {
			s.schedule(AutoStartDelay, timerAutoStart, m.Epoch())
		}
	case StateReviewing:
		if m.Config().AutoMode {
			s.schedule(AutoAcceptDelay, timerAutoAccept, m.Epoch())
		}
	}
}

func (s *Session) schedule(d time.Duration, kind timerKind, epoch uint64) {
	s.timer = s.clock.AfterFunc(d, func() {
		s.post(evtTimer{kind: kind, epoch: epoch})
	})
}

func (s *Session) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) launchCapture(epoch uint64) {
	capturer := s.capturer
	ctx := s.ctx
	go func() {
		defer recoverLog(s.logger, "capture goroutine panic")
		var (
			src *raster.Source
			err error
		)
		if capturer == nil {
			err = fmt.Errorf("%w: no capturer", raster.ErrCaptureUnavailable)
		} else {
			src, err = capturer.Capture(ctx)
		}
		if !s.post(evtCaptured{epoch: epoch, src: src, err: err}) {
			src.Release()
		}
	}()
}

func (s *Session) onTimer(e evtTimer) {
	if e.epoch != s.m.Epoch() {
		s.staleEvents.Add(1)
		if s.logger != nil {
			s.logger.Error("stale session timer fired", "timer", e.kind.String(), "epoch", e.epoch, "current_epoch", s.m.Epoch())
		}
		return
	}
	s.timer = nil
	var err error
	switch e.kind {
	case timerTick:
		err = s.step(s.m.Tick())
	case timerAutoStart:
		err = s.step(s.m.StartShot())
	case timerAutoAccept:
		err = s.step(s.m.Accept())
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("session timer rejected", "timer", e.kind.String(), "error", err)
	}
}

func (s *Session) onCaptured(e evtCaptured) {
	if e.epoch != s.m.Epoch() || !s.m.Capturing() {
		s.discarded.Add(1)
		e.src.Release()
		if s.logger != nil {
			s.logger.Debug("discarding capture from superseded shot", "epoch", e.epoch, "current_epoch", s.m.Epoch())
		}
		return
	}
	if e.err == nil && e.src == nil {
		e.err = fmt.Errorf("%w: capture returned no image", raster.ErrCaptureUnavailable)
	}
	if e.err != nil {
		e.src.Release()
		err := e.err
		if !errors.Is(err, raster.ErrCaptureUnavailable) && !errors.Is(err, raster.ErrEncodeFailure) {
			err = fmt.Errorf("%w: %v", raster.ErrCaptureUnavailable, err)
		}
		s.captureFailures.Add(1)
		if s.logger != nil {
			s.logger.Warn("capture failed", "attempt", s.m.Attempt(), "error", err)
		}
		next, ferr := s.m.CaptureFailed()
		if ferr != nil {
			return
		}
		s.apply(next)
		s.emit(Event{Kind: EventCaptureFailed, Prev: next.State(), State: next.State(), Attempt: next.Attempt(), Err: err})
		return
	}
	if err := s.step(s.m.CaptureSucceeded(e.src)); err != nil {
		e.src.Release()
	}
}

func (s *Session) shutdown() {
	s.disarm()
	s.cancel()
	next, held := s.m.Reset()
	s.m = next
	s.publish()
	raster.ReleaseAll(held)

	close(s.draining)
	s.postMu.Lock()
	s.closed = true
	s.postMu.Unlock()
	for {
		select {
		case ev := <-s.events:
			if c, ok := ev.(evtCaptured); ok {
				c.src.Release()
			}
			if r, ok := ev.(request); ok {
				r.reply <- ErrClosed
			}
		default:
			return
		}
	}
}

func (s *Session) publish() {
	snap := s.m.Snapshot()
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Session) emit(ev Event) {
	for _, le := range s.listeners {
		func() {
			defer recoverLog(s.logger, "session listener panic")
			le.l(ev)
		}()
	}
}

// post enqueues ev unless the loop is shutting down. Anything it accepts is
// either dispatched or drained by shutdown.
func (s *Session) post(ev any) bool {
	s.postMu.RLock()
	defer s.postMu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-s.draining:
		return false
	}
}

func (s *Session) call(ev any) error {
	req := request{ev: ev, reply: make(chan error, 1)}
	if !s.post(req) {
		return ErrClosed
	}
	select {
	case err := <-req.reply:
		return err
	case <-s.stopped:
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrClosed
		}
	}
}

func (s *Session) query() (Machine, bool) {
	q := evtQuery{reply: make(chan Machine, 1)}
	if !s.post(q) {
		return Machine{}, false
	}
	select {
	case m := <-q.reply:
		return m, true
	case <-s.stopped:
		return Machine{}, false
	}
}

// Public API

// Begin opens the session for shooting (Idle -> Ready).
func (s *Session) Begin() error { return s.call(evtBegin{}) }

// StartShot starts the countdown, or captures right away when the timer is 0.
func (s *Session) StartShot() error { return s.call(evtStartShot{}) }

// Accept keeps the shot under review.
func (s *Session) Accept() error { return s.call(evtAccept{}) }

// Retake discards the shot under review and cancels a pending auto-accept.
func (s *Session) Retake() error { return s.call(evtRetake{}) }

// Upload puts src under review, bypassing the countdown. On success the
// session owns src; on error the caller keeps it.
func (s *Session) Upload(src *raster.Source) error { return s.call(evtUpload{src: src}) }

// Reconfigure changes the countdown length and auto mode between shots.
func (s *Session) Reconfigure(timerSeconds int, autoMode bool) error {
	return s.call(evtReconfigure{timerSeconds: timerSeconds, autoMode: autoMode})
}

// Reset releases every shot, cancels pending timers and returns to Idle.
func (s *Session) Reset() error { return s.call(evtReset{}) }

// Restart resets and begins a new run.
func (s *Session) Restart() error {
	if err := s.Reset(); err != nil {
		return err
	}
	return s.Begin()
}

type listenerEntry struct {
	id uint64
	l  Listener
}

// AddListener registers l for all subsequent events. The returned func
// unregisters it and may be called more than once.
func (s *Session) AddListener(l Listener) (remove func()) {
	if l == nil {
		return func() {}
	}
	ids := make(chan uint64, 1)
	if err := s.call(evtAddListener{l: l, id: ids}); err != nil {
		return func() {}
	}
	id := <-ids
	var once sync.Once
	return func() {
		once.Do(func() { _ = s.call(evtRemoveListener{id: id}) })
	}
}

// Current returns the last published state without waiting for the loop.
func (s *Session) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.State
}

// Snapshot returns the state after every previously submitted action has been
// processed. A closed session returns its final snapshot.
func (s *Session) Snapshot() Snapshot {
	if m, ok := s.query(); ok {
		return m.Snapshot()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Shots returns the accepted shots in capture order. They stay valid until the
// session is reset or closed.
func (s *Session) Shots() []*raster.Source {
	m, ok := s.query()
	if !ok {
		return nil
	}
	return m.Shots()
}

// Pending returns the shot under review, if any.
func (s *Session) Pending() *raster.Source {
	m, ok := s.query()
	if !ok {
		return nil
	}
	return m.Pending()
}

// Stats reports counters for events that were dropped.
func (s *Session) Stats() Stats {
	return Stats{
		StaleEvents:      s.staleEvents.Load(),
		DiscardedCapture: s.discarded.Load(),
		CaptureFailures:  s.captureFailures.Load(),
		Listeners:        int(s.listenerCount.Load()),
	}
}

// Close stops the loop and releases every held shot. Safe to call repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
