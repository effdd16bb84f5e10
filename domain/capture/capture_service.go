package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	captureStatsLogInterval = 5 * time.Second
	defaultFrameInterval    = 33 * time.Millisecond
)

// CaptureService polls a FrameSource in the background and exposes the latest
// frame (the "live feed") alongside instrumentation data. Use
// NewCaptureService to construct an instance.
type CaptureService interface {
	Start()
	Stop()
	LatestFrame() FrameSnapshot
	Running() bool
	Stats() CaptureStats
}

type captureService struct {
	source   FrameSource
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	running atomic.Bool

	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

func newCaptureService(logger *slog.Logger, source FrameSource, interval time.Duration) *captureService {
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &captureService{source: source, interval: interval, logger: logger}
}

// NewCaptureService constructs a service that polls source every interval
// (about 30 fps when interval is zero).
func NewCaptureService(logger *slog.Logger, source FrameSource, interval time.Duration) CaptureService {
	return newCaptureService(logger, source, interval)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *captureService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.running.Store(true)
	go s.loop(s.stop)
}

// Stop halts polling. The last snapshot stays available.
func (s *captureService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	s.running.Store(false)
}

func (s *captureService) loop(stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("capture loop panic", "error", r)
		}
	}()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	frameTicker := time.NewTicker(s.interval)
	defer frameTicker.Stop()
	for {
		s.grab()
		select {
		case <-stop:
			return
		case <-logTicker.C:
			s.logStats()
		case <-frameTicker.C:
		}
	}
}

func (s *captureService) grab() {
	if s.source == nil {
		s.skipped.Add(1)
		return
	}
	start := time.Now()
	img, err := s.source.Frame()
	if err != nil || img == nil || img.Bounds().Empty() {
		s.skipped.Add(1)
		if err != nil && s.logger != nil {
			s.logger.Debug("capture frame", "error", err)
		}
		return
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	seq := s.sequence.Add(1)
	s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
