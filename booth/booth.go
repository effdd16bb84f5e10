// Package booth assembles the domain services shared by the Tk window and the
// headless commands: live feed, capturer, session, composer and exporter.
package booth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/mystic-booth/config"
	"github.com/soocke/mystic-booth/domain/capture"
	"github.com/soocke/mystic-booth/domain/export"
	"github.com/soocke/mystic-booth/domain/gallery"
	"github.com/soocke/mystic-booth/domain/raster"
	"github.com/soocke/mystic-booth/domain/session"
	"github.com/soocke/mystic-booth/domain/strip"
)

const feedReadyPoll = 20 * time.Millisecond

// Services holds the wired domain components for one booth.
type Services struct {
	Config   *config.Config
	Logger   *slog.Logger
	Feed     capture.CaptureService
	Capturer *capture.Capturer
	Session  *session.Session
	Composer *strip.Composer
	Gallery  *gallery.Store // nil when the ledger could not be opened
	Exporter *export.Exporter
}

type options struct {
	source   capture.FrameSource
	clock    session.Clock
	interval time.Duration
}

// Option customises New.
type Option func(*options)

// WithFrameSource replaces the screen-backed live feed.
func WithFrameSource(src capture.FrameSource) Option { return func(o *options) { o.source = src } }

// WithClock replaces the session clock.
func WithClock(c session.Clock) Option { return func(o *options) { o.clock = c } }

// WithFrameInterval sets the live feed polling interval.
func WithFrameInterval(d time.Duration) Option { return func(o *options) { o.interval = d } }

// New wires the services described by cfg. The gallery ledger is optional: a
// failure to open it is logged and exports continue without it.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Services, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = capture.NewScreenSource(func() *image.Rectangle { return Selection(cfg) })
	}

	s := &Services{Config: cfg, Logger: logger}
	s.Feed = capture.NewCaptureService(logger.With("component", "capture"), o.source, o.interval)
	s.Capturer = capture.NewCapturer(s.Feed, capture.ParseFacing(cfg.Facing), logger)

	sessOpts := []session.Option{session.WithLogger(logger.With("component", "session"))}
	if o.clock != nil {
		sessOpts = append(sessOpts, session.WithClock(o.clock))
	}
	s.Session = session.New(cfg.SessionConfig(), s.Capturer, sessOpts...)

	s.Composer = strip.NewComposer(
		strip.WithCanvas(strip.ImageCanvasFactory(cfg.JPEGQuality)),
		strip.WithLogger(logger),
	)

	exportOpts := []export.Option{export.WithLogger(logger)}
	if cfg.GalleryPath != "" {
		store, err := gallery.Open(cfg.GalleryPath)
		if err != nil {
			logger.Warn("gallery ledger unavailable", "path", cfg.GalleryPath, "error", err)
		} else {
			s.Gallery = store
			exportOpts = append(exportOpts, export.WithRecorder(store))
		}
	}
	s.Exporter = export.New(cfg.OutputDir, exportOpts...)
	return s, nil
}

// Selection returns the configured capture rectangle, or nil for full screen.
func Selection(cfg *config.Config) *image.Rectangle {
	if cfg == nil || cfg.SelectionW <= 0 || cfg.SelectionH <= 0 {
		return nil
	}
	r := image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
	return &r
}

// ComposeAndSave composes shots with cfg and exports the result.
func (s *Services) ComposeAndSave(ctx context.Context, shots []*raster.Source, cfg strip.Config) (export.Result, error) {
	st, err := s.Composer.Compose(shots, cfg)
	if err != nil {
		return export.Result{}, fmt.Errorf("compose: %w", err)
	}
	res, err := s.Exporter.Save(ctx, st)
	if err != nil {
		return export.Result{}, fmt.Errorf("export: %w", err)
	}
	return res, nil
}

// WaitForFeed blocks until the live feed produced a frame.
func (s *Services) WaitForFeed(ctx context.Context) error {
	t := time.NewTicker(feedReadyPoll)
	defer t.Stop()
	for !s.Feed.LatestFrame().Ready() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", raster.ErrCaptureUnavailable, ctx.Err())
		case <-t.C:
		}
	}
	return nil
}

// Shoot runs one unattended auto-mode session and saves the strip. The
// session is reset afterwards so its shots are released, and its previous
// timer and auto mode are restored.
func (s *Services) Shoot(ctx context.Context) (export.Result, error) {
	s.Feed.Start()
	defer s.Feed.Stop()
	if err := s.WaitForFeed(ctx); err != nil {
		return export.Result{}, err
	}

	completed := make(chan []*raster.Source, 1)
	remove := s.Session.AddListener(func(ev session.Event) {
		if ev.Kind == session.EventCompleted {
			select {
			case completed <- ev.Shots:
			default:
			}
		}
	})
	defer remove()

	prev := s.Session.Snapshot().Config
	defer func() {
		_ = s.Session.Reset()
		_ = s.Session.Reconfigure(prev.TimerSeconds, prev.AutoMode)
	}()

	if err := s.Session.Reconfigure(s.Config.TimerSeconds, true); err != nil {
		return export.Result{}, err
	}
	if err := s.Session.Begin(); err != nil {
		return export.Result{}, err
	}
	select {
	case <-ctx.Done():
		return export.Result{}, ctx.Err()
	case shots := <-completed:
		return s.ComposeAndSave(ctx, shots, s.Config.StripConfig())
	}
}

// Close stops the feed, closes the session and the gallery ledger.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	if s.Feed != nil {
		s.Feed.Stop()
	}
	if s.Session != nil {
		s.Session.Close()
	}
	var errs []error
	if s.Gallery != nil {
		errs = append(errs, s.Gallery.Close())
	}
	return errors.Join(errs...)
}
