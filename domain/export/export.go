// Package export writes composed strips to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/soocke/mystic-booth/domain/gallery"
	"github.com/soocke/mystic-booth/domain/strip"
)

const (
	filePrefix     = "mystic-strip-"
	fileExt        = ".jpg"
	lockName       = ".mystic-export.lock"
	lockRetryDelay = 25 * time.Millisecond
)

// ErrEmptyStrip is returned for a strip without payload.
var ErrEmptyStrip = errors.New("strip has no payload")

// Recorder receives a ledger entry after every successful save.
type Recorder interface {
	Record(ctx context.Context, e gallery.Entry) error
}

// Result describes a saved strip.
type Result struct {
	ID    string
	Path  string
	Bytes int64
}

// Exporter saves strips into a directory.
type Exporter struct {
	dir      string
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Exporter) { e.logger = l } }

// WithRecorder records every save, usually into a gallery.Store.
func WithRecorder(r Recorder) Option { return func(e *Exporter) { e.recorder = r } }

// WithClock overrides the timestamp source used for file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an exporter writing into dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Filename returns mystic-strip-<unix millis>-<8 hex>.jpg for now.
func Filename(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s%d-%s%s", filePrefix, now.UnixMilli(), id[:8], fileExt)
}

// IsStripFile reports whether name follows the export naming convention.
func IsStripFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt)
}

// Save writes s atomically into the output directory. Concurrent exporters
// sharing the directory are serialised by a lock file.
func (e *Exporter) Save(ctx context.Context, s *strip.Strip) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil || len(s.Payload) == 0 {
		return Result{}, ErrEmptyStrip
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure output dir: %w", err)
	}

	lock := flock.New(filepath.Join(e.dir, lockName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Result{}, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return Result{}, errors.New("export lock held by another process")
	}
	defer func() {
		if err := lock.Unlock(); err != nil && e.logger != nil {
			e.logger.Warn("failed to release export lock", "error", err)
		}
	}()

	name := Filename(e.now())
	path := filepath.Join(e.dir, name)
	if err := writeAtomic(e.dir, path, s.Payload); err != nil {
		return Result{}, err
	}
	res := Result{ID: strings.TrimSuffix(name, fileExt), Path: path, Bytes: int64(len(s.Payload))}

	if e.logger != nil {
		e.logger.Info("strip exported",
			"path", path,
			"size", humanize.Bytes(uint64(res.Bytes)),
			"shots", s.Shots,
		)
	}
	if e.recorder != nil {
		entry := gallery.Entry{
			ID:         res.ID,
			Path:       path,
			CreatedAt:  e.now(),
			Shots:      s.Shots,
			Caption:    s.Caption,
			Background: strip.HexColor(s.Background),
			Width:      s.Width,
			Height:     s.Height,
			Bytes:      res.Bytes,
		}
		if err := e.recorder.Record(ctx, entry); err != nil && e.logger != nil {
			e.logger.Warn("failed to record strip in gallery", "path", path, "error", err)
		}
	}
	return res, nil
}

func writeAtomic(dir, path string, payload []byte) error {
	tmp, err := os.CreateTemp(dir, ".mystic-strip-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write strip: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync strip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close strip: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename strip: %w", err)
	}
	return nil
}
