package booth

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/mystic-booth/config"
	"github.com/soocke/mystic-booth/domain/capture"
	"github.com/soocke/mystic-booth/domain/session"
)

// fastClock fires every timer after a millisecond so auto mode runs quickly.
type fastClock struct{}

func (fastClock) AfterFunc(_ time.Duration, f func()) session.Timer {
	return time.AfterFunc(time.Millisecond, f)
}

func solidFrames() capture.FrameSource {
	return capture.FrameSourceFunc(func() (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 320, 240))
		for y := 0; y < 240; y++ {
			for x := 0; x < 320; x++ {
				img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
			}
		}
		return img, nil
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.TimerSeconds = 0
	cfg.MaxShots = 2
	cfg.Caption = "night"
	cfg.OutputDir = filepath.Join(dir, "strips")
	cfg.GalleryPath = filepath.Join(dir, "strips", "gallery.db")
	return cfg
}

func TestSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	if Selection(cfg) != nil {
		t.Fatal("zero selection should mean full screen")
	}
	cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH = 10, 20, 300, 200
	r := Selection(cfg)
	if r == nil || *r != image.Rect(10, 20, 310, 220) {
		t.Fatalf("selection = %v", r)
	}
}

func TestShoot_SavesStripAndRecordsIt(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, slog.New(slog.DiscardHandler), WithFrameSource(solidFrames()), WithClock(fastClock{}), WithFrameInterval(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := s.Shoot(ctx)
	if err != nil {
		t.Fatalf("Shoot: %v", err)
	}
	info, err := os.Stat(res.Path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("strip missing: %v", err)
	}
	if s.Gallery == nil {
		t.Fatal("gallery ledger not opened")
	}
	entry, err := s.Gallery.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("gallery.Get: %v", err)
	}
	if entry.Shots != 2 || entry.Caption != "NIGHT" || entry.Width != 300 || entry.Height != 2*215+20+60 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if got := s.Session.Current(); got != session.StateIdle {
		t.Fatalf("session should be reset, state %v", got)
	}
}

func TestShoot_NoFrames(t *testing.T) {
	cfg := testConfig(t)
	empty := capture.FrameSourceFunc(func() (image.Image, error) { return nil, nil })
	s, err := New(cfg, nil, WithFrameSource(empty), WithClock(fastClock{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := s.Shoot(ctx); err == nil {
		t.Fatal("expected error without frames")
	}
}

func TestShoot_RestoresSessionForReuse(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, slog.New(slog.DiscardHandler), WithFrameSource(solidFrames()), WithClock(fastClock{}), WithFrameInterval(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	for run := 0; run < 2; run++ {
		if _, err := s.Shoot(ctx); err != nil {
			t.Fatalf("run %d: Shoot: %v", run, err)
		}
		if n := s.Session.Stats().Listeners; n != 0 {
			t.Fatalf("run %d: %d listeners left registered", run, n)
		}
		snap := s.Session.Snapshot()
		if snap.State != session.StateIdle || snap.Config.AutoMode {
			t.Fatalf("run %d: session not restored: %+v", run, snap)
		}
	}
	n, err := s.Gallery.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("gallery count = %d, %v", n, err)
	}
}
