package model

import (
	"errors"
	"image"
	"testing"

	"github.com/soocke/mystic-booth/domain/session"
	"github.com/soocke/mystic-booth/domain/strip"
)

func TestCaptureModel_SetEnabledReportsChange(t *testing.T) {
	var m CaptureModel
	if m.Enabled() {
		t.Fatal("zero value should be disabled")
	}
	if !m.SetEnabled(true) || m.SetEnabled(true) {
		t.Fatal("SetEnabled should report change exactly once")
	}
	var nilModel *CaptureModel
	if nilModel.Enabled() || nilModel.SetEnabled(true) {
		t.Fatal("nil model should be inert")
	}
}

func TestProgressModel_Slots(t *testing.T) {
	var m ProgressModel
	cfg := session.Config{MaxShots: 4}
	if !m.Update(session.Snapshot{State: session.StateIdle, Config: cfg}) {
		t.Fatal("first update should change")
	}
	if m.String() != "○ ○ ○ ○" {
		t.Fatalf("idle slots = %q", m.String())
	}
	m.Update(session.Snapshot{State: session.StateCountingDown, Accepted: 2, Config: cfg})
	want := []Slot{SlotFilled, SlotFilled, SlotActive, SlotEmpty}
	got := m.Slots()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	}
	if m.Update(session.Snapshot{State: session.StateReviewing, Accepted: 2, Config: cfg}) {
		t.Fatal("same slots should not report a change")
	}
	m.Update(session.Snapshot{State: session.StateCompleted, Accepted: 4, Config: cfg})
	if m.String() != "● ● ● ●" {
		t.Fatalf("completed slots = %q", m.String())
	}
}

func TestStatusModel_Countdown(t *testing.T) {
	var m StatusModel
	m.SetMaxShots(4)
	if m.Status() != "Step inside the booth" || m.Countdown() != "" {
		t.Fatalf("idle status = %q countdown = %q", m.Status(), m.Countdown())
	}
	m.Apply(session.Event{Kind: session.EventTransition, State: session.StateCountingDown, Attempt: 1})
	m.Apply(session.Event{Kind: session.EventTick, State: session.StateCountingDown, Attempt: 1, Remaining: 3})
	if m.Countdown() != "3" || m.Status() != "Shot 1 of 4, hold still" {
		t.Fatalf("countdown = %q status = %q", m.Countdown(), m.Status())
	}
	m.Apply(session.Event{Kind: session.EventTransition, State: session.StateReviewing, Attempt: 1})
	if m.Countdown() != "" || m.Status() != "Keep it or retake?" {
		t.Fatalf("review countdown = %q status = %q", m.Countdown(), m.Status())
	}
}

func TestStatusModel_FailureClearsOnNextShot(t *testing.T) {
	var m StatusModel
	boom := errors.New("no camera")
	m.Apply(session.Event{Kind: session.EventCaptureFailed, State: session.StateReady, Attempt: 2, Err: boom})
	if !errors.Is(m.Failure(), boom) || m.Status() != "The spirits blinked, try again" {
		t.Fatalf("failure not shown: %q", m.Status())
	}
	m.Apply(session.Event{Kind: session.EventTransition, State: session.StateCountingDown, Attempt: 2})
	if m.Failure() != nil {
		t.Fatal("failure should clear once a new countdown starts")
	}
}

func TestEditorModel_DirtyTracking(t *testing.T) {
	m := NewEditorModel(strip.DefaultConfig())
	if !m.Dirty() || m.Dirty() {
		t.Fatal("new model should be dirty exactly once")
	}
	if err := m.SetBackground("#1A1625"); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if m.Dirty() {
		t.Fatal("unchanged background should not dirty the model")
	}
	if err := m.SetBackground("purple"); err == nil {
		t.Fatal("expected parse error")
	}
	if err := m.SetBackground("#0c4a6e"); err != nil || m.Background() != "#0c4a6e" || !m.Dirty() {
		t.Fatalf("custom background not applied: %s %v", m.Background(), err)
	}
	m.SetCaption("  full moon ")
	if m.Caption() != "FULL MOON" || !m.Dirty() {
		t.Fatalf("caption = %q", m.Caption())
	}
	m.SetFrames(4)
	if !m.Dirty() {
		t.Fatal("frame count change should dirty the model")
	}
}

func TestEditorModel_Stickers(t *testing.T) {
	icon := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	m := NewEditorModel(strip.DefaultConfig())
	m.SetFrames(1)
	m.Dirty()

	if m.AddSticker("nothing", nil) != -1 || m.Dirty() {
		t.Fatal("nil sticker should be ignored")
	}
	for i, name := range []string{"star", "moon", "heart", "custom.png", "zap"} {
		if got := m.AddSticker(name, icon); got != i {
			t.Fatalf("AddSticker(%s) = %d", name, got)
		}
	}
	if !m.Dirty() {
		t.Fatal("adding stickers should dirty the model")
	}
	want := []image.Point{{248, 4}, {4, 4}, {248, 60}, {4, 60}, {248, 116}}
	cfg := m.Config()
	if len(cfg.Stickers) != len(want) {
		t.Fatalf("stickers = %d", len(cfg.Stickers))
	}
	for i, st := range cfg.Stickers {
		if st.At != want[i] {
			t.Fatalf("sticker %d at %v, want %v", i, st.At, want[i])
		}
	}

	if !m.RemoveSticker(1) || m.RemoveSticker(9) || m.RemoveSticker(-1) {
		t.Fatal("unexpected RemoveSticker result")
	}
	got := m.Stickers()
	if len(got) != 4 || got[1].Name != "heart" {
		t.Fatalf("after removal %+v", got)
	}
	if at := m.Config().Stickers[1].At; at != image.Pt(4, 4) {
		t.Fatalf("stickers should reflow, second at %v", at)
	}
}

func TestEditorModel_StickersWrapWithinStrip(t *testing.T) {
	icon := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	m := NewEditorModel(strip.DefaultConfig())
	for i := 0; i < 10; i++ {
		m.AddSticker("star", icon)
	}
	_, h := strip.Size(1, m.Config())
	for i, st := range m.Config().Stickers {
		if st.At.Y < 0 || st.At.Y+48 > h {
			t.Fatalf("sticker %d at %v leaves the %dpx strip", i, st.At, h)
		}
	}
}
