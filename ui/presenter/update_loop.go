package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Booth    *BoothPresenter
	Capture  *CapturePresenter
	Editor   *EditorPresenter
	Schedule func()
}

func NewLoop(booth *BoothPresenter, capture *CapturePresenter, editor *EditorPresenter, schedule func()) *Loop {
	return &Loop{Booth: booth, Capture: capture, Editor: editor, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Booth != nil {
		l.Booth.Tick(now)
	}
	if l.Capture != nil {
		l.Capture.ProcessFrame()
	}
	if l.Editor != nil {
		l.Editor.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
