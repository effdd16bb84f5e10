package view

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/soocke/mystic-booth/domain/session"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// BoothHandlers are invoked from the booth controls.
type BoothHandlers struct {
	OnStart        func()
	OnAccept       func()
	OnRetake       func()
	OnUpload       func(path string)
	OnToggleFacing func()
	OnTimer        func(seconds int)
	OnAuto         func(auto bool)
	OnExit         func()
}

// RootView composes the booth (left) and the strip editor (right). It
// satisfies the presenter view contracts by forwarding to its subviews.
type RootView struct {
	logger *slog.Logger

	Status      BoothStatus
	Preview     CapturePreview
	Editor      EditorPanel
	TimerSelect *TComboboxWidget

	startBtn  *ButtonWidget
	acceptBtn *ButtonWidget
	retakeBtn *ButtonWidget
	uploadBtn *ButtonWidget
	autoBtn   *ButtonWidget
	auto      bool
}

func NewRootView(logger *slog.Logger) *RootView {
	return &RootView{logger: logger}
}

// Build constructs the layout with the initial session settings.
func (rv *RootView) Build(cfg session.Config, caption, background string, booth BoothHandlers, editor EditorHandlers) {
	if rv == nil {
		return
	}
	boothFrame := Frame()
	Grid(boothFrame, Row(0), Column(0), Sticky("nwe"), Padx("0.6m"), Pady("0.6m"))
	editorFrame := Frame(Borderwidth(1), Relief("groove"))
	Grid(editorFrame, Row(0), Column(1), Sticky("nse"), Padx("0.6m"), Pady("0.6m"))
	GridColumnConfigure(App, 0, Weight(1))

	rv.Status = NewBoothStatus(boothFrame, 0)
	rv.Preview = NewCapturePreview(boothFrame, 1)

	btnFrame := Frame()
	Grid(btnFrame, In(boothFrame), Row(2), Column(0), Columnspan(4), Sticky("we"), Pady("0.3m"))
	col := 0
	add := func(label string, fn func()) *ButtonWidget {
		b := Button(Txt(label), Command(fn))
		Grid(b, In(btnFrame), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
		return b
	}
	rv.startBtn = add("Take Photo", booth.OnStart)
	rv.acceptBtn = add("Keep", booth.OnAccept)
	rv.retakeBtn = add("Retake", booth.OnRetake)
	rv.uploadBtn = add("Upload…", func() {
		files := GetOpenFile(Title("Choose a photo"))
		if len(files) > 0 && files[0] != "" && booth.OnUpload != nil {
			booth.OnUpload(files[0])
		}
	})
	add("Flip Camera", booth.OnToggleFacing)

	choices := make([]string, len(session.TimerChoices))
	current := 0
	for i, s := range session.TimerChoices {
		choices[i] = timerLabel(s)
		if s == cfg.TimerSeconds {
			current = i
		}
	}
	rv.TimerSelect = TCombobox(Values(choices), Width(8))
	Grid(rv.TimerSelect, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.TimerSelect.Current(current)
	Bind(rv.TimerSelect, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.TimerSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(session.TimerChoices) {
			if rv.logger != nil {
				rv.logger.Error("timer selection parse error", "error", err)
			}
			return
		}
		if booth.OnTimer != nil {
			booth.OnTimer(session.TimerChoices[idx])
		}
	}))
	rv.auto = cfg.AutoMode
	rv.autoBtn = Button(Txt(autoLabel(rv.auto)), Command(func() {
		if booth.OnAuto != nil {
			booth.OnAuto(!rv.auto)
		}
	}))
	Grid(rv.autoBtn, In(btnFrame), Row(1), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(booth.OnExit))
	Grid(exitBtn, In(btnFrame), Row(1), Column(4), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	rv.Editor = NewEditorPanel(editor, rv.logger)
	rv.Editor.Build(editorFrame, 0, caption, background)
	rv.SetControls(session.StateIdle, cfg.AutoMode)
}

// SetControls enables the buttons that make sense in state.
func (rv *RootView) SetControls(state session.State, auto bool) {
	if rv == nil {
		return
	}
	enable := func(b *ButtonWidget, on bool) {
		if b == nil {
			return
		}
		if on {
			b.Configure(State("normal"))
		} else {
			b.Configure(State("disabled"))
		}
	}
	enable(rv.startBtn, (state == session.StateIdle || state == session.StateReady) && !auto)
	enable(rv.acceptBtn, state == session.StateReviewing && !auto)
	enable(rv.retakeBtn, state == session.StateReviewing)
	enable(rv.uploadBtn, !state.Terminal())
	if rv.auto != auto {
		rv.auto = auto
		if rv.autoBtn != nil {
			rv.autoBtn.Configure(Txt(autoLabel(auto)))
		}
	}
	if rv.Editor != nil {
		rv.Editor.SetEditable(state == session.StateCompleted)
	}
}

func timerLabel(seconds int) string {
	if seconds == 0 {
		return "No timer"
	}
	return fmt.Sprintf("%ds timer", seconds)
}

func autoLabel(auto bool) string {
	if auto {
		return "Auto: on"
	}
	return "Auto: off"
}

// --- BoothView contract ---

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}

func (rv *RootView) SetCountdown(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetCountdown(text)
	}
}

func (rv *RootView) SetProgress(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetProgress(text)
	}
}

func (rv *RootView) ShowReview(png []byte) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowReview(png)
	}
}

func (rv *RootView) HideReview() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.HideReview()
	}
}

// --- PreviewView contract ---

func (rv *RootView) UpdatePreview(png []byte) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(png)
	}
}

// PreviewReset clears the live preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

func (rv *RootView) SetFacing(label string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetFacing(label)
	}
}

// --- EditorView contract ---

func (rv *RootView) ShowStrip(png []byte) {
	if rv != nil && rv.Editor != nil {
		rv.Editor.ShowStrip(png)
	}
}

func (rv *RootView) SetEditorStatus(text string) {
	if rv != nil && rv.Editor != nil {
		rv.Editor.SetStatus(text)
	}
}

func (rv *RootView) SetStickers(names []string) {
	if rv != nil && rv.Editor != nil {
		rv.Editor.SetStickers(names)
	}
}
