package view

import (
	"github.com/soocke/mystic-booth/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// BoothStatus holds the prompt, countdown, progress and camera labels.
type BoothStatus interface {
	SetStatus(text string)
	SetCountdown(text string)
	SetProgress(text string)
	SetFacing(text string)
}

type boothStatus struct {
	statusLbl    *LabelWidget
	countdownLbl *LabelWidget
	progressLbl  *LabelWidget
	facingLbl    *LabelWidget
}

// NewBoothStatus grids the labels across row of parent.
func NewBoothStatus(parent *FrameWidget, row int) BoothStatus {
	p := theme.CurrentPalette()
	s := &boothStatus{
		statusLbl:    Label(Txt("Step inside the booth"), Anchor("w"), Width(30), Foreground(p.Text), Background(p.Surface)),
		countdownLbl: Label(Txt(""), Width(3), Foreground(p.Accent), Background(p.Surface)),
		progressLbl:  Label(Txt(""), Width(12), Foreground(p.Accent), Background(p.Surface)),
		facingLbl:    Label(Txt("Camera: front (mirrored)"), Anchor("e"), Foreground(p.TextMuted), Background(p.Surface)),
	}
	Grid(s.statusLbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	Grid(s.countdownLbl, In(parent), Row(row), Column(1), Padx("0.4m"), Pady("0.3m"))
	Grid(s.progressLbl, In(parent), Row(row), Column(2), Padx("0.4m"), Pady("0.3m"))
	Grid(s.facingLbl, In(parent), Row(row), Column(3), Sticky("e"), Padx("0.4m"), Pady("0.3m"))
	return s
}

func (s *boothStatus) SetStatus(text string) {
	if s != nil && s.statusLbl != nil {
		s.statusLbl.Configure(Txt(text))
	}
}

func (s *boothStatus) SetCountdown(text string) {
	if s != nil && s.countdownLbl != nil {
		s.countdownLbl.Configure(Txt(text))
	}
}

func (s *boothStatus) SetProgress(text string) {
	if s != nil && s.progressLbl != nil {
		s.progressLbl.Configure(Txt(text))
	}
}

func (s *boothStatus) SetFacing(text string) {
	if s != nil && s.facingLbl != nil {
		s.facingLbl.Configure(Txt(text))
	}
}
