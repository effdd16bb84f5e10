package presenter

import (
	"image"

	"github.com/soocke/mystic-booth/domain/capture"
	"github.com/soocke/mystic-booth/ui/images"
)

const (
	previewMaxW = 400
	previewMaxH = 300
)

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool) bool
}

// LiveFeed narrows what the presenter needs from capture.CaptureService.
type LiveFeed interface {
	Start()
	Stop()
	LatestFrame() capture.FrameSnapshot
}

// FacingSource reports and flips the camera facing.
type FacingSource interface {
	Facing() capture.Facing
	ToggleFacing() capture.Facing
}

// PreviewView displays the live feed.
type PreviewView interface {
	UpdatePreview(png []byte)
	PreviewReset()
	SetFacing(label string)
}

// CapturePresenter owns the live preview: it starts and stops the feed and
// pushes each new frame, mirrored when the camera faces the user.
type CapturePresenter struct {
	model  CaptureModel
	feed   LiveFeed
	facing FacingSource
	view   PreviewView

	lastSeq uint64
}

func NewCapturePresenter(model CaptureModel, feed LiveFeed, facing FacingSource, view PreviewView) *CapturePresenter {
	return &CapturePresenter{model: model, feed: feed, facing: facing, view: view}
}

// Enable starts the feed. Idempotent.
func (c *CapturePresenter) Enable() {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil {
		return
	}
	if !c.model.SetEnabled(true) {
		return
	}
	c.feed.Start()
}

// Disable stops the feed and clears the preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil {
		return
	}
	if !c.model.SetEnabled(false) {
		return
	}
	c.feed.Stop()
	c.lastSeq = 0
	c.view.PreviewReset()
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if c == nil || c.model == nil {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}

// ToggleFacing flips the camera and updates the facing label.
func (c *CapturePresenter) ToggleFacing() {
	if c == nil || c.facing == nil || c.view == nil {
		return
	}
	f := c.facing.ToggleFacing()
	c.lastSeq = 0
	c.view.SetFacing(facingLabel(f))
}

// ProcessFrame pushes the newest frame when its sequence changed.
func (c *CapturePresenter) ProcessFrame() {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil || !c.model.Enabled() {
		return
	}
	snap := c.feed.LatestFrame()
	if !snap.Ready() || snap.Sequence == c.lastSeq {
		return
	}
	c.lastSeq = snap.Sequence
	var img image.Image = images.ScaleToFit(snap.Image, previewMaxW, previewMaxH)
	if c.facing != nil && c.facing.Facing() == capture.FacingFront {
		img = images.Mirror(img)
	}
	c.view.UpdatePreview(images.EncodePNG(img))
}

func facingLabel(f capture.Facing) string {
	if f == capture.FacingRear {
		return "Camera: rear"
	}
	return "Camera: front (mirrored)"
}
