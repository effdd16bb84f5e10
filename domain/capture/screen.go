package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"

	"github.com/soocke/mystic-booth/domain/raster"
)

// ScreenSource grabs the desktop (or a rectangle of it) as the live feed. It
// stands in for a webcam on machines where the booth runs against a capture
// card or a virtual camera window.
type ScreenSource struct {
	selFn func() *image.Rectangle
}

// NewScreenSource returns a screen source. selFn may be nil or return nil to
// capture the full screen.
func NewScreenSource(selFn func() *image.Rectangle) *ScreenSource {
	return &ScreenSource{selFn: selFn}
}

// Frame captures the selection when one is set, otherwise the whole screen.
func (s *ScreenSource) Frame() (image.Image, error) {
	if s.selFn != nil {
		if r := s.selFn(); r != nil && !r.Empty() {
			return grabSelection(*r)
		}
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: screen: %v", raster.ErrCaptureUnavailable, err)
	}
	return img, nil
}

func grabSelection(sel image.Rectangle) (image.Image, error) {
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("%w: screen rect: %v", raster.ErrCaptureUnavailable, err)
	}
	r := sel.Intersect(screen)
	if r.Empty() {
		return nil, fmt.Errorf("%w: selection out of bounds sel=%v screen=%v", raster.ErrCaptureUnavailable, sel, screen)
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("%w: selection: %v", raster.ErrCaptureUnavailable, err)
	}
	return img, nil
}
