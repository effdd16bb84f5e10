package capture

import (
	"image"
	"time"
)

// Facing tells which way the camera points. Front-facing frames are mirrored
// at capture time so the stored shot matches the on-screen preview.
type Facing int

const (
	FacingFront Facing = iota
	FacingRear
)

func (f Facing) String() string {
	switch f {
	case FacingFront:
		return "front"
	case FacingRear:
		return "rear"
	default:
		return "unknown"
	}
}

// ParseFacing maps a config value to a Facing. Unknown values fall back to front.
func ParseFacing(s string) Facing {
	if s == "rear" || s == "environment" {
		return FacingRear
	}
	return FacingFront
}

// FrameSource supplies live frames on demand. Implementations must return a
// fresh image per call or one the caller may read but never write.
type FrameSource interface {
	Frame() (image.Image, error)
}

// FrameSourceFunc adapts a function to FrameSource.
type FrameSourceFunc func() (image.Image, error)

func (f FrameSourceFunc) Frame() (image.Image, error) { return f() }

// FrameSnapshot carries the latest live frame and metadata.
type FrameSnapshot struct {
	Image      image.Image
	CapturedAt time.Time
	Sequence   uint64
}

// Ready reports whether the snapshot holds a frame with positive dimensions.
func (s FrameSnapshot) Ready() bool {
	if s.Image == nil {
		return false
	}
	b := s.Image.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}
