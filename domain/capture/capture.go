// Package capture turns live frames into shots: it polls a frame source for
// the preview feed and snapshots single frames on request, mirroring
// front-facing frames so the saved photo matches what the user saw.
package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/soocke/mystic-booth/domain/raster"
)

// Capture copies frame into a new source at its native resolution, flipped
// about the vertical center when facing is FacingFront. frame is only read.
func Capture(frame image.Image, facing Facing) (*raster.Source, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: no frame", raster.ErrCaptureUnavailable)
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: frame is %dx%d", raster.ErrCaptureUnavailable, b.Dx(), b.Dy())
	}
	if facing != FacingFront {
		return raster.Copy(frame, raster.OriginCamera)
	}
	flipped := imaging.FlipH(frame)
	dst := raster.NewBuffer(b.Dx(), b.Dy())
	draw.Draw(dst, dst.Bounds(), flipped, flipped.Bounds().Min, draw.Src)
	src, err := raster.FromRGBA(dst, raster.OriginCamera)
	if err != nil {
		return nil, fmt.Errorf("mirror frame: %w", err)
	}
	return src, nil
}

// LiveFeed is the subset of CaptureService a Capturer reads from.
type LiveFeed interface {
	LatestFrame() FrameSnapshot
}

// Capturer snapshots the newest live frame with the current facing mode.
type Capturer struct {
	feed   LiveFeed
	logger *slog.Logger
	facing atomic.Int32
}

// NewCapturer binds feed with an initial facing mode.
func NewCapturer(feed LiveFeed, facing Facing, logger *slog.Logger) *Capturer {
	c := &Capturer{feed: feed, logger: logger}
	c.facing.Store(int32(facing))
	return c
}

func (c *Capturer) Facing() Facing { return Facing(c.facing.Load()) }

func (c *Capturer) SetFacing(f Facing) { c.facing.Store(int32(f)) }

// ToggleFacing flips between front and rear and returns the new mode.
func (c *Capturer) ToggleFacing() Facing {
	for {
		cur := c.facing.Load()
		next := FacingRear
		if Facing(cur) == FacingRear {
			next = FacingFront
		}
		if c.facing.CompareAndSwap(cur, int32(next)) {
			return next
		}
	}
}

// Capture takes the latest frame from the feed. A feed with no frame yet
// reports raster.ErrCaptureUnavailable.
func (c *Capturer) Capture(ctx context.Context) (*raster.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", raster.ErrCaptureUnavailable, err)
	}
	if c.feed == nil {
		return nil, fmt.Errorf("%w: no feed", raster.ErrCaptureUnavailable)
	}
	snap := c.feed.LatestFrame()
	if !snap.Ready() {
		return nil, fmt.Errorf("%w: stream not ready", raster.ErrCaptureUnavailable)
	}
	facing := c.Facing()
	src, err := Capture(snap.Image, facing)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Debug("frame captured",
			"source", src.ID(),
			"sequence", snap.Sequence,
			"facing", facing.String(),
			"width", src.Width(),
			"height", src.Height(),
		)
	}
	return src, nil
}
