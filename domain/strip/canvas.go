package strip

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/mystic-booth/domain/raster"
)

// CaptionSize is the caption font size in pixels.
const CaptionSize = 20

// Canvas is the drawing surface the composer renders through. Tests substitute
// a recording implementation.
type Canvas interface {
	Bounds() image.Rectangle
	FillRect(r image.Rectangle, c color.Color)
	// DrawScaled scales the crop region of src to exactly dst.
	DrawScaled(src *image.RGBA, crop CropBox, dst image.Rectangle)
	// DrawText renders text horizontally and vertically centered on center.
	DrawText(text string, center image.Point, c color.Color) error
	DrawOverlay(img image.Image, at image.Point)
	Encode(w io.Writer) error
}

// CanvasFactory creates a blank canvas of w x h.
type CanvasFactory func(w, h int) (Canvas, error)

// ImageCanvas renders into an in-memory RGBA image and encodes JPEG.
type ImageCanvas struct {
	img     *image.RGBA
	quality int
	face    font.Face
}

// NewImageCanvas allocates a w x h canvas encoding at the given JPEG quality.
func NewImageCanvas(w, h, quality int) (*ImageCanvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", raster.ErrEncodeFailure, w, h)
	}
	if quality < 1 || quality > 100 {
		quality = JPEGQuality
	}
	return &ImageCanvas{img: image.NewRGBA(image.Rect(0, 0, w, h)), quality: quality}, nil
}

// ImageCanvasFactory returns a CanvasFactory producing ImageCanvas values.
func ImageCanvasFactory(quality int) CanvasFactory {
	return func(w, h int) (Canvas, error) { return NewImageCanvas(w, h, quality) }
}

func (c *ImageCanvas) Image() *image.RGBA        { return c.img }
func (c *ImageCanvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *ImageCanvas) FillRect(r image.Rectangle, col color.Color) {
	xdraw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, xdraw.Src)
}

func (c *ImageCanvas) DrawScaled(src *image.RGBA, crop CropBox, dst image.Rectangle) {
	sr := crop.Rect().Intersect(src.Bounds())
	if sr.Empty() || dst.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(c.img, dst, src, sr, xdraw.Src, nil)
}

func (c *ImageCanvas) DrawText(text string, center image.Point, col color.Color) error {
	if text == "" {
		return nil
	}
	if c.face == nil {
		face, err := newCaptionFace()
		if err != nil {
			return err
		}
		c.face = face
	}
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: c.face}
	m := c.face.Metrics()
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(center.X) - width/2,
		Y: fixed.I(center.Y) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
	return nil
}

func (c *ImageCanvas) DrawOverlay(img image.Image, at image.Point) {
	if img == nil {
		return
	}
	b := img.Bounds()
	xdraw.Draw(c.img, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, xdraw.Over)
}

func (c *ImageCanvas) Encode(w io.Writer) error {
	if err := jpeg.Encode(w, c.img, &jpeg.Options{Quality: c.quality}); err != nil {
		return fmt.Errorf("%w: jpeg: %v", raster.ErrEncodeFailure, err)
	}
	return nil
}

var (
	boldOnce sync.Once
	boldFont *sfnt.Font
	boldErr  error
)

func newCaptionFace() (font.Face, error) {
	boldOnce.Do(func() { boldFont, boldErr = opentype.Parse(gobold.TTF) })
	if boldErr != nil {
		return nil, fmt.Errorf("%w: caption font: %v", raster.ErrEncodeFailure, boldErr)
	}
	face, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: CaptionSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("%w: caption face: %v", raster.ErrEncodeFailure, err)
	}
	return face, nil
}

// CropBox is a source region in fractional pixels.
type CropBox struct {
	X, Y, W, H float64
}

// Rect rounds the box to the nearest integer rectangle.
func (b CropBox) Rect() image.Rectangle {
	x0 := int(math.Round(b.X))
	y0 := int(math.Round(b.Y))
	return image.Rect(x0, y0, x0+int(math.Round(b.W)), y0+int(math.Round(b.H)))
}

// CoverCrop returns the centered region of a sw x sh source that has the
// aspect ratio of a fw x fh frame, so that scaling it fills the frame with
// no letterboxing.
func CoverCrop(sw, sh, fw, fh int) CropBox {
	if sw <= 0 || sh <= 0 || fw <= 0 || fh <= 0 {
		return CropBox{W: float64(max(sw, 0)), H: float64(max(sh, 0))}
	}
	srcRatio := float64(sw) / float64(sh)
	dstRatio := float64(fw) / float64(fh)
	if srcRatio > dstRatio {
		w := float64(sh) * dstRatio
		return CropBox{X: (float64(sw) - w) / 2, Y: 0, W: w, H: float64(sh)}
	}
	h := float64(sw) / dstRatio
	return CropBox{X: 0, Y: (float64(sh) - h) / 2, W: float64(sw), H: h}
}
