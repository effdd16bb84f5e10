// Package strip lays accepted shots out vertically on a colored background,
// adds an optional caption and stickers, and encodes the result as JPEG.
package strip

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/soocke/mystic-booth/domain/raster"
)

const (
	Padding         = 20
	CaptionBand     = 60
	MaxCaptionRunes = 25
	JPEGQuality     = 95

	DefaultFrameWidth  = 260
	DefaultFrameHeight = 195
)

// ErrNoShots is returned when composing an empty strip.
var ErrNoShots = errors.New("strip has no shots")

// Sticker is an overlay drawn on top of the finished strip.
type Sticker struct {
	Image image.Image
	At    image.Point
}

// Config describes the strip decoration. It is identical for every shot.
type Config struct {
	Background color.RGBA
	Caption    string
	Frame      image.Point
	Stickers   []Sticker
}

// DefaultConfig returns the default strip look.
func DefaultConfig() Config {
	return Config{
		Background: DefaultBackground,
		Frame:      image.Pt(DefaultFrameWidth, DefaultFrameHeight),
	}
}

// Normalized fills a zero frame and background and normalizes the caption.
func (c Config) Normalized() Config {
	if c.Frame.X <= 0 || c.Frame.Y <= 0 {
		c.Frame = image.Pt(DefaultFrameWidth, DefaultFrameHeight)
	}
	if c.Background == (color.RGBA{}) {
		c.Background = DefaultBackground
	}
	c.Background.A = 0xff
	c.Caption = NormalizeCaption(c.Caption)
	return c
}

var upper = cases.Upper(language.Und)

// NormalizeCaption trims, upper-cases and truncates s to MaxCaptionRunes.
func NormalizeCaption(s string) string {
	s = upper.String(strings.TrimSpace(s))
	if utf8.RuneCountInString(s) <= MaxCaptionRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxCaptionRunes]))
}

// Size returns the strip dimensions for n shots.
func Size(n int, cfg Config) (w, h int) {
	band := 0
	if cfg.Caption != "" {
		band = CaptionBand
	}
	return cfg.Frame.X + 2*Padding, n*(cfg.Frame.Y+Padding) + Padding + band
}

// FrameRect returns where shot i is drawn.
func FrameRect(i int, cfg Config) image.Rectangle {
	x := Padding
	y := Padding + i*(cfg.Frame.Y+Padding)
	return image.Rect(x, y, x+cfg.Frame.X, y+cfg.Frame.Y)
}

// CaptionCenter returns the caption anchor for a strip of w x h.
func CaptionCenter(w, h int) image.Point {
	return image.Pt(w/2, h-CaptionBand/2-Padding)
}

// Strip is a composed, encoded photo strip.
type Strip struct {
	Image      *image.RGBA // nil when the canvas does not expose pixels
	Payload    []byte
	Width      int
	Height     int
	Shots      int
	Caption    string
	Background color.RGBA
}

// DataURI returns the payload as a data URI.
func (s *Strip) DataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(s.Payload)
}

// Composer renders strips through a Canvas.
type Composer struct {
	newCanvas CanvasFactory
	logger    *slog.Logger
}

// ComposerOption customises a Composer.
type ComposerOption func(*Composer)

// WithCanvas replaces the canvas implementation.
func WithCanvas(f CanvasFactory) ComposerOption {
	return func(c *Composer) {
		if f != nil {
			c.newCanvas = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ComposerOption { return func(c *Composer) { c.logger = l } }

// NewComposer returns a composer drawing on ImageCanvas at JPEGQuality.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{newCanvas: ImageCanvasFactory(JPEGQuality)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders shots in order. The shots are read but never modified. A
// failed compose leaves the shots intact so it can be retried.
func (c *Composer) Compose(shots []*raster.Source, cfg Config) (*Strip, error) {
	if len(shots) == 0 {
		return nil, ErrNoShots
	}
	start := time.Now()
	cfg = cfg.Normalized()
	w, h := Size(len(shots), cfg)
	canvas, err := c.newCanvas(w, h)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	canvas.FillRect(canvas.Bounds(), cfg.Background)
	for i, src := range shots {
		if src == nil {
			return nil, fmt.Errorf("shot %d: %w", i, raster.ErrReleased)
		}
		dst := FrameRect(i, cfg)
		err := src.Read(func(img *image.RGBA) error {
			b := img.Bounds()
			canvas.DrawScaled(img, CoverCrop(b.Dx(), b.Dy(), cfg.Frame.X, cfg.Frame.Y), dst)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("shot %d: %w", i, err)
		}
	}
	if cfg.Caption != "" {
		if err := canvas.DrawText(cfg.Caption, CaptionCenter(w, h), ContrastColor(cfg.Background)); err != nil {
			return nil, fmt.Errorf("caption: %w", err)
		}
	}
	for _, st := range cfg.Stickers {
		canvas.DrawOverlay(st.Image, st.At)
	}

	var buf bytes.Buffer
	if err := canvas.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode strip: %w", err)
	}
	out := &Strip{
		Payload:    buf.Bytes(),
		Width:      w,
		Height:     h,
		Shots:      len(shots),
		Caption:    cfg.Caption,
		Background: cfg.Background,
	}
	if ic, ok := canvas.(interface{ Image() *image.RGBA }); ok {
		out.Image = ic.Image()
	}
	if c.logger != nil {
		c.logger.Info("strip.composed",
			"shots", len(shots),
			"width", w,
			"height", h,
			"size", humanize.Bytes(uint64(len(out.Payload))),
			"elapsed", time.Since(start),
		)
	}
	return out, nil
}
