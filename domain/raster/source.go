// Package raster holds decoded shots: pixel buffers with their intrinsic size,
// produced from a live frame grab or an uploaded file.
package raster

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Origin records how a source was produced.
type Origin int

const (
	OriginCamera Origin = iota
	OriginUpload
)

func (o Origin) String() string {
	switch o {
	case OriginCamera:
		return "camera"
	case OriginUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Source wraps a single shot's RGBA pixels. The zero value is not usable; build
// one with FromRGBA or Copy. Readers go through Read so that Release cannot free
// the buffer in the middle of a draw.
type Source struct {
	id        string
	origin    Origin
	createdAt time.Time

	mu  sync.RWMutex
	img *image.RGBA
}

// NewBuffer returns a pooled RGBA buffer of w x h with origin (0,0). Pixel
// contents are undefined.
func NewBuffer(w, h int) *image.RGBA { return acquire(w, h) }

// FromRGBA takes ownership of img. The image must have positive dimensions and
// origin (0,0); it is released back to the pool with the source.
func FromRGBA(img *image.RGBA, origin Origin) (*Source, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEncodeFailure)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrEncodeFailure, b)
	}
	if b.Min != (image.Point{}) {
		return Copy(img, origin)
	}
	return &Source{id: uuid.NewString(), origin: origin, createdAt: time.Now(), img: img}, nil
}

// Copy draws src into a fresh pooled buffer and wraps it. src is not retained.
func Copy(src image.Image, origin Origin) (*Source, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEncodeFailure)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrEncodeFailure, b)
	}
	dst := acquire(b.Dx(), b.Dy())
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Source{id: uuid.NewString(), origin: origin, createdAt: time.Now(), img: dst}, nil
}

func (s *Source) ID() string           { return s.id }
func (s *Source) Origin() Origin       { return s.origin }
func (s *Source) CreatedAt() time.Time { return s.createdAt }

// Width is the intrinsic (pre-crop) width; 0 once released.
func (s *Source) Width() int { return s.Bounds().Dx() }

// Height is the intrinsic (pre-crop) height; 0 once released.
func (s *Source) Height() int { return s.Bounds().Dy() }

// Bounds returns the pixel rectangle, empty once released.
func (s *Source) Bounds() image.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Bounds()
}

// Image returns the underlying pixels, or nil once released. Callers must treat
// the result as read-only and must not hold it across a session reset; prefer Read.
func (s *Source) Image() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Read calls fn with the pixels while holding the source open. fn must not
// modify or retain img.
func (s *Source) Read(fn func(img *image.RGBA) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return fmt.Errorf("%w: %s", ErrReleased, s.id)
	}
	return fn(s.img)
}

// Released reports whether Release has been called.
func (s *Source) Released() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img == nil
}

// Release frees the pixel buffer. Safe to call more than once and on nil.
func (s *Source) Release() {
	if s == nil {
		return
	}
	s.mu.Lock()
	img := s.img
	s.img = nil
	s.mu.Unlock()
	recycle(img)
}

// ReleaseAll releases every non-nil source in srcs.
func ReleaseAll(srcs []*Source) {
	for _, s := range srcs {
		s.Release()
	}
}
