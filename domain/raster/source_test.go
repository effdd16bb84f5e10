package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFromRGBA_RejectsEmpty(t *testing.T) {
	if _, err := FromRGBA(nil, OriginCamera); !errors.Is(err, ErrEncodeFailure) {
		t.Fatalf("expected ErrEncodeFailure for nil, got %v", err)
	}
	if _, err := FromRGBA(image.NewRGBA(image.Rect(0, 0, 0, 10)), OriginCamera); !errors.Is(err, ErrEncodeFailure) {
		t.Fatalf("expected ErrEncodeFailure for zero width, got %v", err)
	}
}

func TestFromRGBA_NormalizesOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 30, 20))
	img.SetRGBA(10, 10, color.RGBA{R: 200, A: 255})
	src, err := FromRGBA(img, OriginCamera)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected origin (0,0), got %v", src.Bounds())
	}
	if src.Width() != 20 || src.Height() != 10 {
		t.Fatalf("expected 20x10, got %dx%d", src.Width(), src.Height())
	}
	if got := src.Image().RGBAAt(0, 0); got.R != 200 {
		t.Fatalf("pixel not carried over: %v", got)
	}
}

func TestSource_ReleaseIdempotent(t *testing.T) {
	src, err := Copy(solid(4, 3, color.RGBA{A: 255}), OriginCamera)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if src.ID() == "" {
		t.Fatalf("expected an id")
	}
	src.Release()
	src.Release()
	if !src.Released() || src.Image() != nil || src.Width() != 0 {
		t.Fatalf("expected released source to expose no pixels")
	}
	err = src.Read(func(*image.RGBA) error { return nil })
	if !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	var nilSrc *Source
	nilSrc.Release()
}

func TestCopy_DoesNotAliasInput(t *testing.T) {
	in := solid(2, 2, color.RGBA{G: 10, A: 255})
	src, err := Copy(in, OriginUpload)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	in.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	if got := src.Image().RGBAAt(0, 0); got.R != 0 || got.G != 10 {
		t.Fatalf("source aliased its input: %v", got)
	}
}

func TestDecode_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(8, 6, color.RGBA{B: 90, A: 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	src, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.Width() != 8 || src.Height() != 6 || src.Origin() != OriginUpload {
		t.Fatalf("unexpected source %dx%d origin=%v", src.Width(), src.Height(), src.Origin())
	}
	if got := src.Image().RGBAAt(3, 3); got.B != 90 {
		t.Fatalf("unexpected pixel %v", got)
	}
}

func TestDecode_InvalidUpload(t *testing.T) {
	cases := map[string]string{
		"empty":   "",
		"garbage": "definitely not an image",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(body)); !errors.Is(err, ErrInvalidUpload) {
				t.Fatalf("expected ErrInvalidUpload, got %v", err)
			}
		})
	}
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("expected ErrInvalidUpload, got %v", err)
	}
}

func TestDecodeFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, solid(5, 5, color.RGBA{R: 1, A: 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()
	src, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("decode file: %v", err)
	}
	defer src.Release()
	if src.Width() != 5 {
		t.Fatalf("unexpected width %d", src.Width())
	}
}
