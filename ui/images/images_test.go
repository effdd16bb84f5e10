package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			}
		}
	}
	return img
}

func TestScaleToFit(t *testing.T) {
	src := checker(800, 400)
	got := ScaleToFit(src, 200, 200)
	if b := got.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("expected 200x100, got %v", b)
	}
	small := checker(10, 10)
	if ScaleToFit(small, 100, 100) != image.Image(small) {
		t.Fatalf("image that already fits should be returned as is")
	}
	if ScaleToFit(nil, 10, 10) != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestMirror(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	out := Mirror(src)
	if r, _, _, _ := out.At(2, 0).RGBA(); r>>8 != 255 {
		t.Fatalf("expected red pixel mirrored to the right edge")
	}
}

func TestEncodePNG(t *testing.T) {
	data := EncodePNG(checker(4, 4))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}

func TestThumbnailCache(t *testing.T) {
	c, err := NewThumbnailCache(2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	img := checker(400, 300)
	a := c.PNG("a", img, 100, 100)
	again := c.PNG("a", checker(1, 1), 100, 100)
	if !bytes.Equal(a, again) {
		t.Fatalf("expected cached thumbnail on second lookup")
	}
	c.PNG("b", img, 100, 100)
	c.PNG("c", img, 100, 100)
	if c.Len() != 2 {
		t.Fatalf("expected eviction down to 2 entries, got %d", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("purge left %d entries", c.Len())
	}
	var nilCache *ThumbnailCache
	if len(nilCache.PNG("x", img, 10, 10)) == 0 {
		t.Fatalf("nil cache should still render")
	}
}
