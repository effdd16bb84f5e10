package raster

import (
	"image"
	"sync"
)

// Shot buffers are large (a 1280x720 frame is ~3.5 MiB) and a session churns
// through them on every retake. Released sources hand their backing slice back
// here so the next capture can reuse it instead of growing the heap.
var bufferPool sync.Pool // stores *image.RGBA

// acquire returns an RGBA image with origin (0,0) sized w x h. The returned
// Pix length exactly matches w*h*4 and Stride is w*4. Pixel contents are
// undefined; callers overwrite every pixel.
func acquire(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := bufferPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// recycle returns img to the pool. The caller must not touch img afterwards.
func recycle(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	bufferPool.Put(img)
}
