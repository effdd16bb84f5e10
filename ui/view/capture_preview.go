package view

import (
	"image"

	"github.com/soocke/mystic-booth/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the live feed next to the shot under review.
type CapturePreview interface {
	UpdatePreview(png []byte)
	ShowReview(png []byte)
	HideReview()
	Reset()
}

type capturePreview struct {
	liveLabel   *LabelWidget
	reviewLabel *LabelWidget
	livePhoto   *Img // disposed before replacement
	reviewPhoto *Img
}

func placeholder(w, h int) []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// NewCapturePreview grids the live label at columns 0-2 and the review label
// at column 3 of row.
func NewCapturePreview(parent *FrameWidget, row int) CapturePreview {
	livePhoto := NewPhoto(Data(placeholder(400, 300)))
	reviewPhoto := NewPhoto(Data(placeholder(200, 150)))
	live := Label(Image(livePhoto), Borderwidth(1), Relief("sunken"))
	review := Label(Image(reviewPhoto), Borderwidth(2), Relief("ridge"))
	Grid(live, In(parent), Row(row), Column(0), Columnspan(3), Sticky("nwe"), Padx("0.4m"), Pady("0.4m"))
	Grid(review, In(parent), Row(row), Column(3), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{liveLabel: live, reviewLabel: review, livePhoto: livePhoto, reviewPhoto: reviewPhoto}
}

func (v *capturePreview) UpdatePreview(png []byte) {
	if v == nil || v.liveLabel == nil || len(png) == 0 {
		return
	}
	v.livePhoto = swapPhoto(v.liveLabel, v.livePhoto, png)
}

func (v *capturePreview) ShowReview(png []byte) {
	if v == nil || v.reviewLabel == nil || len(png) == 0 {
		return
	}
	v.reviewPhoto = swapPhoto(v.reviewLabel, v.reviewPhoto, png)
}

func (v *capturePreview) HideReview() {
	if v == nil || v.reviewLabel == nil {
		return
	}
	v.reviewPhoto = swapPhoto(v.reviewLabel, v.reviewPhoto, placeholder(200, 150))
}

func (v *capturePreview) Reset() {
	if v == nil {
		return
	}
	if v.liveLabel != nil {
		v.livePhoto = swapPhoto(v.liveLabel, v.livePhoto, placeholder(400, 300))
	}
	v.HideReview()
}

// swapPhoto replaces the label image and frees the previous Tk photo so stale
// pixel data does not pile up.
func swapPhoto(lbl *LabelWidget, prev *Img, png []byte) *Img {
	if prev != nil {
		prev.Delete()
	}
	next := NewPhoto(Data(png))
	lbl.Configure(Image(next))
	return next
}
