package strip

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/soocke/mystic-booth/domain/raster"
)

type drawOp struct {
	kind  string
	rect  image.Rectangle
	crop  CropBox
	text  string
	at    image.Point
	color color.RGBA
}

// recordingCanvas records draw calls instead of rendering.
type recordingCanvas struct {
	bounds image.Rectangle
	ops    []drawOp
}

func (r *recordingCanvas) Bounds() image.Rectangle { return r.bounds }
func (r *recordingCanvas) FillRect(rect image.Rectangle, c color.Color) {
	r.ops = append(r.ops, drawOp{kind: "fill", rect: rect, color: color.RGBAModel.Convert(c).(color.RGBA)})
}
func (r *recordingCanvas) DrawScaled(_ *image.RGBA, crop CropBox, dst image.Rectangle) {
	r.ops = append(r.ops, drawOp{kind: "scaled", crop: crop, rect: dst})
}
func (r *recordingCanvas) DrawText(text string, center image.Point, c color.Color) error {
	r.ops = append(r.ops, drawOp{kind: "text", text: text, at: center, color: color.RGBAModel.Convert(c).(color.RGBA)})
	return nil
}
func (r *recordingCanvas) DrawOverlay(_ image.Image, at image.Point) {
	r.ops = append(r.ops, drawOp{kind: "overlay", at: at})
}
func (r *recordingCanvas) Encode(w io.Writer) error {
	_, err := w.Write([]byte("recorded"))
	return err
}

var (
	trimBand   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	centerMark = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

type shotSpec struct {
	w, h int
	body color.RGBA
}

// aspectShots covers 4:3, 16:9, 1:1 and 3:4.
var aspectShots = []shotSpec{
	{640, 480, color.RGBA{R: 40, G: 160, B: 80, A: 255}},
	{1600, 900, color.RGBA{R: 40, G: 80, B: 160, A: 255}},
	{600, 600, color.RGBA{R: 200, G: 160, B: 40, A: 255}},
	{480, 640, color.RGBA{R: 90, G: 200, B: 200, A: 255}},
}

// bandedShot paints body with trimBand over the outer half of whatever CoverCrop
// removes and a centerMark square one fifth of the crop height in the middle.
func bandedShot(t *testing.T, spec shotSpec) *raster.Source {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, spec.w, spec.h))
	fill := func(r image.Rectangle, c color.RGBA) {
		r = r.Intersect(img.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	fill(img.Bounds(), spec.body)
	crop := CoverCrop(spec.w, spec.h, DefaultFrameWidth, DefaultFrameHeight).Rect()
	if mx := crop.Min.X / 2; mx > 0 {
		fill(image.Rect(0, 0, mx, spec.h), trimBand)
		fill(image.Rect(spec.w-mx, 0, spec.w, spec.h), trimBand)
	}
	if my := crop.Min.Y / 2; my > 0 {
		fill(image.Rect(0, 0, spec.w, my), trimBand)
		fill(image.Rect(0, spec.h-my, spec.w, spec.h), trimBand)
	}
	m := crop.Dy() / 5
	cx, cy := spec.w/2, spec.h/2
	fill(image.Rect(cx-m/2, cy-m/2, cx+m/2, cy+m/2), centerMark)
	src, err := raster.FromRGBA(img, raster.OriginCamera)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	return src
}

func fourShots(t *testing.T) []*raster.Source {
	out := make([]*raster.Source, len(aspectShots))
	for i, spec := range aspectShots {
		out[i] = bandedShot(t, spec)
	}
	return out
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= float64(tol) }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func TestCompose_LayoutThroughCanvas(t *testing.T) {
	var rec *recordingCanvas
	c := NewComposer(WithCanvas(func(w, h int) (Canvas, error) {
		rec = &recordingCanvas{bounds: image.Rect(0, 0, w, h)}
		return rec, nil
	}))
	shots := fourShots(t)
	out, err := c.Compose(shots, Config{Background: DefaultBackground, Caption: "  mystic night "})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if out.Width != 300 || out.Height != 940 {
		t.Fatalf("expected 300x940, got %dx%d", out.Width, out.Height)
	}
	if string(out.Payload) != "recorded" || out.Image != nil {
		t.Fatalf("unexpected payload %q", out.Payload)
	}
	if len(rec.ops) != 6 {
		t.Fatalf("expected fill, 4 shots and caption, got %d ops", len(rec.ops))
	}
	if fill := rec.ops[0]; fill.kind != "fill" || fill.rect != image.Rect(0, 0, 300, 940) || fill.color != DefaultBackground {
		t.Fatalf("unexpected background fill %+v", fill)
	}
	for i := 0; i < 4; i++ {
		op := rec.ops[1+i]
		want := image.Rect(20, 20+i*215, 280, 20+i*215+195)
		if op.kind != "scaled" || op.rect != want {
			t.Fatalf("shot %d drawn at %v, want %v", i, op.rect, want)
		}
		if wantCrop := CoverCrop(aspectShots[i].w, aspectShots[i].h, 260, 195); op.crop != wantCrop {
			t.Fatalf("shot %d cropped to %+v, want %+v", i, op.crop, wantCrop)
		}
	}
	text := rec.ops[5]
	if text.kind != "text" || text.text != "MYSTIC NIGHT" {
		t.Fatalf("unexpected caption op %+v", text)
	}
	if text.at != image.Pt(150, 890) {
		t.Fatalf("caption centered at %v, want (150,890)", text.at)
	}
	if text.color != GoldAccent {
		t.Fatalf("caption on dark background should be gold, got %v", text.color)
	}
}

func TestCompose_NoCaptionNoBand(t *testing.T) {
	var rec *recordingCanvas
	c := NewComposer(WithCanvas(func(w, h int) (Canvas, error) {
		rec = &recordingCanvas{bounds: image.Rect(0, 0, w, h)}
		return rec, nil
	}))
	out, err := c.Compose(fourShots(t)[:2], Config{Caption: "   "})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if out.Height != 2*(195+20)+20 {
		t.Fatalf("unexpected height %d", out.Height)
	}
	for _, op := range rec.ops {
		if op.kind == "text" {
			t.Fatalf("blank caption should not be drawn")
		}
	}
}

func TestCompose_EndToEnd(t *testing.T) {
	shots := fourShots(t)
	out, err := NewComposer().Compose(shots, Config{Background: DefaultBackground, Caption: "mystic booth"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if out.Image == nil || out.Image.Bounds() != image.Rect(0, 0, 300, 940) {
		t.Fatalf("unexpected strip image")
	}
	if out.Caption != "MYSTIC BOOTH" {
		t.Fatalf("caption = %q", out.Caption)
	}
	if got := out.Image.RGBAAt(2, 2); got != DefaultBackground {
		t.Fatalf("background = %v, want %v", got, DefaultBackground)
	}
	for i, spec := range aspectShots {
		r := FrameRect(i, DefaultConfig())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if near(out.Image.RGBAAt(x, y), trimBand, 40) {
					t.Fatalf("shot %d: trimmed edge visible at (%d,%d)", i, x, y)
				}
			}
		}
		// The marker is 39px across once scaled into the 195px frame.
		mid := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		for _, d := range []image.Point{{0, 0}, {-12, 0}, {12, 0}, {0, -12}, {0, 12}} {
			p := mid.Add(d)
			if got := out.Image.RGBAAt(p.X, p.Y); !near(got, centerMark, 6) {
				t.Fatalf("shot %d: marker missing at %v, got %v", i, d, got)
			}
		}
		for _, d := range []image.Point{{-28, 0}, {28, 0}, {0, -28}, {0, 28}} {
			p := mid.Add(d)
			if got := out.Image.RGBAAt(p.X, p.Y); !near(got, spec.body, 6) {
				t.Fatalf("shot %d: expected body at %v, got %v", i, d, got)
			}
		}
	}
	gold := false
	for y := 880; y < 900 && !gold; y++ {
		for x := 0; x < 300; x++ {
			if near(out.Image.RGBAAt(x, y), GoldAccent, 8) {
				gold = true
				break
			}
		}
	}
	if !gold {
		t.Fatalf("expected gold caption pixels in the caption band")
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out.Payload))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Bounds().Dx() != 300 || decoded.Bounds().Dy() != 940 {
		t.Fatalf("decoded %v", decoded.Bounds())
	}
	if !strings.HasPrefix(out.DataURI(), "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data uri prefix")
	}
}

func TestCompose_Deterministic(t *testing.T) {
	shots := fourShots(t)
	cfg := Config{Background: color.RGBA{R: 0xf5, G: 0xe6, B: 0xff, A: 0xff}, Caption: "again"}
	a, err := NewComposer().Compose(shots, cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	b, err := NewComposer().Compose(shots, cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !bytes.Equal(a.Payload, b.Payload) {
		t.Fatalf("payloads differ")
	}
	da, _ := jpeg.Decode(bytes.NewReader(a.Payload))
	db, _ := jpeg.Decode(bytes.NewReader(b.Payload))
	for y := 0; y < a.Height; y += 7 {
		for x := 0; x < a.Width; x += 7 {
			if da.At(x, y) != db.At(x, y) {
				t.Fatalf("decoded pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestCompose_DoesNotMutateShots(t *testing.T) {
	shots := fourShots(t)
	before := make([][]byte, len(shots))
	for i, s := range shots {
		before[i] = append([]byte(nil), s.Image().Pix...)
	}
	if _, err := NewComposer().Compose(shots, DefaultConfig()); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i, s := range shots {
		if s.Released() || !bytes.Equal(before[i], s.Image().Pix) {
			t.Fatalf("shot %d changed", i)
		}
	}
}

func TestCompose_Errors(t *testing.T) {
	if _, err := NewComposer().Compose(nil, DefaultConfig()); !errors.Is(err, ErrNoShots) {
		t.Fatalf("expected ErrNoShots, got %v", err)
	}
	shots := fourShots(t)
	shots[2].Release()
	if _, err := NewComposer().Compose(shots, DefaultConfig()); !errors.Is(err, raster.ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	if shots[0].Released() {
		t.Fatalf("failed compose must leave other shots intact")
	}
}

func TestCompose_StickersDrawnLast(t *testing.T) {
	sticker := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(sticker.Pix); i += 4 {
		sticker.Pix[i], sticker.Pix[i+3] = 255, 255
	}
	out, err := NewComposer().Compose(fourShots(t)[:1], Config{Stickers: []Sticker{{Image: sticker, At: image.Pt(25, 25)}}})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := out.Image.RGBAAt(30, 30); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("sticker pixel = %v", got)
	}
}

func TestCoverCrop(t *testing.T) {
	approx := func(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
	tests := []struct {
		name   string
		sw, sh int
		want   CropBox
	}{
		{"exact 4:3", 640, 480, CropBox{W: 640, H: 480}},
		{"2:1 crops width", 800, 400, CropBox{X: (800 - 400*4.0/3.0) / 2, W: 400 * 4.0 / 3.0, H: 400}},
		{"tall crops height", 300, 600, CropBox{Y: 187.5, W: 300, H: 225}},
		{"16:9", 1600, 900, CropBox{X: 200, W: 1200, H: 900}},
		{"1:1", 600, 600, CropBox{Y: 75, W: 600, H: 450}},
		{"3:4", 480, 640, CropBox{Y: 140, W: 480, H: 360}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverCrop(tt.sw, tt.sh, 260, 195)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) || !approx(got.W, tt.want.W) || !approx(got.H, tt.want.H) {
				t.Fatalf("CoverCrop(%d,%d) = %+v, want %+v", tt.sw, tt.sh, got, tt.want)
			}
			if !approx(got.W/got.H, 4.0/3.0) {
				t.Fatalf("crop ratio %f is not 4:3", got.W/got.H)
			}
		})
	}
}

func TestCoverCrop_Idempotent(t *testing.T) {
	first := CoverCrop(1600, 900, 260, 195)
	again := CoverCrop(int(math.Round(first.W)), int(math.Round(first.H)), 260, 195)
	if math.Abs(again.X) > 1e-6 || math.Abs(again.Y) > 1e-6 || math.Abs(again.W-first.W) > 1e-6 || math.Abs(again.H-first.H) > 1e-6 {
		t.Fatalf("cropping a cropped region changed it: %+v", again)
	}
}

func TestContrastColor(t *testing.T) {
	tests := []struct {
		name string
		bg   color.Color
		want color.RGBA
	}{
		{"luma 127 is gold", color.RGBA{R: 127, G: 127, B: 127, A: 255}, GoldAccent},
		{"luma 128 is dark", color.RGBA{R: 128, G: 128, B: 128, A: 255}, DarkAccent},
		{"white", color.White, DarkAccent},
		{"black", color.Black, GoldAccent},
		{"booth purple", DefaultBackground, GoldAccent},
		{"nil", nil, GoldAccent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContrastColor(tt.bg); got != tt.want {
				t.Fatalf("ContrastColor(%v) = %v, want %v", tt.bg, got, tt.want)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#1a1625")
	if err != nil || c != DefaultBackground {
		t.Fatalf("parse: %v %v", c, err)
	}
	if c, err := ParseHexColor("fff"); err != nil || c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("short form: %v %v", c, err)
	}
	for _, bad := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if HexColor(GoldAccent) != "#fbbf24" {
		t.Fatalf("unexpected hex %s", HexColor(GoldAccent))
	}
}

func TestNormalizeCaption(t *testing.T) {
	if got := NormalizeCaption("  hello  "); got != "HELLO" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeCaption(strings.Repeat("a", 30)); got != strings.Repeat("A", MaxCaptionRunes) {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeCaption("ünicode"); got != "ÜNICODE" {
		t.Fatalf("got %q", got)
	}
}
