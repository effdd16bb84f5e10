package assets

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// StickerSize is the edge of a pack sticker in pixels.
const StickerSize = 48

// PackSticker is one entry of the built-in sticker pack.
type PackSticker struct {
	ID    string
	Color color.RGBA
}

// StickerPack lists the built-in stickers in display order.
var StickerPack = []PackSticker{
	{"star", rgb(0xfb, 0xbf, 0x24)},
	{"crown", rgb(0xf5, 0x9e, 0x0b)},
	{"heart", rgb(0xdb, 0x27, 0x77)},
	{"zap", rgb(0x22, 0xd3, 0xee)},
	{"ghost", rgb(0x94, 0xa3, 0xb8)},
	{"sun", rgb(0xf9, 0x73, 0x16)},
	{"moon", rgb(0xa8, 0x55, 0xf7)},
	{"sparkles", rgb(0x34, 0xd3, 0x99)},
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 0xff} }

// Sticker returns the pack sticker with the given id. The moon is the
// embedded artwork; the others are rasterized from vector outlines.
func Sticker(id string) (image.Image, error) {
	if id == "moon" {
		return MoonSticker()
	}
	for _, p := range StickerPack {
		if p.ID == id {
			return paint(outline(id), p.Color), nil
		}
	}
	return nil, fmt.Errorf("unknown sticker %q", id)
}

type poly [][2]float64

func circle(cx, cy, r float64) poly {
	const n = 40
	out := make(poly, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / n
		out[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return out
}

func starPoly(cx, cy, outer, inner float64, points int) poly {
	out := make(poly, 2*points)
	for i := range out {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		out[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return out
}

// outline returns the filled shape for id in unit coordinates.
func outline(id string) *image.Alpha {
	switch id {
	case "star":
		return fill(starPoly(0.5, 0.54, 0.46, 0.19, 5))
	case "crown":
		return fill(poly{{0.1, 0.8}, {0.1, 0.3}, {0.3, 0.55}, {0.5, 0.2}, {0.7, 0.55}, {0.9, 0.3}, {0.9, 0.8}})
	case "heart":
		p := make(poly, 64)
		for i := range p {
			t := 2 * math.Pi * float64(i) / float64(len(p))
			x := 16 * math.Pow(math.Sin(t), 3)
			y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
			p[i] = [2]float64{0.5 + x/36, 0.45 - y/36}
		}
		return fill(p)
	case "zap":
		return fill(poly{{0.58, 0.05}, {0.2, 0.55}, {0.46, 0.55}, {0.38, 0.95}, {0.8, 0.42}, {0.54, 0.42}, {0.66, 0.05}})
	case "ghost":
		var body poly
		for i := 0; i <= 20; i++ {
			a := math.Pi + math.Pi*float64(i)/20
			body = append(body, [2]float64{0.5 + 0.32*math.Cos(a), 0.42 + 0.32*math.Sin(a)})
		}
		body = append(body, poly{{0.82, 0.9}, {0.71, 0.8}, {0.61, 0.9}, {0.5, 0.8}, {0.39, 0.9}, {0.29, 0.8}, {0.18, 0.9}}...)
		m := fill(body)
		subtract(m, fill(circle(0.39, 0.42, 0.06), circle(0.61, 0.42, 0.06)))
		return m
	case "sun":
		shapes := []poly{circle(0.5, 0.5, 0.2)}
		for k := 0; k < 8; k++ {
			a := math.Pi * float64(k) / 4
			shapes = append(shapes, poly{
				{0.5 + 0.26*math.Cos(a-0.18), 0.5 + 0.26*math.Sin(a-0.18)},
				{0.5 + 0.47*math.Cos(a), 0.5 + 0.47*math.Sin(a)},
				{0.5 + 0.26*math.Cos(a+0.18), 0.5 + 0.26*math.Sin(a+0.18)},
			})
		}
		return fill(shapes...)
	case "sparkles":
		return fill(starPoly(0.42, 0.56, 0.38, 0.09, 4), starPoly(0.78, 0.22, 0.17, 0.05, 4))
	}
	return image.NewAlpha(image.Rect(0, 0, StickerSize, StickerSize))
}

func fill(shapes ...poly) *image.Alpha {
	const s = float32(StickerSize)
	z := vector.NewRasterizer(StickerSize, StickerSize)
	for _, p := range shapes {
		if len(p) < 3 {
			continue
		}
		z.MoveTo(float32(p[0][0])*s, float32(p[0][1])*s)
		for _, pt := range p[1:] {
			z.LineTo(float32(pt[0])*s, float32(pt[1])*s)
		}
		z.ClosePath()
	}
	m := image.NewAlpha(image.Rect(0, 0, StickerSize, StickerSize))
	z.Draw(m, m.Bounds(), image.Opaque, image.Point{})
	return m
}

func subtract(dst, hole *image.Alpha) {
	for i := range dst.Pix {
		dst.Pix[i] = uint8(uint32(dst.Pix[i]) * uint32(255-hole.Pix[i]) / 255)
	}
}

func paint(mask *image.Alpha, c color.RGBA) *image.RGBA {
	dst := image.NewRGBA(mask.Bounds())
	xdraw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, xdraw.Over)
	return dst
}
