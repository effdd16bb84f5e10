package strip

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	// DarkAccent is used for captions on light backgrounds.
	DarkAccent = color.RGBA{R: 0x2e, G: 0x10, B: 0x65, A: 0xff}
	// GoldAccent is used for captions on dark backgrounds.
	GoldAccent = color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}
	// DefaultBackground is the booth's midnight purple.
	DefaultBackground = color.RGBA{R: 0x1a, G: 0x16, B: 0x25, A: 0xff}
)

// ContrastColor picks the caption color for bg from its perceived luma
// Y = (299R + 587G + 114B)/1000: dark accent when Y >= 128, gold otherwise.
func ContrastColor(bg color.Color) color.RGBA {
	if bg == nil {
		return GoldAccent
	}
	c := color.RGBAModel.Convert(bg).(color.RGBA)
	y := 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
	if y >= 128000 {
		return DarkAccent
	}
	return GoldAccent
}

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
