package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/png"
)

// SampleConfigTOML is the annotated default configuration written by
// "mystic-booth config init".
//
//go:embed sample_config.toml
var SampleConfigTOML []byte

// MoonStickerPNG contains the raw PNG bytes of the crescent moon sticker.
//
//go:embed moon_sticker.png
var MoonStickerPNG []byte

// MoonSticker decodes the embedded PNG into an image.Image.
func MoonSticker() (image.Image, error) {
	if len(MoonStickerPNG) == 0 {
		return nil, fmt.Errorf("embedded moon_sticker.png is empty")
	}
	img, err := png.Decode(bytes.NewReader(MoonStickerPNG))
	if err != nil {
		return nil, err
	}
	return img, nil
}
