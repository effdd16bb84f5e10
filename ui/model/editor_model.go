package model

import (
	"image"

	"github.com/soocke/mystic-booth/domain/strip"
)

// BackgroundPresets are the swatches offered in the editor.
var BackgroundPresets = []string{"#1a1625", "#2e1065", "#0c4a6e", "#78350f", "#fef3c7", "#ffffff", "#000000"}

// StickerGap separates stacked stickers along the strip margins.
const StickerGap = 8

// PlacedSticker is a sticker chosen in the editor.
type PlacedSticker struct {
	Name  string
	Image image.Image
}

// EditorModel holds the strip decoration being edited. Every change marks the
// model dirty so the presenter recomposes once per tick.
type EditorModel struct {
	cfg      strip.Config
	stickers []PlacedSticker
	frames   int
	dirty    bool
}

// NewEditorModel starts from cfg. Stickers in cfg are kept at their own
// positions and are not listed for removal.
func NewEditorModel(cfg strip.Config) *EditorModel {
	return &EditorModel{cfg: cfg.Normalized(), frames: 1, dirty: true}
}

// SetFrames records how many shots the strip holds so stickers can wrap
// within its height.
func (m *EditorModel) SetFrames(n int) {
	if n < 1 {
		n = 1
	}
	if n != m.frames {
		m.frames = n
		m.dirty = true
	}
}

// SetBackground parses hex and applies it.
func (m *EditorModel) SetBackground(hex string) error {
	c, err := strip.ParseHexColor(hex)
	if err != nil {
		return err
	}
	if c != m.cfg.Background {
		m.cfg.Background = c
		m.dirty = true
	}
	return nil
}

// Background returns the current background as hex.
func (m *EditorModel) Background() string { return strip.HexColor(m.cfg.Background) }

// SetCaption normalizes and applies caption.
func (m *EditorModel) SetCaption(caption string) {
	c := strip.NormalizeCaption(caption)
	if c != m.cfg.Caption {
		m.cfg.Caption = c
		m.dirty = true
	}
}

// Caption returns the normalized caption.
func (m *EditorModel) Caption() string { return m.cfg.Caption }

// AddSticker appends img and returns its index. A nil image is ignored.
func (m *EditorModel) AddSticker(name string, img image.Image) int {
	if img == nil {
		return -1
	}
	m.stickers = append(m.stickers, PlacedSticker{Name: name, Image: img})
	m.dirty = true
	return len(m.stickers) - 1
}

// RemoveSticker drops the sticker at index i.
func (m *EditorModel) RemoveSticker(i int) bool {
	if i < 0 || i >= len(m.stickers) {
		return false
	}
	m.stickers = append(m.stickers[:i], m.stickers[i+1:]...)
	m.dirty = true
	return true
}

// Stickers returns the chosen stickers in placement order.
func (m *EditorModel) Stickers() []PlacedSticker {
	return append([]PlacedSticker(nil), m.stickers...)
}

// Config returns the strip config to compose. Stickers alternate between the
// right and left margins, top to bottom, wrapping when the strip is full.
func (m *EditorModel) Config() strip.Config {
	cfg := m.cfg
	cfg.Stickers = append([]strip.Sticker(nil), m.cfg.Stickers...)
	w, h := strip.Size(m.frames, cfg)
	y := 4
	for i, st := range m.stickers {
		b := st.Image.Bounds()
		if i%2 == 0 && i > 0 {
			y += b.Dy() + StickerGap
		}
		if y+b.Dy() > h {
			y = 4
		}
		x := w - b.Dx() - 4
		if i%2 == 1 {
			x = 4
		}
		cfg.Stickers = append(cfg.Stickers, strip.Sticker{Image: st.Image, At: image.Pt(x, y)})
	}
	return cfg
}

// Dirty reports whether the strip needs recomposing and clears the flag.
func (m *EditorModel) Dirty() bool {
	d := m.dirty
	m.dirty = false
	return d
}

// Touch forces the next Dirty call to report true.
func (m *EditorModel) Touch() { m.dirty = true }
