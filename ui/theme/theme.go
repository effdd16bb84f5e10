package theme

// Palette and widget styles for the booth window. The booth is dark by
// default; the light palette is kept for bright venues.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	ColorNight     = "#1a1625" // app background, also the default strip color
	ColorSurface   = "#241c33"
	ColorBorder    = "#3b2f52"
	ColorViolet    = "#2e1065"
	ColorVioletHi  = "#581c87"
	ColorGold      = "#fbbf24"
	ColorText      = "#f5e6ff"
	ColorTextMuted = "#a78bfa"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Accent    string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current mode.
func CurrentPalette() PaletteSnapshot {
	if !darkMode {
		return PaletteSnapshot{
			AppBg:     "#faf5ff",
			Surface:   "#ffffff",
			Border:    "#ddd6fe",
			Primary:   ColorVioletHi,
			Accent:    "#b45309",
			Text:      ColorViolet,
			TextMuted: "#7c3aed",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorNight,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorVioletHi,
		Accent:    ColorGold,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

const (
	StylePrimaryButton = "primary.TButton"
	StyleAccentLabel   = "accent.TLabel"
)

var darkMode = true

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles() }

// SetDark switches mode and reapplies styles. Returns the new mode.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles()
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles() {
	p := CurrentPalette()
	if darkMode {
		_ = ActivateTheme("azure dark")
	} else {
		_ = ActivateTheme("azure light")
	}
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground(p.Text),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleAccentLabel,
		Foreground(p.Accent),
		Background(p.Surface),
		Padding("2p 1p"),
	)
}
