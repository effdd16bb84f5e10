package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/soocke/mystic-booth/domain/session"
	"github.com/soocke/mystic-booth/domain/strip"
)

// Config holds runtime configuration for the booth. It is read from a JSON or
// TOML file (chosen by extension) and may be overridden by command-line flags.
type Config struct {
	Debug     bool   `json:"debug" toml:"debug"`
	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`

	// Session
	TimerSeconds int    `json:"timer_seconds" toml:"timer_seconds"`
	AutoMode     bool   `json:"auto_mode" toml:"auto_mode"`
	MaxShots     int    `json:"max_shots" toml:"max_shots"`
	Facing       string `json:"facing" toml:"facing"`

	// Strip
	Background string `json:"background" toml:"background"`
	Caption    string `json:"caption" toml:"caption"`

	// Output
	OutputDir   string `json:"output_dir" toml:"output_dir"`
	GalleryPath string `json:"gallery_path" toml:"gallery_path"`
	JPEGQuality int    `json:"jpeg_quality" toml:"jpeg_quality"`

	ThumbnailCacheSize int `json:"thumbnail_cache_size" toml:"thumbnail_cache_size"`

	// Screen region used as the camera feed; zero width captures the whole screen.
	SelectionX int `json:"selection_x" toml:"selection_x"`
	SelectionY int `json:"selection_y" toml:"selection_y"`
	SelectionW int `json:"selection_w" toml:"selection_w"`
	SelectionH int `json:"selection_h" toml:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "auto",
		TimerSeconds:       3,
		MaxShots:           session.DefaultMaxShots,
		Facing:             "front",
		Background:         strip.HexColor(strip.DefaultBackground),
		OutputDir:          "strips",
		GalleryPath:        filepath.Join("strips", "gallery.db"),
		JPEGQuality:        strip.JPEGQuality,
		ThumbnailCacheSize: 32,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console", "auto":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = "auto"
	}
	if !session.ValidTimer(c.TimerSeconds) {
		c.TimerSeconds = 3
	}
	if c.MaxShots <= 0 || c.MaxShots > 8 {
		c.MaxShots = session.DefaultMaxShots
	}
	if c.Facing != "front" && c.Facing != "rear" {
		c.Facing = "front"
	}
	if bg, err := strip.ParseHexColor(c.Background); err != nil {
		c.Background = strip.HexColor(strip.DefaultBackground)
	} else {
		c.Background = strip.HexColor(bg)
	}
	c.Caption = strip.NormalizeCaption(c.Caption)
	if c.OutputDir == "" {
		c.OutputDir = "strips"
	}
	if c.GalleryPath == "" {
		c.GalleryPath = filepath.Join(c.OutputDir, "gallery.db")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = strip.JPEGQuality
	}
	if c.ThumbnailCacheSize <= 0 {
		c.ThumbnailCacheSize = 32
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// SessionConfig returns the capture session settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{MaxShots: c.MaxShots, TimerSeconds: c.TimerSeconds, AutoMode: c.AutoMode}
}

// StripConfig returns the strip decoration settings.
func (c *Config) StripConfig() strip.Config {
	cfg := strip.DefaultConfig()
	if bg, err := strip.ParseHexColor(c.Background); err == nil {
		cfg.Background = bg
	}
	cfg.Caption = c.Caption
	return cfg
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load attempts to read configuration from path. If the file does not exist it
// returns DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := Decode(data, isTOML(path), cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Decode reads data into cfg as TOML or JSON.
func Decode(data []byte, asTOML bool, cfg *Config) error {
	if asTOML {
		return toml.Unmarshal(data, cfg)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(cfg)
}

// Encode renders c as TOML or indented JSON.
func (c *Config) Encode(asTOML bool) ([]byte, error) {
	if asTOML {
		return toml.Marshal(c)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the configuration to path, in TOML when the extension is .toml
// and JSON otherwise.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	data, err := c.Encode(isTOML(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
