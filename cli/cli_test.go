package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soocke/mystic-booth/config"
)

func writeImage(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// writeConfig points output and gallery into dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "booth.toml")
	body := fmt.Sprintf("output_dir = %q\ngallery_path = %q\n",
		filepath.ToSlash(filepath.Join(dir, "strips")),
		filepath.ToSlash(filepath.Join(dir, "strips", "gallery.db")))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(Hooks{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestComposeThenGallery(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	var inputs []string
	for i, c := range []color.RGBA{{R: 0xff, A: 0xff}, {G: 0xff, A: 0xff}, {B: 0xff, A: 0xff}} {
		p := filepath.Join(dir, fmt.Sprintf("shot%d.png", i))
		writeImage(t, p, 80, 60, c)
		inputs = append(inputs, p)
	}
	sticker := filepath.Join(dir, "star.png")
	writeImage(t, sticker, 10, 10, color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff})

	args := append([]string{"--config", cfgPath, "compose", "--caption", "full moon", "--background", "#ffffff", "--sticker", sticker + "@5,5"}, inputs...)
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("compose: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Saved ") || !strings.Contains(out, "mystic-strip-") {
		t.Fatalf("unexpected output %q", out)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "strips", "mystic-strip-*.jpg"))
	if len(matches) != 1 {
		t.Fatalf("expected one strip, got %v", matches)
	}

	out, err = run(t, "--config", cfgPath, "gallery")
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	if !strings.Contains(out, "FULL MOON") || !strings.Contains(out, "#ffffff") || !strings.Contains(out, filepath.Base(matches[0])) {
		t.Fatalf("gallery output missing entry:\n%s", out)
	}
}

func TestCompose_RejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "--config", cfgPath, "compose", bad); err == nil {
		t.Fatal("expected error for non-image input")
	}
}

func TestGallery_Empty(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--config", writeConfig(t, dir), "gallery")
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	if !strings.Contains(out, "No strips yet") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "mystic-booth.toml")
	if _, err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, "--config", path, "config", "init"); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, err := run(t, "--config", path, "config", "init", "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	out, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "timer_seconds = 3") || !strings.Contains(out, "#1a1625") {
		t.Fatalf("unexpected config:\n%s", out)
	}
}

func TestConfigInit_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booth.json")
	if _, err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"timer_seconds": 3`) {
		t.Fatalf("unexpected json:\n%s", data)
	}
}

func TestParseSticker(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "s@1.png")
	writeImage(t, p, 4, 4, color.RGBA{A: 0xff})
	st, err := parseSticker(p + "@12, 34")
	if err != nil {
		t.Fatalf("parseSticker: %v", err)
	}
	if st.At != image.Pt(12, 34) || st.Image.Bounds().Dx() != 4 {
		t.Fatalf("sticker %+v", st)
	}
	for _, bad := range []string{"nopos.png", p + "@1", p + "@x,2", filepath.Join(dir, "missing.png") + "@1,2"} {
		if _, err := parseSticker(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestRoot_RunsBoothHook(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	var gotPath string
	cmd := NewRootCommand(Hooks{RunBooth: func(cfg *config.Config, path string, _ *slog.Logger) error {
		gotPath = path
		if cfg == nil {
			t.Fatal("config not loaded")
		}
		return nil
	}})
	cmd.SetArgs([]string{"--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotPath != cfgPath {
		t.Fatalf("path = %q", gotPath)
	}
}
