package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/mystic-booth/assets"
	"github.com/soocke/mystic-booth/domain/export"
	"github.com/soocke/mystic-booth/domain/raster"
	"github.com/soocke/mystic-booth/domain/strip"
	"github.com/soocke/mystic-booth/ui/images"
	"github.com/soocke/mystic-booth/ui/model"
)

const (
	stripPreviewMaxW = 300
	stripPreviewMaxH = 560
	saveTimeout      = 10 * time.Second

	// Uploaded stickers are scaled down to fit this box.
	customStickerMax = 96
)

// ErrNoStrip is returned by Save before any strip was composed.
var ErrNoStrip = errors.New("no strip composed yet")

// StripComposer composes accepted shots into a strip.
type StripComposer interface {
	Compose(shots []*raster.Source, cfg strip.Config) (*strip.Strip, error)
}

// StripSaver persists a composed strip.
type StripSaver interface {
	Save(ctx context.Context, s *strip.Strip) (export.Result, error)
}

// EditorView shows the composed strip and the decoration controls.
type EditorView interface {
	ShowStrip(png []byte)
	SetEditorStatus(text string)
	SetStickers(names []string)
}

type loadedSticker struct {
	name string
	img  image.Image
	err  error
}

// EditorPresenter recomposes the strip whenever the decoration changes and
// saves it on request. All methods run on the UI thread.
type EditorPresenter struct {
	composer StripComposer
	saver    StripSaver
	view     EditorView
	model    *model.EditorModel
	logger   *slog.Logger

	shots []*raster.Source
	strip *strip.Strip

	mu       sync.Mutex
	uploads  []loadedSticker
	inFlight sync.WaitGroup
}

func NewEditorPresenter(composer StripComposer, saver StripSaver, view EditorView, m *model.EditorModel, logger *slog.Logger) *EditorPresenter {
	return &EditorPresenter{composer: composer, saver: saver, view: view, model: m, logger: logger}
}

// Load installs a finished session's shots. The presenter does not own them.
func (p *EditorPresenter) Load(shots []*raster.Source) {
	if p == nil || p.model == nil {
		return
	}
	p.shots = append([]*raster.Source(nil), shots...)
	p.strip = nil
	p.model.SetFrames(len(shots))
	p.model.Touch()
}

// Clear forgets the loaded shots.
func (p *EditorPresenter) Clear() {
	if p == nil {
		return
	}
	p.shots = nil
	p.strip = nil
}

func (p *EditorPresenter) SetCaption(caption string) {
	if p != nil && p.model != nil {
		p.model.SetCaption(caption)
	}
}

func (p *EditorPresenter) SetBackground(hex string) {
	if p == nil || p.model == nil {
		return
	}
	if err := p.model.SetBackground(hex); err != nil && p.view != nil {
		p.view.SetEditorStatus("Unknown color " + hex)
	}
}

// AddSticker places a sticker from the built-in pack.
func (p *EditorPresenter) AddSticker(id string) {
	if p == nil || p.model == nil {
		return
	}
	img, err := assets.Sticker(id)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("sticker unavailable", "id", id, "error", err)
		}
		if p.view != nil {
			p.view.SetEditorStatus("Unknown sticker " + id)
		}
		return
	}
	p.model.AddSticker(id, img)
	p.showStickers()
}

// UploadSticker decodes path off the UI thread. The sticker is placed on the
// next Tick.
func (p *EditorPresenter) UploadSticker(path string) {
	if p == nil || p.model == nil {
		return
	}
	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()
		img, err := decodeSticker(path)
		p.mu.Lock()
		p.uploads = append(p.uploads, loadedSticker{name: filepath.Base(path), img: img, err: err})
		p.mu.Unlock()
	}()
}

func decodeSticker(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", raster.ErrInvalidUpload, err)
	}
	return images.ScaleToFit(img, customStickerMax, customStickerMax), nil
}

// RemoveSticker drops the i-th placed sticker.
func (p *EditorPresenter) RemoveSticker(i int) {
	if p != nil && p.model != nil && p.model.RemoveSticker(i) {
		p.showStickers()
	}
}

func (p *EditorPresenter) showStickers() {
	if p.view == nil {
		return
	}
	list := p.model.Stickers()
	names := make([]string, len(list))
	for i, st := range list {
		names[i] = st.Name
	}
	p.view.SetStickers(names)
}

func (p *EditorPresenter) applyUploads() {
	p.mu.Lock()
	pending := p.uploads
	p.uploads = nil
	p.mu.Unlock()
	for _, up := range pending {
		if up.err != nil {
			if p.logger != nil {
				p.logger.Warn("sticker upload", "file", up.name, "error", up.err)
			}
			if p.view != nil {
				p.view.SetEditorStatus("That file is not an image")
			}
			continue
		}
		p.model.AddSticker(up.name, up.img)
		p.showStickers()
	}
}

// Tick recomposes when the model changed since the last tick.
func (p *EditorPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil {
		return
	}
	p.applyUploads()
	if p.composer == nil || p.view == nil || len(p.shots) == 0 {
		return
	}
	if !p.model.Dirty() {
		return
	}
	_ = p.recompose()
}

// recompose renders the current decoration. On failure the previous strip is
// dropped and the model stays dirty so the next tick retries.
func (p *EditorPresenter) recompose() error {
	s, err := p.composer.Compose(p.shots, p.model.Config())
	if err != nil {
		p.strip = nil
		p.model.Touch()
		if p.logger != nil {
			p.logger.Error("compose strip", "error", err)
		}
		p.view.SetEditorStatus("Could not compose the strip, try again")
		return err
	}
	p.strip = s
	if s.Image != nil {
		p.view.ShowStrip(images.EncodePNG(images.ScaleToFit(s.Image, stripPreviewMaxW, stripPreviewMaxH)))
	}
	p.view.SetEditorStatus("")
	return nil
}

// Save writes the strip for the current decoration, composing it first when
// an edit has not been rendered yet.
func (p *EditorPresenter) Save() (export.Result, error) {
	if p == nil || p.saver == nil {
		return export.Result{}, ErrNoStrip
	}
	if p.model != nil && p.composer != nil && p.view != nil && len(p.shots) > 0 && p.model.Dirty() {
		if err := p.recompose(); err != nil {
			return export.Result{}, err
		}
	}
	if p.strip == nil {
		return export.Result{}, ErrNoStrip
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	res, err := p.saver.Save(ctx, p.strip)
	if p.view != nil {
		if err != nil {
			p.view.SetEditorStatus("Save failed, try again")
		} else {
			p.view.SetEditorStatus("Saved " + filepath.Base(res.Path))
		}
	}
	return res, err
}
