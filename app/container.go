package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/mystic-booth/booth"
	"github.com/soocke/mystic-booth/config"
	"github.com/soocke/mystic-booth/ui/images"
	"github.com/soocke/mystic-booth/ui/model"
	"github.com/soocke/mystic-booth/ui/presenter"
	"github.com/soocke/mystic-booth/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Services   *booth.Services

	Capture *model.CaptureModel
	Editor  *model.EditorModel
	Thumbs  *images.ThumbnailCache

	RootView *view.RootView

	BoothPresenter   *presenter.BoothPresenter
	CapturePresenter *presenter.CapturePresenter
	EditorPresenter  *presenter.EditorPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. The view is built later by the
// app on the Tk thread; presenters already hold it.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	svc, err := booth.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire booth services: %w", err)
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger, Services: svc}
	c.Capture = &model.CaptureModel{}
	c.Thumbs, err = images.NewThumbnailCache(cfg.ThumbnailCacheSize)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}
	c.Editor = model.NewEditorModel(cfg.StripConfig())

	c.RootView = view.NewRootView(logger)
	c.BoothPresenter = presenter.NewBoothPresenter(svc.Session, c.RootView, c.Thumbs, logger)
	c.CapturePresenter = presenter.NewCapturePresenter(c.Capture, svc.Feed, svc.Capturer, c.RootView)
	c.EditorPresenter = presenter.NewEditorPresenter(svc.Composer, svc.Exporter, c.RootView, c.Editor, logger)
	c.BoothPresenter.OnCompleted = c.EditorPresenter.Load
	svc.Session.AddListener(c.BoothPresenter.OnEvent)
	return c, nil
}

// Close releases services. Safe on a partially built container.
func (c *AppContainer) Close() {
	if c == nil || c.Services == nil {
		return
	}
	c.CapturePresenter.Disable()
	c.EditorPresenter.Clear()
	if err := c.Services.Close(); err != nil && c.Logger != nil {
		c.Logger.Error("close services", "error", err)
	}
}
