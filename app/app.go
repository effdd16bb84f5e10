// Package app hosts the Tk booth window.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/mystic-booth/config"
	"github.com/soocke/mystic-booth/debug"
	"github.com/soocke/mystic-booth/ui/presenter"
	"github.com/soocke/mystic-booth/ui/theme"
	"github.com/soocke/mystic-booth/ui/view"
)

const (
	tick             = 50 * time.Millisecond
	memLogInterval   = 10 * time.Second
	defaultWinWidth  = 980
	defaultWinHeight = 640
)

type app struct {
	title   string
	width   int
	height  int
	logger  *slog.Logger
	c       *AppContainer
	afterID string
	cancel  context.CancelFunc
}

// NewApp wires the container. Start builds the window and blocks until exit.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, cfgPath, logger)
	if err != nil {
		return nil, err
	}
	return &app{title: title, width: defaultWinWidth, height: defaultWinHeight, logger: logger, c: c}, nil
}

func (a *app) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if a.c.Config.Debug {
		debug.StartMemLogger(ctx, memLogInterval, a.logger)
	}

	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.width, a.height))
	theme.InitStyles()

	bp, cp, ep := a.c.BoothPresenter, a.c.CapturePresenter, a.c.EditorPresenter
	cfg := a.c.Config
	a.c.RootView.Build(cfg.SessionConfig(), a.c.Editor.Caption(), a.c.Editor.Background(),
		view.BoothHandlers{
			OnStart:        bp.Start,
			OnAccept:       bp.Accept,
			OnRetake:       bp.Retake,
			OnUpload:       bp.Upload,
			OnToggleFacing: cp.ToggleFacing,
			OnTimer:        bp.SetTimer,
			OnAuto:         bp.SetAuto,
			OnExit:         a.exitHandler,
		},
		view.EditorHandlers{
			OnCaption:       ep.SetCaption,
			OnBackground:    ep.SetBackground,
			OnAddSticker:    ep.AddSticker,
			OnUploadSticker: ep.UploadSticker,
			OnRemoveSticker: ep.RemoveSticker,
			OnSave:          func() { _, _ = ep.Save() },
			OnNewSession: func() {
				ep.Clear()
				bp.Restart()
			},
		},
	)
	a.c.Loop = presenter.NewLoop(bp, cp, ep, a.scheduleUpdate)
	cp.Enable()
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.c.Close()
	Destroy(App)
}

func (a *app) update() {
	defer func() {
		if r := recover(); r != nil && a.logger != nil {
			a.logger.Error("ui update panic", "error", r)
		}
	}()
	a.c.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
