package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/mystic-booth/domain/raster"
	"github.com/soocke/mystic-booth/domain/session"
	"github.com/soocke/mystic-booth/ui/images"
	"github.com/soocke/mystic-booth/ui/model"
)

const (
	reviewMaxW = 400
	reviewMaxH = 300
)

// BoothSession is the subset of session.Session the booth drives.
type BoothSession interface {
	Begin() error
	StartShot() error
	Accept() error
	Retake() error
	Upload(src *raster.Source) error
	Reconfigure(timerSeconds int, autoMode bool) error
	Restart() error
	Snapshot() session.Snapshot
}

// BoothView shows the capture phase.
type BoothView interface {
	SetStatus(text string)
	SetCountdown(text string)
	SetProgress(text string)
	ShowReview(png []byte)
	HideReview()
	SetControls(state session.State, auto bool)
}

// BoothPresenter reflects session events in the booth view. Events arrive on
// the session goroutine and are queued until the next UI Tick.
type BoothPresenter struct {
	sess     BoothSession
	view     BoothView
	status   *model.StatusModel
	progress *model.ProgressModel
	thumbs   *images.ThumbnailCache
	logger   *slog.Logger

	// OnCompleted receives the accepted shots, in order, on the UI thread.
	OnCompleted func(shots []*raster.Source)

	mu       sync.Mutex
	pending  []session.Event
	decoded  []decodedUpload
	decoding sync.WaitGroup
}

type decodedUpload struct {
	path string
	src  *raster.Source
	err  error
}

func NewBoothPresenter(sess BoothSession, view BoothView, thumbs *images.ThumbnailCache, logger *slog.Logger) *BoothPresenter {
	return &BoothPresenter{
		sess:     sess,
		view:     view,
		status:   &model.StatusModel{},
		progress: &model.ProgressModel{},
		thumbs:   thumbs,
		logger:   logger,
	}
}

// OnEvent is registered as a session listener.
func (p *BoothPresenter) OnEvent(ev session.Event) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, ev)
	p.mu.Unlock()
}

// Tick drains queued events into the view.
func (p *BoothPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	events := p.pending
	p.pending = nil
	uploads := p.decoded
	p.decoded = nil
	p.mu.Unlock()
	p.applyUploads(uploads)
	if len(events) == 0 {
		return
	}
	snap := p.sess.Snapshot()
	p.status.SetMaxShots(snap.Config.MaxShots)
	for _, ev := range events {
		p.status.Apply(ev)
		switch ev.Kind {
		case session.EventTransition:
			if ev.State == session.StateReviewing && ev.Pending != nil {
				p.showReview(ev.Pending)
			} else if ev.Prev == session.StateReviewing {
				p.view.HideReview()
			}
		case session.EventCaptureFailed:
			if p.logger != nil {
				p.logger.Warn("capture failed", "attempt", ev.Attempt, "error", ev.Err)
			}
		case session.EventCompleted:
			if p.OnCompleted != nil {
				p.OnCompleted(ev.Shots)
			}
		}
	}
	if p.progress.Update(snap) {
		p.view.SetProgress(p.progress.String())
	}
	p.view.SetStatus(p.status.Status())
	p.view.SetCountdown(p.status.Countdown())
	p.view.SetControls(p.status.State(), snap.Config.AutoMode)
}

func (p *BoothPresenter) showReview(src *raster.Source) {
	var png []byte
	err := src.Read(func(img *image.RGBA) error {
		png = p.thumbs.PNG(src.ID(), img, reviewMaxW, reviewMaxH)
		return nil
	})
	if err != nil {
		// Retaken before the UI caught up.
		return
	}
	p.view.ShowReview(png)
}

func (p *BoothPresenter) do(op string, fn func() error) {
	if p == nil || p.sess == nil {
		return
	}
	if err := fn(); err != nil && p.logger != nil {
		p.logger.Warn("booth action rejected", "action", op, "error", err)
	}
}

// Start enters the booth, or starts the next shot when already inside.
func (p *BoothPresenter) Start() {
	if p == nil || p.sess == nil {
		return
	}
	if p.sess.Snapshot().State == session.StateIdle {
		p.do("begin", p.sess.Begin)
		return
	}
	p.do("start_shot", p.sess.StartShot)
}

func (p *BoothPresenter) Accept() { p.do("accept", func() error { return p.sess.Accept() }) }
func (p *BoothPresenter) Retake() { p.do("retake", func() error { return p.sess.Retake() }) }

// Restart discards the session and enters the booth again.
func (p *BoothPresenter) Restart() {
	if p == nil || p.sess == nil {
		return
	}
	p.thumbs.Purge()
	p.do("restart", p.sess.Restart)
}

// Upload decodes path off the UI thread. The next Tick hands it to the
// session as the shot under review.
func (p *BoothPresenter) Upload(path string) {
	if p == nil || p.sess == nil || path == "" {
		return
	}
	p.decoding.Add(1)
	go func() {
		defer p.decoding.Done()
		src, err := raster.DecodeFile(path)
		p.mu.Lock()
		p.decoded = append(p.decoded, decodedUpload{path: path, src: src, err: err})
		p.mu.Unlock()
	}()
}

// applyUploads hands decoded uploads to the session on the UI thread.
func (p *BoothPresenter) applyUploads(uploads []decodedUpload) {
	for _, up := range uploads {
		if up.err != nil {
			if p.logger != nil {
				p.logger.Warn("upload rejected", "path", up.path, "error", up.err)
			}
			p.view.SetStatus("That file is not a photo")
			continue
		}
		if err := p.sess.Upload(up.src); err != nil {
			up.src.Release()
			if p.logger != nil {
				p.logger.Warn("upload refused", "error", err)
			}
		}
	}
}

// SetTimer changes the countdown length between shots.
func (p *BoothPresenter) SetTimer(seconds int) {
	if p == nil || p.sess == nil {
		return
	}
	cfg := p.sess.Snapshot().Config
	p.do("reconfigure", func() error { return p.sess.Reconfigure(seconds, cfg.AutoMode) })
}

// SetAuto toggles automatic shooting between shots.
func (p *BoothPresenter) SetAuto(auto bool) {
	if p == nil || p.sess == nil {
		return
	}
	cfg := p.sess.Snapshot().Config
	p.do("reconfigure", func() error { return p.sess.Reconfigure(cfg.TimerSeconds, auto) })
}
