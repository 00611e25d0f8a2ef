package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"code-mentor/api/internal/capture"
	"code-mentor/api/internal/util"
)

type Config struct {
	PageURL    string // страница с редактором
	RemoteURL  string // ws://... уже запущенного Chrome; пусто - запускаем свой headless
	Quality    int    // JPEG 0..100
	Timeout    time.Duration
	Logger     *zap.Logger
	ViewWidth  int
	ViewHeight int
}

// Browser держит Chrome и одну вкладку, с которой снимаются элементы.
type Browser struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
}

func Open(ctx context.Context, cfg Config) (*Browser, error) {
	if cfg.PageURL == "" {
		return nil, errors.New("snapshot: page url is empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	b := &Browser{cfg: cfg}
	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("snapshot: launch: %w", err)
		}
		wsURL = u
		b.lnch = l
		cfg.Logger.Info("snapshot: launched local chrome", zap.String("url", wsURL))
	}

	b.browser = rod.New().ControlURL(wsURL)
	if err := b.browser.Connect(); err != nil {
		b.cleanupLauncher()
		return nil, fmt.Errorf("snapshot: connect: %w", err)
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: cfg.PageURL})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("snapshot: open page: %w", err)
	}
	if cfg.ViewWidth > 0 && cfg.ViewHeight > 0 {
		_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width: cfg.ViewWidth, Height: cfg.ViewHeight, DeviceScaleFactor: 1,
		})
	}
	if err := page.Timeout(cfg.Timeout).WaitLoad(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("snapshot: wait load: %w", err)
	}
	b.page = page
	return b, nil
}

// Snapshotter returns the capture-side view of the open page.
func (b *Browser) Snapshotter() *Snapshotter {
	return NewSnapshotter(b.page, b.cfg.Quality, b.cfg.Timeout, b.cfg.Logger)
}

func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	b.cleanupLauncher()
	return err
}

func (b *Browser) cleanupLauncher() {
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
}

// Snapshotter снимает DOM-элемент по id в JPEG и кладёт в data:URI.
type Snapshotter struct {
	page    *rod.Page
	quality int
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewSnapshotter(page *rod.Page, quality int, timeout time.Duration, log *zap.Logger) *Snapshotter {
	if quality <= 0 || quality > 100 {
		quality = 60
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Snapshotter{page: page, quality: quality, timeout: timeout, log: log, now: time.Now}
}

// Capture never fails loudly: any problem is logged and reported as ok=false.
func (s *Snapshotter) Capture(ctx context.Context, targetID, description string) (rec capture.Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("snapshot: panic", zap.String("target", targetID), zap.Any("panic", r))
			rec, ok = capture.Record{}, false
		}
	}()

	if s.page == nil {
		s.log.Warn("snapshot: no page", zap.String("target", targetID))
		return capture.Record{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p := s.page.Context(ctx)
	has, el, err := p.Has("#" + targetID)
	if err != nil {
		s.log.Warn("snapshot: lookup failed", zap.String("target", targetID), zap.Error(err))
		return capture.Record{}, false
	}
	if !has {
		s.log.Warn("snapshot: element not found", zap.String("target", targetID))
		return capture.Record{}, false
	}

	img, err := el.Screenshot(proto.PageCaptureScreenshotFormatJpeg, s.quality)
	if err != nil {
		s.log.Warn("snapshot: screenshot failed", zap.String("target", targetID), zap.Error(err))
		return capture.Record{}, false
	}

	return capture.Record{
		Timestamp:   s.now(),
		ImageData:   util.EncodeDataURL("image/jpeg", img),
		Description: description,
	}, true
}
