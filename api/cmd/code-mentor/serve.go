package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"code-mentor/api/internal/capture"
	"code-mentor/api/internal/handle"
	"code-mentor/api/internal/hint"
	"code-mentor/api/internal/httpserver"
	"code-mentor/api/internal/metrics"
	"code-mentor/api/internal/snapshot"
	"code-mentor/api/internal/store"
	"code-mentor/api/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, closeSnap := openSnapshotter(ctx)
	defer closeSnap()

	var sessions *capture.Registry
	m := metrics.New(func() float64 { return float64(sessions.Len()) })
	sessions = capture.NewRegistry(func() *capture.Manager {
		return capture.NewManager(snap,
			capture.WithLogger(logger.Named("capture")),
			capture.WithCaptureHook(m.CaptureRecorded))
	})
	defer sessions.Close()

	engines := newEngines(cfg)
	def, err := engines.GetEngine("")
	if err != nil {
		return err
	}
	hints := hint.NewService(def,
		hint.WithLogger(logger.Named("hint")),
		hint.WithOutcomeHook(func(o hint.Outcome) { m.HintOutcome(string(o)) }))

	deps := handle.Deps{
		Sessions: sessions,
		Engines:  engines,
		Hints:    hints,
		CacheTTL: cfg.HintCacheTTL,
		TargetID: cfg.CaptureTargetID,
		Interval: cfg.CaptureInterval,
		Metrics:  m.Handler(),
		Logger:   logger.Named("http"),
	}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := store.NewHintRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Store = repo
		logger.Info("hint history enabled", zap.Duration("cache_ttl", cfg.HintCacheTTL))
	}

	if cfg.TelegramBotToken != "" {
		n, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram disabled", zap.Error(err))
		} else {
			deps.Notifier = n
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, ":"+cfg.Port, handle.New(deps).Routes(), logger.Named("http"))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Int("sessions", sessions.Len()))
		return nil
	})
	return g.Wait()
}

// openSnapshotter поднимает headless Chrome, если задан CAPTURE_PAGE_URL.
// Без него снимки просто пропускаются.
func openSnapshotter(ctx context.Context) (capture.Snapshotter, func()) {
	skip := capture.SnapshotFunc(func(_ context.Context, targetID, desc string) (capture.Record, bool) {
		logger.Debug("capture disabled: CAPTURE_PAGE_URL is empty", zap.String("target", targetID), zap.String("label", desc))
		return capture.Record{}, false
	})
	if cfg.CapturePageURL == "" {
		return skip, func() {}
	}

	b, err := snapshot.Open(ctx, snapshot.Config{
		PageURL:   cfg.CapturePageURL,
		RemoteURL: cfg.BrowserURL,
		Quality:   cfg.CaptureQuality,
		Logger:    logger.Named("snapshot"),
	})
	if err != nil {
		logger.Error("browser unavailable, captures disabled", zap.Error(err))
		return skip, func() {}
	}
	return b.Snapshotter(), func() { _ = b.Close() }
}
