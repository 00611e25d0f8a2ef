package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"code-mentor/api/internal/capture"
	"code-mentor/api/internal/hint"
	"code-mentor/api/internal/llm"
	"code-mentor/api/internal/store"
)

// HintStore - история и кэш подсказок (Postgres). nil - без истории.
type HintStore interface {
	Insert(ctx context.Context, row store.HintRow) error
	FindFresh(ctx context.Context, codeHash, engine, model string, maxAge time.Duration) (hint.Response, error)
	Recent(ctx context.Context, sessionID string, limit int) ([]store.HintRow, error)
}

type Notifier interface {
	NotifyHint(ctx context.Context, problem string, resp hint.Response) error
}

type Deps struct {
	Sessions *capture.Registry
	Engines  *llm.Engines
	Hints    *hint.Service

	Store    HintStore
	Notifier Notifier
	CacheTTL time.Duration

	TargetID string
	Interval time.Duration

	Metrics http.Handler
	Logger  *zap.Logger
}

type Handle struct {
	sessions *capture.Registry
	engs     *llm.Engines
	hints    *hint.Service

	store    HintStore
	notifier Notifier
	cacheTTL time.Duration

	targetID string
	interval time.Duration

	metrics http.Handler
	log     *zap.Logger
}

func New(d Deps) *Handle {
	h := &Handle{
		sessions: d.Sessions,
		engs:     d.Engines,
		hints:    d.Hints,
		store:    d.Store,
		notifier: d.Notifier,
		cacheTTL: d.CacheTTL,
		targetID: d.TargetID,
		interval: d.Interval,
		metrics:  d.Metrics,
		log:      d.Logger,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.targetID == "" {
		h.targetID = "code-editor"
	}
	if h.interval <= 0 {
		h.interval = capture.DefaultInterval
	}
	return h
}

func (h *Handle) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Delete("/sessions/{sessionID}", h.DeleteSession)

		r.Post("/capture/start", h.StartCapture)
		r.Post("/capture/stop", h.StopCapture)
		r.Post("/capture/now", h.CaptureNow)
		r.Get("/capture", h.ListCaptures)
		r.Delete("/capture", h.ClearCaptures)

		r.Post("/hint", h.Hint)
		r.Get("/hints/history", h.History)
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
