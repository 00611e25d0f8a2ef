package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"code-mentor/api/internal/capture"
	"code-mentor/api/internal/hint"
	"code-mentor/api/internal/llm"
	"code-mentor/api/internal/store"
)

type HintRequest struct {
	SessionID string `json:"session_id"`
	LLMName   string `json:"llm_name"`
	hint.Request
}

// Hint всегда отвечает 200 с HintResponse: ошибки генерации лежат в поле error.
func (h *Handle) Hint(w http.ResponseWriter, r *http.Request) {
	var req HintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		http.Error(w, "engine error: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.CaptureData) == 0 && req.SessionID != "" {
		if m, ok := h.sessions.Get(req.SessionID); ok {
			// свежий снимок на момент отправки решения; неудача не мешает подсказке
			m.CaptureNow(r.Context(), h.targetID, capture.LabelSubmission)
			for _, rec := range m.GetRecentCaptures(hint.MaxCaptures) {
				req.CaptureData = append(req.CaptureData, rec.ImageData)
			}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 70*time.Second)
	defer cancel()

	codeHash := store.CodeHash(req.Request)
	if cached, ok := h.cached(ctx, engine, codeHash); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp := h.hints.WithEngine(engine).Generate(ctx, req.Request)
	if resp.Error == "" {
		h.remember(ctx, req, engine, codeHash, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handle) cached(ctx context.Context, engine llm.Engine, codeHash string) (hint.Response, bool) {
	if h.store == nil || h.cacheTTL <= 0 || engine.CheckConfig() != nil {
		return hint.Response{}, false
	}
	resp, err := h.store.FindFresh(ctx, codeHash, engine.Name(), engine.GetModel(), h.cacheTTL)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Warn("hint cache lookup failed", zap.Error(err))
		}
		return hint.Response{}, false
	}
	h.log.Debug("hint served from cache", zap.String("hash", codeHash))
	return resp, true
}

// remember пишет историю и шлёт уведомление; сбои здесь не влияют на ответ.
func (h *Handle) remember(ctx context.Context, req HintRequest, engine llm.Engine, codeHash string, resp hint.Response) {
	if h.store != nil {
		err := h.store.Insert(ctx, store.HintRow{
			SessionID: req.SessionID,
			CodeHash:  codeHash,
			Problem:   req.Problem.Name,
			Language:  req.Language,
			Engine:    engine.Name(),
			Model:     engine.GetModel(),
			Response:  resp,
		})
		if err != nil {
			h.log.Warn("hint history insert failed", zap.Error(err))
		}
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyHint(ctx, req.Problem.Name, resp); err != nil {
			h.log.Warn("telegram notify failed", zap.Error(err))
		}
	}
}

func (h *Handle) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "hint history is disabled (no DATABASE_URL)", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "bad limit: "+err.Error(), http.StatusBadRequest)
			return
		}
		limit = n
	}
	rows, err := h.store.Recent(r.Context(), sessionID, limit)
	if err != nil {
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}
