package handle

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"code-mentor/api/internal/capture"
)

type StartRequest struct {
	SessionID  string `json:"session_id"`
	TargetID   string `json:"target_id"`
	IntervalMs int64  `json:"interval_ms"`
}

type CaptureNowRequest struct {
	SessionID   string `json:"session_id"`
	TargetID    string `json:"target_id"`
	Description string `json:"description"`
}

type CapturesResponse struct {
	Count    int              `json:"count"`
	Captures []capture.Record `json:"captures"`
}

func (h *Handle) CreateSession(w http.ResponseWriter, _ *http.Request) {
	id, _ := h.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (h *Handle) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "sessionID")) {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartCapture заводит сессию при первом обращении: клиент может прийти со своим id.
func (h *Handle) StartCapture(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	target := req.TargetID
	if target == "" {
		target = h.targetID
	}
	interval := h.interval
	if req.IntervalMs > 0 {
		interval = time.Duration(req.IntervalMs) * time.Millisecond
	}

	m := h.sessions.GetOrCreate(req.SessionID)
	started := m.Start(target, interval)
	writeJSON(w, http.StatusOK, map[string]bool{"active": m.Active(), "started": started})
}

func (h *Handle) StopCapture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	m, ok := h.sessions.Get(req.SessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	stopped := m.Stop()
	writeJSON(w, http.StatusOK, map[string]bool{"active": m.Active(), "stopped": stopped})
}

func (h *Handle) CaptureNow(w http.ResponseWriter, r *http.Request) {
	var req CaptureNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	m, ok := h.sessions.Get(req.SessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if req.TargetID == "" {
		req.TargetID = h.targetID
	}
	if req.Description == "" {
		req.Description = "Manual capture"
	}
	added := m.CaptureNow(r.Context(), req.TargetID, req.Description)
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "count": m.GetCaptureCount()})
}

// ListCaptures: ?count=N - последние N, без параметра - весь буфер.
func (h *Handle) ListCaptures(w http.ResponseWriter, r *http.Request) {
	m, ok := h.sessions.Get(r.URL.Query().Get("session_id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	var recs []capture.Record
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "bad count: "+err.Error(), http.StatusBadRequest)
			return
		}
		recs = m.GetRecentCaptures(n)
	} else {
		recs = m.GetCaptures()
	}
	writeJSON(w, http.StatusOK, CapturesResponse{Count: m.GetCaptureCount(), Captures: recs})
}

func (h *Handle) ClearCaptures(w http.ResponseWriter, r *http.Request) {
	m, ok := h.sessions.Get(r.URL.Query().Get("session_id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	m.ClearCaptures()
	writeJSON(w, http.StatusOK, map[string]int{"count": m.GetCaptureCount()})
}
