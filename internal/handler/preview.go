package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/session"
)

// PreviewHandler serves authenticated website previews.
type PreviewHandler struct {
	proxy    *proxy.Client
	sessions session.Provider
	logger   *slog.Logger
}

// NewPreviewHandler creates a new PreviewHandler.
func NewPreviewHandler(p *proxy.Client, sessions session.Provider, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{proxy: p, sessions: sessions, logger: logger}
}

// Get handles GET /api/preview/{id}.
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r, h.sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "website id is required"})
		return
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodGet,
		Path:   "/api/preview/" + id,
		Route:  "/api/preview/{id}",
		Token:  token,
	})
	relay(w, res, err, "Failed to load preview")
}
