package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocoweb/gateway/internal/proxy"
)

// notPublished is the degraded status payload. Returning it instead of an
// error keeps polling UIs on a single render path.
type notPublished struct {
	Published bool `json:"published"`
}

// PublishHandler serves publish status polling and republishing.
// Both routes are unauthenticated pass-throughs: published sites are
// public and the backend enforces ownership on mutation.
type PublishHandler struct {
	proxy  *proxy.Client
	logger *slog.Logger
}

// NewPublishHandler creates a new PublishHandler.
func NewPublishHandler(p *proxy.Client, logger *slog.Logger) *PublishHandler {
	return &PublishHandler{proxy: p, logger: logger}
}

// Status handles GET /api/publish/{id}/status.
//
// Any failure, transport or backend, degrades to {"published": false}
// with status 200. This route never returns 500.
func (h *PublishHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodGet,
		Path:   "/api/publish/" + id + "/status",
		Route:  "/api/publish/{id}/status",
	})
	if err != nil {
		h.logger.Warn("publish status check failed", "website_id", id, "error", err)
		writeJSON(w, http.StatusOK, notPublished{})
		return
	}
	if !res.OK() {
		h.logger.Warn("publish status check rejected", "website_id", id, "status", res.Status)
		writeJSON(w, http.StatusOK, notPublished{})
		return
	}

	writeRaw(w, http.StatusOK, res.Body)
}

// Republish handles POST /api/republish/{id}.
func (h *PublishHandler) Republish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodPost,
		Path:   "/api/republish/" + id,
		Route:  "/api/republish/{id}",
	})
	relay(w, res, err, "Republishing failed. Please try again.")
}
