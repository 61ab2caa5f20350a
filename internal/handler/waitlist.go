package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/vocoweb/gateway/internal/middleware"
	"github.com/vocoweb/gateway/internal/proxy"
)

// WaitlistHandler serves public waitlist signups and the signup counter.
type WaitlistHandler struct {
	proxy  *proxy.Client
	logger *slog.Logger
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(p *proxy.Client, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{proxy: p, logger: logger}
}

// Join handles POST /api/waitlist.
//
// The body is forwarded unmodified; validation belongs to the backend.
// Client network metadata rides along as headers so the backend can
// rate limit and log abuse against the real client, not the gateway.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	hdr := http.Header{}
	hdr.Set("X-Forwarded-For", middleware.ClientIP(r))
	if ua := r.UserAgent(); ua != "" {
		hdr.Set("User-Agent", ua)
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method:  http.MethodPost,
		Path:    "/api/waitlist",
		Route:   "/api/waitlist",
		RawBody: body,
		Header:  hdr,
	})
	relay(w, res, err, "Failed to join waitlist. Please try again.")
}

// countFallback is the degraded count payload on backend failure.
type countFallback struct {
	Count int    `json:"count"`
	Error string `json:"error"`
}

// Count handles GET /api/waitlist.
//
// Failures return a zero count alongside the error so the landing page
// can still render its counter.
func (h *WaitlistHandler) Count(w http.ResponseWriter, r *http.Request) {
	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodGet,
		Path:   "/api/waitlist/count",
		Route:  "/api/waitlist",
	})
	if err != nil {
		h.logger.Warn("waitlist count failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, countFallback{Count: 0, Error: "Failed to fetch count"})
		return
	}
	if !res.OK() {
		writeJSON(w, res.Status, countFallback{Count: 0, Error: proxy.ErrorMessage(res.Body, "Failed to fetch count")})
		return
	}

	writeRaw(w, http.StatusOK, res.Body)
}
