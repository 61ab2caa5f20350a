package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/session"
)

// emptyCredits is the degraded credits payload when the backend call fails.
var emptyCredits = json.RawMessage(`{"balance":0,"lifetime_earned":0,"lifetime_spent":0}`)

// DashboardHandler aggregates the websites and credits backend calls
// behind a single authenticated endpoint.
type DashboardHandler struct {
	proxy    *proxy.Client
	sessions session.Provider
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(p *proxy.Client, sessions session.Provider, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{proxy: p, sessions: sessions, logger: logger}
}

// dashboardResponse composes the two backend payloads.
type dashboardResponse struct {
	Websites json.RawMessage `json:"websites"`
	Credits  json.RawMessage `json:"credits"`
}

// Get handles GET /api/dashboard.
//
// One auth check, then two concurrent backend calls. Each call fails
// independently: a failed websites call yields an empty list without
// touching the credits result, and vice versa. The response is always 200.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r, h.sessions)
	if !ok {
		return
	}

	websites := json.RawMessage(`[]`)
	credits := emptyCredits

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		res, err := h.proxy.Do(r.Context(), proxy.Request{
			Method: http.MethodGet,
			Path:   "/api/websites",
			Route:  "/api/dashboard",
			Token:  token,
		})
		if err != nil {
			h.logger.Warn("dashboard websites call failed", "error", err)
			return
		}
		if !res.OK() {
			h.logger.Warn("dashboard websites call rejected", "status", res.Status)
			return
		}

		var payload struct {
			Websites json.RawMessage `json:"websites"`
		}
		if err := json.Unmarshal(res.Body, &payload); err != nil {
			return
		}
		if len(payload.Websites) == 0 || string(payload.Websites) == "null" {
			return
		}
		websites = payload.Websites
	}()

	go func() {
		defer wg.Done()

		res, err := h.proxy.Do(r.Context(), proxy.Request{
			Method: http.MethodGet,
			Path:   "/api/credits",
			Route:  "/api/dashboard",
			Token:  token,
		})
		if err != nil {
			h.logger.Warn("dashboard credits call failed", "error", err)
			return
		}
		if !res.OK() {
			h.logger.Warn("dashboard credits call rejected", "status", res.Status)
			return
		}
		credits = res.Body
	}()

	wg.Wait()

	writeJSON(w, http.StatusOK, dashboardResponse{Websites: websites, Credits: credits})
}
