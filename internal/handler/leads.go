package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/session"
)

// LeadsHandler serves the lead inbox for the dashboard.
type LeadsHandler struct {
	proxy    *proxy.Client
	sessions session.Provider
	logger   *slog.Logger
}

// NewLeadsHandler creates a new LeadsHandler.
func NewLeadsHandler(p *proxy.Client, sessions session.Provider, logger *slog.Logger) *LeadsHandler {
	return &LeadsHandler{proxy: p, sessions: sessions, logger: logger}
}

// List handles GET /api/leads.
// Query parameters (status filter, website filter) pass through untouched.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r, h.sessions)
	if !ok {
		return
	}

	path := "/api/dashboard/leads"
	if q := r.URL.RawQuery; q != "" {
		path += "?" + q
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodGet,
		Path:   path,
		Route:  "/api/leads",
		Token:  token,
	})
	relay(w, res, err, "Failed to load leads")
}

// leadUpdateRequest is the inbound status change payload.
type leadUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/leads/{id}.
func (h *LeadsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r, h.sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req leadUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "status is required"})
		return
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodPatch,
		Path:   "/api/leads/" + id,
		Route:  "/api/leads/{id}",
		Token:  token,
		Body:   req,
	})
	relay(w, res, err, "Failed to update lead")
}
