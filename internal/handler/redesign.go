package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/session"
)

// Defaults applied when a generation request omits them.
const (
	defaultStyle    = "modern"
	defaultLanguage = "en"
)

// RedesignHandler serves website redesign: scraping an existing site for
// preview, and generating a restyled version of it.
//
// Scrape and generate are separate routes with explicit dispatch. The
// previous frontend had a combined route that inspected its own path
// suffix at runtime to pick the operation.
type RedesignHandler struct {
	proxy    *proxy.Client
	sessions session.Provider
	logger   *slog.Logger
}

// NewRedesignHandler creates a new RedesignHandler.
func NewRedesignHandler(p *proxy.Client, sessions session.Provider, logger *slog.Logger) *RedesignHandler {
	return &RedesignHandler{proxy: p, sessions: sessions, logger: logger}
}

// generateRequest is the inbound generation payload.
type generateRequest struct {
	URL      string `json:"url"`
	Style    string `json:"style"`
	Language string `json:"language"`
}

// scrapeRequest is the inbound scrape payload.
type scrapeRequest struct {
	URL string `json:"url"`
}

// Generate handles POST /api/redesign/generate (and its legacy alias
// POST /api/redesign).
//
// The body is normalized before forwarding: style defaults to "modern"
// and language to "en". Authentication is optional; a present session
// credential is forwarded so the backend can attribute credit usage.
func (h *RedesignHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	if req.Style == "" {
		req.Style = defaultStyle
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodPost,
		Path:   "/api/redesign/generate",
		Route:  "/api/redesign/generate",
		Token:  h.optionalToken(r),
		Body:   req,
	})
	relay(w, res, err, "Redesign failed. Please try again.")
}

// Scrape handles POST /api/redesign/scrape.
func (h *RedesignHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodPost,
		Path:   "/api/redesign/scrape",
		Route:  "/api/redesign/scrape",
		Token:  h.optionalToken(r),
		Body:   req,
	})
	relay(w, res, err, "Scraping failed. Please try again.")
}

// optionalToken forwards the session credential when one exists, without
// requiring it.
func (h *RedesignHandler) optionalToken(r *http.Request) string {
	if cred, ok := h.sessions.Current(r); ok {
		return cred.Token
	}
	return ""
}
