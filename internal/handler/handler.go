// Package handler provides HTTP request handlers.
// Each API handler forwards exactly one call (two for the dashboard) to
// the backend origin and relays the response per the gateway's error
// mapping rules.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/session"
)

// errorResponse is the gateway's standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the root and fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Root describes the service.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"name":    "Vocoweb Gateway",
		"version": "0.3.0",
		"status":  "running",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "resource not found"})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeRaw relays a backend body byte-identical.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// relay maps a completed backend call onto the client response:
// 2xx bodies pass through unchanged, rejections keep the backend's
// status with its detail message (or the route's fallback), and
// transport failures become a generic 500.
func relay(w http.ResponseWriter, res *proxy.Result, err error, fallback string) {
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
		return
	}
	if !res.OK() {
		writeJSON(w, res.Status, errorResponse{Error: proxy.ErrorMessage(res.Body, fallback)})
		return
	}
	writeRaw(w, res.Status, res.Body)
}

// requireSession resolves the caller's credential or writes a 401.
// No backend call is made for unauthenticated requests.
func requireSession(w http.ResponseWriter, r *http.Request, sessions session.Provider) (string, bool) {
	cred, ok := sessions.Current(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return "", false
	}
	return cred.Token, true
}
