package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vocoweb/gateway/internal/proxy"
)

// UploadHandler serves presigned upload URL requests.
//
// This route takes the credential in the request body rather than from
// the session provider: the upload widget runs in a context without
// direct session access, so the caller passes its token explicitly.
type UploadHandler struct {
	proxy  *proxy.Client
	logger *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(p *proxy.Client, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{proxy: p, logger: logger}
}

// presignRequest is the inbound presign payload.
type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	WebsiteID   string `json:"website_id"`
	AccessToken string `json:"access_token"`
}

// presignForward is what goes to the backend: the same fields minus the
// credential, which moves to the Authorization header.
type presignForward struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	WebsiteID   string `json:"website_id"`
}

// Presign handles POST /api/upload/presign.
func (h *UploadHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.AccessToken == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	missing := ""
	switch {
	case req.Filename == "":
		missing = "filename"
	case req.ContentType == "":
		missing = "content_type"
	case req.WebsiteID == "":
		missing = "website_id"
	}
	if missing != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: missing + " is required"})
		return
	}

	res, err := h.proxy.Do(r.Context(), proxy.Request{
		Method: http.MethodPost,
		Path:   "/api/upload/presign",
		Route:  "/api/upload/presign",
		Token:  req.AccessToken,
		Body: presignForward{
			Filename:    req.Filename,
			ContentType: req.ContentType,
			WebsiteID:   req.WebsiteID,
		},
	})
	relay(w, res, err, "Failed to generate upload URL. Please try again.")
}
