// Package session resolves the caller's session credential.
// The gateway never validates or stores tokens; it only decides whether a
// credential is present and forwards it to the backend as a bearer token.
package session

import (
	"net/http"
	"strings"
)

// Credential is an opaque bearer token issued by the identity provider.
// It lives for the duration of a logged-in session and is attached to
// each proxied request unchanged.
type Credential struct {
	Token string
}

// Provider resolves the current session credential from an inbound request.
// Implemented as an interface so handlers are testable without a real
// identity backend.
type Provider interface {
	// Current returns the credential for the request, or ok=false when
	// the caller is not logged in.
	Current(r *http.Request) (*Credential, bool)
}

// HeaderProvider extracts the credential from the Authorization header,
// falling back to the identity provider's session cookie.
type HeaderProvider struct {
	// CookieName is the session cookie consulted when no
	// Authorization header is present (e.g. "sb-access-token").
	CookieName string
}

// NewHeaderProvider creates a HeaderProvider.
func NewHeaderProvider(cookieName string) *HeaderProvider {
	return &HeaderProvider{CookieName: cookieName}
}

// Current implements Provider.
func (p *HeaderProvider) Current(r *http.Request) (*Credential, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token != "" {
				return &Credential{Token: token}, true
			}
		}
		return nil, false
	}

	if p.CookieName != "" {
		if c, err := r.Cookie(p.CookieName); err == nil && c.Value != "" {
			return &Credential{Token: c.Value}, true
		}
	}

	return nil, false
}

// Static always returns the same credential. Intended for tests.
type Static struct {
	Token string
}

// Current implements Provider.
func (s *Static) Current(r *http.Request) (*Credential, bool) {
	if s.Token == "" {
		return nil, false
	}
	return &Credential{Token: s.Token}, true
}
