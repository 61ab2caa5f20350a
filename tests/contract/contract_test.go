// Package contract validates the gateway's behavior against its OpenAPI spec.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// testConfig holds test configuration.
type testConfig struct {
	BaseURL  string
	SpecPath string
}

// getConfig returns test configuration from environment.
func getConfig(t *testing.T) *testConfig {
	t.Helper()

	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	specPath := os.Getenv("OPENAPI_SPEC_PATH")
	if specPath == "" {
		wd, _ := os.Getwd()
		specPath = filepath.Join(wd, "..", "..", "docs", "api", "openapi.yaml")
	}

	return &testConfig{
		BaseURL:  baseURL,
		SpecPath: specPath,
	}
}

// loadSpec loads and validates the OpenAPI spec.
func loadSpec(t *testing.T, path string) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	spec, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load OpenAPI spec from %s: %v", path, err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("Failed to create router from spec: %v", err)
	}

	return spec, router
}

// TestOpenAPISpecValid ensures the OpenAPI spec is valid.
func TestOpenAPISpecValid(t *testing.T) {
	cfg := getConfig(t)
	_, _ = loadSpec(t, cfg.SpecPath)
}

// TestSpecCoversGatewayRoutes verifies every gateway route is documented.
func TestSpecCoversGatewayRoutes(t *testing.T) {
	cfg := getConfig(t)
	spec, _ := loadSpec(t, cfg.SpecPath)

	expectedPaths := []string{
		"/healthz",
		"/readyz",
		"/api/dashboard",
		"/api/preview/{id}",
		"/api/publish/{id}/status",
		"/api/republish/{id}",
		"/api/redesign",
		"/api/redesign/generate",
		"/api/redesign/scrape",
		"/api/upload/presign",
		"/api/waitlist",
		"/api/leads",
		"/api/leads/{id}",
	}

	for _, path := range expectedPaths {
		if spec.Paths.Find(path) == nil {
			t.Errorf("Expected path %s not found in spec", path)
		}
	}
}

// TestRequestValidation checks sample requests against the documented
// schemas. Runs entirely offline.
func TestRequestValidation(t *testing.T) {
	cfg := getConfig(t)
	_, router := loadSpec(t, cfg.SpecPath)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantErr bool
	}{
		{
			name:   "valid generate request",
			method: http.MethodPost,
			path:   "/api/redesign/generate",
			body:   `{"url":"https://old-site.example","style":"premium","language":"hi"}`,
		},
		{
			name:    "generate without url",
			method:  http.MethodPost,
			path:    "/api/redesign/generate",
			body:    `{"style":"premium"}`,
			wantErr: true,
		},
		{
			name:   "valid waitlist join",
			method: http.MethodPost,
			path:   "/api/waitlist",
			body:   `{"contact":"a@b.co","contact_type":"email","language":"en"}`,
		},
		{
			name:    "waitlist with bad contact_type",
			method:  http.MethodPost,
			path:    "/api/waitlist",
			body:    `{"contact":"a@b.co","contact_type":"carrier-pigeon"}`,
			wantErr: true,
		},
		{
			name:   "valid presign request",
			method: http.MethodPost,
			path:   "/api/upload/presign",
			body:   `{"filename":"hero.png","content_type":"image/png","website_id":"w1","access_token":"tok"}`,
		},
		{
			name:    "presign without filename",
			method:  http.MethodPost,
			path:    "/api/upload/presign",
			body:    `{"content_type":"image/png","website_id":"w1","access_token":"tok"}`,
			wantErr: true,
		},
		{
			name:    "lead update without status",
			method:  http.MethodPatch,
			path:    "/api/leads/l1",
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, cfg.BaseURL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer test-token")

			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				t.Fatalf("Could not find route in spec: %v", err)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}

			err = openapi3filter.ValidateRequest(context.Background(), input)
			if tt.wantErr && err == nil {
				t.Error("Expected request validation to fail")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Request validation failed: %v", err)
			}
		})
	}
}

// TestEndpointsExist validates that documented endpoints respond.
// Requires a running gateway; skips otherwise.
func TestEndpointsExist(t *testing.T) {
	cfg := getConfig(t)

	client := &http.Client{Timeout: 10 * time.Second}

	unauthEndpoints := []struct {
		path   string
		method string
	}{
		{"/healthz", "GET"},
		{"/readyz", "GET"},
		{"/api/waitlist", "GET"},
	}

	for _, ep := range unauthEndpoints {
		t.Run(fmt.Sprintf("%s_%s", ep.method, ep.path), func(t *testing.T) {
			req, err := http.NewRequest(ep.method, cfg.BaseURL+ep.path, nil)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				t.Skipf("Gateway not available: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				t.Errorf("Endpoint %s %s returned 404 - not implemented", ep.method, ep.path)
			}
		})
	}
}

// TestErrorResponseSchema validates error responses match the schema.
// Requires a running gateway; skips otherwise.
func TestErrorResponseSchema(t *testing.T) {
	cfg := getConfig(t)

	client := &http.Client{Timeout: 10 * time.Second}

	errorCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"DashboardUnauthorized", "GET", "/api/dashboard", 401},
		{"LeadsUnauthorized", "GET", "/api/leads", 401},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, cfg.BaseURL+tc.path, nil)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				t.Skipf("Gateway not available: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, resp.StatusCode)
			}
			validateErrorResponse(t, resp)
		})
	}
}

// validateErrorResponse checks that error responses carry the gateway's
// JSON error envelope.
func validateErrorResponse(t *testing.T, resp *http.Response) {
	t.Helper()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("Error response Content-Type should be application/json, got: %s", contentType)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err != nil {
		t.Errorf("Failed to parse error response as JSON: %v\nBody: %s", err, string(body))
		return
	}
	if errorResp.Error == "" {
		t.Errorf("Error response missing 'error' field. Body: %s", string(body))
	}
}

// TestResponseContentType validates Content-Type headers.
// Requires a running gateway; skips otherwise.
func TestResponseContentType(t *testing.T) {
	cfg := getConfig(t)

	client := &http.Client{Timeout: 10 * time.Second}

	for _, path := range []string{"/healthz", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(cfg.BaseURL + path)
			if err != nil {
				t.Skipf("Gateway not available: %v", err)
			}
			defer resp.Body.Close()

			contentType := resp.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				t.Errorf("Expected application/json Content-Type for %s, got: %s", path, contentType)
			}
		})
	}
}
