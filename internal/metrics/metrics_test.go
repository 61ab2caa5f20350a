package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	rec.IncGatewayRequest("/api/dashboard", 200)
	rec.IncGatewayRequest("/api/dashboard", 200)
	rec.IncGatewayRequest("/api/waitlist", 429)
	rec.IncBackendError("/api/dashboard", "transport")
	rec.IncRateLimited("/api/waitlist")
	rec.ObserveBackendDuration("/api/dashboard", 120*time.Millisecond)

	snap := rec.Snapshot()

	if got := snap.GatewayRequests["/api/dashboard|200"]; got != 2 {
		t.Errorf("GatewayRequests = %d, want 2", got)
	}
	if got := snap.GatewayRequests["/api/waitlist|429"]; got != 1 {
		t.Errorf("GatewayRequests 429 = %d, want 1", got)
	}
	if got := snap.BackendErrors["/api/dashboard|transport"]; got != 1 {
		t.Errorf("BackendErrors = %d, want 1", got)
	}
	if got := snap.RateLimited["/api/waitlist"]; got != 1 {
		t.Errorf("RateLimited = %d, want 1", got)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()
	rec.IncGatewayRequest("/api/preview/{id}", 200)

	snap := rec.Snapshot()
	snap.GatewayRequests["/api/preview/{id}|200"] = 99

	if got := rec.Snapshot().GatewayRequests["/api/preview/{id}|200"]; got != 1 {
		t.Errorf("mutating a snapshot must not affect the recorder, got %d", got)
	}
}

func TestNoopRecorder(t *testing.T) {
	t.Parallel()

	// Must not panic.
	rec := NewNoop()
	rec.IncGatewayRequest("/", 200)
	rec.IncBackendError("/", "decode")
	rec.ObserveBackendDuration("/", time.Second)
	rec.IncRateLimited("/")
}

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewPrometheus(reg)

	rec.IncGatewayRequest("/api/dashboard", 200)
	rec.IncGatewayRequest("/api/dashboard", 200)
	rec.IncBackendError("/api/waitlist", "transport")
	rec.IncRateLimited("/api/waitlist")
	rec.ObserveBackendDuration("/api/dashboard", 50*time.Millisecond)

	if got := testutil.ToFloat64(rec.gatewayRequests.WithLabelValues("/api/dashboard", "200")); got != 2 {
		t.Errorf("gateway_requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.backendErrors.WithLabelValues("/api/waitlist", "transport")); got != 1 {
		t.Errorf("gateway_backend_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.rateLimited.WithLabelValues("/api/waitlist")); got != 1 {
		t.Errorf("gateway_rate_limited_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rec.backendDuration); got != 1 {
		t.Errorf("expected one duration series, got %d", got)
	}
}

func TestPrometheusRecorder_RegistersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewPrometheus(reg)
	rec.IncGatewayRequest("/", 200)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "gateway_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("gateway_requests_total not registered")
	}
}
