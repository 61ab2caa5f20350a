package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GatewayRequests        map[string]uint64 // keyed "route|status"
	BackendErrors          map[string]uint64 // keyed "route|kind"
	BackendDurationCount   uint64
	BackendDurationTotalNs int64
	RateLimited            map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                     sync.Mutex
	gatewayRequests        map[string]uint64
	backendErrors          map[string]uint64
	backendDurationCount   uint64
	backendDurationTotalNs int64
	rateLimited            map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		gatewayRequests: make(map[string]uint64),
		backendErrors:   make(map[string]uint64),
		rateLimited:     make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		GatewayRequests:        make(map[string]uint64, len(m.gatewayRequests)),
		BackendErrors:          make(map[string]uint64, len(m.backendErrors)),
		BackendDurationCount:   m.backendDurationCount,
		BackendDurationTotalNs: m.backendDurationTotalNs,
		RateLimited:            make(map[string]uint64, len(m.rateLimited)),
	}
	for k, v := range m.gatewayRequests {
		snap.GatewayRequests[k] = v
	}
	for k, v := range m.backendErrors {
		snap.BackendErrors[k] = v
	}
	for k, v := range m.rateLimited {
		snap.RateLimited[k] = v
	}
	return snap
}

// IncGatewayRequest increments the request counter for a route/status pair.
func (m *InMemoryRecorder) IncGatewayRequest(route string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatewayRequests[route+"|"+itoa(status)]++
}

// IncBackendError increments the backend error counter.
func (m *InMemoryRecorder) IncBackendError(route, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backendErrors[route+"|"+kind]++
}

// ObserveBackendDuration records one backend call duration.
func (m *InMemoryRecorder) ObserveBackendDuration(route string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backendDurationCount++
	m.backendDurationTotalNs += duration.Nanoseconds()
}

// IncRateLimited increments the rate-limited counter for a route.
func (m *InMemoryRecorder) IncRateLimited(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited[route]++
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
