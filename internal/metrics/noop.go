package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncGatewayRequest is a no-op.
func (n *NoopRecorder) IncGatewayRequest(route string, status int) {}

// IncBackendError is a no-op.
func (n *NoopRecorder) IncBackendError(route, kind string) {}

// ObserveBackendDuration is a no-op.
func (n *NoopRecorder) ObserveBackendDuration(route string, duration time.Duration) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(route string) {}
