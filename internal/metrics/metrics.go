// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the gateway.
type Recorder interface {
	// Inbound request outcomes, by route pattern and response status.
	IncGatewayRequest(route string, status int)

	// Backend call health.
	IncBackendError(route, kind string) // kind: "transport" or "decode"
	ObserveBackendDuration(route string, duration time.Duration)

	// Requests rejected by the public rate limiter.
	IncRateLimited(route string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
