// Package metrics defines the Prometheus instrumentation for the capture
// service. All metrics are registered with the default registry and
// exposed by the status server's /metrics endpoint.
package metrics
