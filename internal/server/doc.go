// Package server exposes the observational HTTP API: health, session
// status, sanitized configuration, statistics and Prometheus metrics.
// It never mutates pipeline state.
package server
