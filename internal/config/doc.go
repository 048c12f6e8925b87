// Package config provides configuration loading and validation for the scribe
// capture service. It handles YAML-based configuration with struct validation
// so type and parsing errors surface once at session start instead of
// mid-recording.
package config
