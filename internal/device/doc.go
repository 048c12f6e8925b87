// Package device abstracts the audio input used by the capture pipeline.
// The production implementation wraps PortAudio; tests substitute scripted
// sources through the Source interface.
package device
