// Package session drives the capture pipeline for one recording session:
// a capture loop reads frames from the input device and feeds the
// segmentation policy, a dispatch loop consumes the segment queue and
// sends each segment to the transcription backend. The Manager enforces
// a single active session per process.
package session
