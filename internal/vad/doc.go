// Package vad provides energy-based silence classification for captured
// audio frames and a silence monitor that raises a "no audio input"
// advisory after prolonged quiet. Classification compares the frame's
// peak amplitude against a configured cutoff.
package vad
