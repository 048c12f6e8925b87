// Package audio handles PCM sample handling and format conversion.
// It implements the segment container produced by the capture pipeline,
// float normalization for silence classification, and WAV encoding of
// segments for transcription upload.
package audio
