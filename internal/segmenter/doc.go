// Package segmenter implements the speech segmentation policy for the
// capture pipeline. It accumulates non-silent frames into an open segment
// and dispatches the segment once enough audio has been recorded and a
// trailing run of silence marks a likely utterance boundary.
package segmenter
