package audio

import (
	"time"
)

// Segment represents one candidate utterance: an ordered run of captured
// PCM-16 frames, sealed once the segmentation policy dispatches it.
type Segment struct {
	samples     []int16
	frames      int
	sampleRate  int
	chunkFrames int
	createdAt   time.Time
	sealed      bool
}

// NewSegment creates an empty open segment for the given stream geometry.
func NewSegment(sampleRate, chunkFrames int) *Segment {
	return &Segment{
		samples:     make([]int16, 0, sampleRate*2),
		sampleRate:  sampleRate,
		chunkFrames: chunkFrames,
		createdAt:   time.Now(),
	}
}

// Append adds one captured frame to the open segment.
// Appending to a sealed segment is a programming error and is ignored.
func (s *Segment) Append(frame []int16) {
	if s.sealed {
		return
	}
	s.samples = append(s.samples, frame...)
	s.frames++
}

// Seal finalizes the segment. A sealed segment is immutable.
func (s *Segment) Seal() {
	s.sealed = true
}

// Sealed reports whether the segment has been finalized.
func (s *Segment) Sealed() bool {
	return s.sealed
}

// Empty reports whether the segment holds no audio.
func (s *Segment) Empty() bool {
	return len(s.samples) == 0
}

// Samples returns the segment's PCM-16 samples.
// Callers must not mutate the returned slice once the segment is sealed.
func (s *Segment) Samples() []int16 {
	return s.samples
}

// FloatSamples returns the segment's samples normalized to [-1, 1].
func (s *Segment) FloatSamples() []float32 {
	return Normalize(s.samples)
}

// Frames returns the number of device frames accumulated in the segment.
func (s *Segment) Frames() int {
	return s.frames
}

// Duration returns the accumulated audio duration in seconds,
// derived from frame count and stream geometry.
func (s *Segment) Duration() float64 {
	return float64(s.frames) * float64(s.chunkFrames) / float64(s.sampleRate)
}

// SampleRate returns the sample rate the segment was captured at.
func (s *Segment) SampleRate() int {
	return s.sampleRate
}

// CreatedAt returns the segment creation time.
func (s *Segment) CreatedAt() time.Time {
	return s.createdAt
}
