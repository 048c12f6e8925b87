package segmenter

import (
	"fmt"

	"github.com/medscribe/capture-service/internal/audio"
	"github.com/medscribe/capture-service/internal/vad"
)

// Config contains segmentation policy parameters
type Config struct {
	SampleRate         int
	ChunkFrames        int
	SilenceCutoff      float32 // normalized amplitude 0..1
	MinAudioDuration   float64 // seconds of recorded audio before a split is allowed
	MinSilenceDuration float64 // seconds of trailing silence that triggers a split
	RealTime           bool    // dispatch segments incrementally during capture
}

// Validate checks the policy parameters
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}

	if c.ChunkFrames <= 0 {
		return fmt.Errorf("chunk frames must be positive, got %d", c.ChunkFrames)
	}

	if c.SilenceCutoff < 0 || c.SilenceCutoff > 1 {
		return fmt.Errorf("silence cutoff must be between 0 and 1, got %f", c.SilenceCutoff)
	}

	if c.MinAudioDuration <= 0 {
		return fmt.Errorf("minimum audio duration must be positive, got %f", c.MinAudioDuration)
	}

	if c.MinSilenceDuration <= 0 {
		return fmt.Errorf("minimum silence duration must be positive, got %f", c.MinSilenceDuration)
	}

	return nil
}

// Policy is the per-session segmentation state machine. It is always
// accumulating from the moment a session starts; there are no other states.
// The policy is owned by the capture loop and is not safe for concurrent use.
type Policy struct {
	cfg      Config
	frameDur float64 // seconds per frame

	current     *audio.Segment
	silentDur   float64 // trailing silence, reset by any non-silent frame
	recordedDur float64 // total classified time since last dispatch

	// Statistics
	framesProcessed    uint64
	silentFrames       uint64
	segmentsDispatched uint64
	segmentsFlushed    uint64
}

// Stats represents segmentation statistics
type Stats struct {
	FramesProcessed    uint64  `json:"frames_processed"`
	SilentFrames       uint64  `json:"silent_frames"`
	SegmentsDispatched uint64  `json:"segments_dispatched"`
	SegmentsFlushed    uint64  `json:"segments_flushed"`
	RecordedDuration   float64 `json:"recorded_duration_sec"`
	SilentDuration     float64 `json:"silent_duration_sec"`
}

// NewPolicy creates a segmentation policy for one recording session
func NewPolicy(cfg Config) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Policy{
		cfg:      cfg,
		frameDur: float64(cfg.ChunkFrames) / float64(cfg.SampleRate),
		current:  audio.NewSegment(cfg.SampleRate, cfg.ChunkFrames),
	}, nil
}

// ProcessFrame classifies one captured frame and advances the segmentation
// state. It returns a sealed segment when the dispatch condition fires in
// real-time mode, nil otherwise, plus the frame's silence classification.
//
// Dispatch condition: recordedDuration >= MinAudioDuration AND
// silentDuration >= MinSilenceDuration (both inclusive). The trailing
// silence only triggers the split; it is never part of the segment.
func (p *Policy) ProcessFrame(frame []int16) (*audio.Segment, bool) {
	silent := vad.IsSilent(audio.Normalize(frame), p.cfg.SilenceCutoff)

	p.framesProcessed++
	if silent {
		p.silentFrames++
		p.silentDur += p.frameDur
	} else {
		p.current.Append(frame)
		p.silentDur = 0
	}
	p.recordedDur += p.frameDur

	if p.recordedDur >= p.cfg.MinAudioDuration && p.silentDur >= p.cfg.MinSilenceDuration {
		var out *audio.Segment
		if p.cfg.RealTime && !p.current.Empty() {
			p.current.Seal()
			out = p.current
			p.segmentsDispatched++
		}
		p.current = audio.NewSegment(p.cfg.SampleRate, p.cfg.ChunkFrames)
		p.silentDur = 0
		p.recordedDur = 0
		return out, silent
	}

	return nil, silent
}

// Flush seals and returns the open segment if it holds any audio,
// regardless of the dispatch condition. Called on session stop.
func (p *Policy) Flush() *audio.Segment {
	if p.current.Empty() {
		return nil
	}

	p.current.Seal()
	out := p.current
	p.segmentsFlushed++

	p.current = audio.NewSegment(p.cfg.SampleRate, p.cfg.ChunkFrames)
	p.silentDur = 0
	p.recordedDur = 0

	return out
}

// RecordedDuration returns the classified time in seconds since the last dispatch
func (p *Policy) RecordedDuration() float64 {
	return p.recordedDur
}

// SilentDuration returns the current trailing-silence time in seconds
func (p *Policy) SilentDuration() float64 {
	return p.silentDur
}

// FrameDuration returns the duration of a single frame in seconds
func (p *Policy) FrameDuration() float64 {
	return p.frameDur
}

// GetStats returns current segmentation statistics
func (p *Policy) GetStats() Stats {
	return Stats{
		FramesProcessed:    p.framesProcessed,
		SilentFrames:       p.silentFrames,
		SegmentsDispatched: p.segmentsDispatched,
		SegmentsFlushed:    p.segmentsFlushed,
		RecordedDuration:   p.recordedDur,
		SilentDuration:     p.silentDur,
	}
}
