package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/medscribe/capture-service/internal/audio"
	"github.com/medscribe/capture-service/internal/device"
	"github.com/medscribe/capture-service/internal/metrics"
	"github.com/medscribe/capture-service/internal/segmenter"
	"github.com/medscribe/capture-service/internal/transcription"
	"github.com/medscribe/capture-service/internal/vad"
)

// Status values reported by Info.
const (
	StatusRecording = "recording"
	StatusPaused    = "paused"
	StatusStopping  = "stopping"
	StatusStopped   = "stopped"
	StatusCanceled  = "canceled"
)

// Config contains session configuration
type Config struct {
	Policy           segmenter.Config
	QueueCapacity    int           // segment queue depth
	SilenceWarning   float64       // seconds of silence before an advisory, 0 disables
	WholeFileTimeout time.Duration // timeout for the whole-recording request in non-real-time mode
}

// Validate checks the session parameters
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}

	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}

	if c.SilenceWarning < 0 {
		return fmt.Errorf("silence warning threshold cannot be negative, got %f", c.SilenceWarning)
	}

	return nil
}

// Session is one recording session. It owns two goroutines: the capture
// loop producing segments and the dispatch loop consuming them. A session
// runs once; create a new one for each recording.
type Session struct {
	cfg     Config
	source  device.Source
	backend transcription.Backend
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics // optional, may be nil

	policy  *segmenter.Policy
	monitor *vad.SilenceMonitor
	token   *Token
	queue   chan *audio.Segment

	paused   atomic.Bool
	stopping atomic.Bool

	startTime time.Time
	wg        sync.WaitGroup

	// history accumulates the full recording for the non-real-time
	// whole-file request. Owned by the capture loop until the sentinel
	// is sent; the dispatch loop reads it only after.
	history []int16

	// Statistics. segStats is a copy refreshed by the capture loop so the
	// status API never touches the policy concurrently.
	mu               sync.RWMutex
	segStats         segmenter.Stats
	framesDropped    uint64
	segmentsEnqueued uint64
	segmentsDropped  uint64
	transcripts      uint64
	transcribeErrors uint64
	finished         bool
}

// Info is the session snapshot exposed by the status API.
type Info struct {
	Status           string          `json:"status"`
	Backend          string          `json:"backend"`
	StartedAt        string          `json:"started_at"`
	UptimeSeconds    float64         `json:"uptime_seconds"`
	FramesDropped    uint64          `json:"frames_dropped"`
	SegmentsEnqueued uint64          `json:"segments_enqueued"`
	SegmentsDropped  uint64          `json:"segments_dropped"`
	Transcripts      uint64          `json:"transcripts"`
	TranscribeErrors uint64          `json:"transcribe_errors"`
	QueueDepth       int             `json:"queue_depth"`
	Segmentation     segmenter.Stats `json:"segmentation"`
}

// New creates a session and starts its capture and dispatch loops.
// The session takes ownership of source and closes it on termination.
func New(cfg Config, source device.Source, backend transcription.Backend, sink Sink, logger *slog.Logger, m *metrics.Metrics) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	policy, err := segmenter.NewPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		source:    source,
		backend:   backend,
		sink:      sink,
		logger:    logger,
		metrics:   m,
		policy:    policy,
		token:     NewToken(context.Background()),
		queue:     make(chan *audio.Segment, cfg.QueueCapacity),
		startTime: time.Now(),
	}

	if cfg.SilenceWarning > 0 {
		s.monitor = vad.NewSilenceMonitor(cfg.SilenceWarning,
			func(msg string) {
				s.logger.Warn("Prolonged silence on input device",
					slog.Float64("threshold_sec", cfg.SilenceWarning),
				)
				if s.metrics != nil {
					s.metrics.RecordSilenceWarning()
				}
				s.sink.emitWarning(msg)
			},
			func() {
				s.sink.emitWarning("")
			},
		)
	}

	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
	}

	s.logger.Info("Session started",
		slog.String("backend", backend.Name()),
		slog.Bool("real_time", cfg.Policy.RealTime),
		slog.Int("queue_capacity", cfg.QueueCapacity),
	)

	s.wg.Add(2)
	go s.captureLoop()
	go s.dispatchLoop()

	return s, nil
}

// Pause suspends classification. Frames are still read from the device but
// discarded, so device buffers do not overflow and paused time never
// advances the segmentation counters.
func (s *Session) Pause() {
	if s.paused.CompareAndSwap(false, true) {
		s.logger.Info("Session paused")
	}
}

// Resume re-enables classification after a pause.
func (s *Session) Resume() {
	if s.paused.CompareAndSwap(true, false) {
		s.logger.Info("Session resumed")
	}
}

// Paused reports whether the session is currently paused.
func (s *Session) Paused() bool {
	return s.paused.Load()
}

// Stop requests a graceful shutdown: the capture loop flushes the open
// segment and the dispatch loop drains the queue before terminating.
// Use Wait to block until the drain completes.
func (s *Session) Stop() {
	if s.stopping.CompareAndSwap(false, true) {
		s.logger.Info("Session stopping")
	}
}

// Cancel abandons the session: queued segments are discarded, the in-flight
// transcription request is aborted, and late results are suppressed.
// Idempotent.
func (s *Session) Cancel() {
	if !s.token.Canceled() {
		s.logger.Info("Session canceled")
	}
	s.token.Cancel()
	s.stopping.Store(true)
}

// Canceled reports whether the session was canceled.
func (s *Session) Canceled() bool {
	return s.token.Canceled()
}

// Wait blocks until both loops have terminated.
func (s *Session) Wait() {
	s.wg.Wait()
}

// captureLoop reads frames from the device until stop or cancel, feeding
// the segmentation policy and the silence monitor. It always terminates
// the queue with a nil sentinel so the dispatch loop can drain and exit.
func (s *Session) captureLoop() {
	defer s.wg.Done()
	defer func() {
		if s.monitor != nil {
			s.monitor.Reset()
		}
		if err := s.source.Close(); err != nil {
			s.logger.Error("Failed to close audio source", slog.String("error", err.Error()))
		}
	}()

	for {
		if s.token.Canceled() {
			s.sendSentinel()
			return
		}

		if s.stopping.Load() {
			s.flushAndFinish()
			return
		}

		frame, err := s.source.Read()
		if err != nil {
			if s.stopping.Load() || s.token.Canceled() {
				s.sendSentinel()
				return
			}
			s.logger.Error("Audio source read failed", slog.String("error", err.Error()))
			s.sink.emitError(fmt.Errorf("audio source failed: %w", err))
			s.flushAndFinish()
			return
		}

		if s.paused.Load() {
			s.mu.Lock()
			s.framesDropped++
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.RecordFrameDropped()
			}
			continue
		}

		seg, silent := s.policy.ProcessFrame(frame)
		s.mu.Lock()
		s.segStats = s.policy.GetStats()
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordFrame(silent)
		}
		if s.monitor != nil {
			s.monitor.Observe(s.policy.FrameDuration(), silent)
		}

		// Every classified frame, silent or not, lands in the history so
		// the whole-recording request covers the complete take.
		s.history = append(s.history, frame...)

		if seg != nil {
			if !s.enqueue(seg) {
				return
			}
			if s.metrics != nil {
				s.metrics.RecordSegmentDispatched(seg.Duration())
			}
		}
	}
}

// flushAndFinish seals any open audio and terminates the queue.
func (s *Session) flushAndFinish() {
	seg := s.policy.Flush()
	s.mu.Lock()
	s.segStats = s.policy.GetStats()
	s.mu.Unlock()
	if seg != nil && s.cfg.Policy.RealTime {
		if !s.enqueue(seg) {
			return
		}
		if s.metrics != nil {
			s.metrics.RecordSegmentFlushed(seg.Duration())
		}
	}
	s.sendSentinel()
}

// enqueue performs the non-blocking queue put. A full queue means the
// consumer has fallen hopelessly behind the configured capacity; the
// session terminates rather than block the capture loop.
func (s *Session) enqueue(seg *audio.Segment) bool {
	select {
	case s.queue <- seg:
		s.mu.Lock()
		s.segmentsEnqueued++
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.SetQueueSize(len(s.queue))
		}
		return true
	default:
		err := fmt.Errorf("segment queue full (capacity %d), transcription cannot keep up", s.cfg.QueueCapacity)
		s.logger.Error("Segment queue overflow", slog.Int("capacity", s.cfg.QueueCapacity))
		s.sink.emitError(err)
		s.token.Cancel()
		s.sendSentinel()
		return false
	}
}

// sendSentinel terminates the queue. The dispatch loop always drains the
// queue, so a blocking send here cannot deadlock.
func (s *Session) sendSentinel() {
	s.queue <- nil
}

// dispatchLoop consumes the segment queue in FIFO order and forwards each
// segment to the backend. After cancellation it keeps draining but
// discards everything until the sentinel arrives.
func (s *Session) dispatchLoop() {
	defer s.wg.Done()
	defer s.finish()

	for seg := range s.queue {
		if seg == nil {
			if !s.cfg.Policy.RealTime && !s.token.Canceled() {
				s.transcribeWholeRecording()
			}
			return
		}

		if s.metrics != nil {
			s.metrics.SetQueueSize(len(s.queue))
		}

		if s.token.Canceled() {
			s.mu.Lock()
			s.segmentsDropped++
			s.mu.Unlock()
			continue
		}

		if vad.IsSilent(seg.FloatSamples(), s.cfg.Policy.SilenceCutoff) {
			s.mu.Lock()
			s.segmentsDropped++
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.RecordSegmentDroppedQuiet()
			}
			continue
		}

		s.transcribe(s.token.Context(), seg.Samples(), seg.SampleRate())
	}
}

// transcribe sends one batch of samples to the backend and delivers the
// result, unless the session was canceled while the request was in flight.
func (s *Session) transcribe(ctx context.Context, samples []int16, sampleRate int) {
	startTime := time.Now()
	if s.metrics != nil {
		s.metrics.RecordTranscriptionRequest()
	}

	result, err := s.backend.Transcribe(ctx, &transcription.Request{
		Samples:    samples,
		SampleRate: sampleRate,
	})

	if s.token.Canceled() {
		// Late result or error from an aborted request, drop it.
		return
	}

	if err != nil {
		s.mu.Lock()
		s.transcribeErrors++
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordTranscriptionFailure(time.Since(startTime).Seconds())
		}
		s.logger.Error("Transcription failed",
			slog.String("backend", s.backend.Name()),
			slog.String("error", err.Error()),
		)
		s.sink.emitError(fmt.Errorf("transcription failed: %w", err))
		return
	}

	s.mu.Lock()
	s.transcripts++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordTranscriptionSuccess(time.Since(startTime).Seconds())
	}

	s.sink.emitTranscript(result.Text)
}

// transcribeWholeRecording sends the complete capture history as one
// request. Used in non-real-time mode after the capture loop has finished.
func (s *Session) transcribeWholeRecording() {
	if len(s.history) == 0 {
		return
	}

	if vad.IsSilent(audio.Normalize(s.history), s.cfg.Policy.SilenceCutoff) {
		s.logger.Info("Recording contains no audible speech, skipping transcription")
		return
	}

	ctx := s.token.Context()
	if s.cfg.WholeFileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WholeFileTimeout)
		defer cancel()
	}

	s.logger.Info("Transcribing whole recording",
		slog.Float64("duration_sec", float64(len(s.history))/float64(s.cfg.Policy.SampleRate)),
	)
	s.transcribe(ctx, s.history, s.cfg.Policy.SampleRate)
}

// finish records the terminal state. Runs exactly once, when the dispatch
// loop exits.
func (s *Session) finish() {
	duration := time.Since(s.startTime).Seconds()

	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetQueueSize(0)
		if s.token.Canceled() {
			s.metrics.RecordSessionCanceled(duration)
		} else {
			s.metrics.RecordSessionStopped(duration)
		}
	}

	s.logger.Info("Session finished",
		slog.Bool("canceled", s.token.Canceled()),
		slog.Float64("duration_sec", duration),
	)

	s.token.release()
}

// Info returns a snapshot of the session state.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := StatusRecording
	switch {
	case s.finished && s.token.Canceled():
		status = StatusCanceled
	case s.finished:
		status = StatusStopped
	case s.token.Canceled() || s.stopping.Load():
		status = StatusStopping
	case s.paused.Load():
		status = StatusPaused
	}

	return Info{
		Status:           status,
		Backend:          s.backend.Name(),
		StartedAt:        s.startTime.Format(time.RFC3339),
		UptimeSeconds:    time.Since(s.startTime).Seconds(),
		FramesDropped:    s.framesDropped,
		SegmentsEnqueued: s.segmentsEnqueued,
		SegmentsDropped:  s.segmentsDropped,
		Transcripts:      s.transcripts,
		TranscribeErrors: s.transcribeErrors,
		QueueDepth:       len(s.queue),
		Segmentation:     s.segStats,
	}
}
