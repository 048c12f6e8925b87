package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the capture service
type Metrics struct {
	// Capture metrics
	FramesCaptured prometheus.Counter
	SilentFrames   prometheus.Counter
	FramesDropped  prometheus.Counter
	QueueSize      prometheus.Gauge

	// Session metrics
	SessionsStarted  prometheus.Counter
	SessionsStopped  prometheus.Counter
	SessionsCanceled prometheus.Counter
	SessionDuration  prometheus.Histogram
	SilenceWarnings  prometheus.Counter

	// Segment metrics
	SegmentsDispatched   prometheus.Counter
	SegmentsFlushed      prometheus.Counter
	SegmentsDroppedQuiet prometheus.Counter
	SegmentDuration      prometheus.Histogram

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Capture metrics
		FramesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_total",
			Help: "Total number of audio frames read from the input device",
		}),
		SilentFrames: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_silent_frames_total",
			Help: "Total number of frames classified as silent",
		}),
		FramesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_dropped_total",
			Help: "Total number of frames discarded while paused",
		}),
		QueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "capture_segment_queue_size",
			Help: "Current number of segments waiting for transcription",
		}),

		// Session metrics
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_sessions_started_total",
			Help: "Total number of recording sessions started",
		}),
		SessionsStopped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_sessions_stopped_total",
			Help: "Total number of recording sessions stopped normally",
		}),
		SessionsCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_sessions_canceled_total",
			Help: "Total number of recording sessions canceled",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "capture_session_duration_seconds",
			Help:    "Duration of recording sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		}),
		SilenceWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_silence_warnings_total",
			Help: "Total number of prolonged-silence advisories raised",
		}),

		// Segment metrics
		SegmentsDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_segments_dispatched_total",
			Help: "Total number of segments dispatched during capture",
		}),
		SegmentsFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_segments_flushed_total",
			Help: "Total number of segments flushed on session stop",
		}),
		SegmentsDroppedQuiet: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_segments_dropped_quiet_total",
			Help: "Total number of all-silent segments dropped before transcription",
		}),
		SegmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "capture_segment_duration_seconds",
			Help:    "Duration of dispatched audio segments",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~2 minutes
		}),

		// Transcription metrics
		TranscriptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_transcription_requests_total",
			Help: "Total number of transcription requests sent",
		}),
		TranscriptionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_transcription_successes_total",
			Help: "Total number of successful transcription requests",
		}),
		TranscriptionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_transcription_failures_total",
			Help: "Total number of failed transcription requests",
		}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "capture_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capture_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordFrame records one captured frame and its classification
func (m *Metrics) RecordFrame(silent bool) {
	m.FramesCaptured.Inc()
	if silent {
		m.SilentFrames.Inc()
	}
}

// RecordFrameDropped increments the dropped frames counter
func (m *Metrics) RecordFrameDropped() {
	m.FramesDropped.Inc()
}

// SetQueueSize sets the current segment queue depth
func (m *Metrics) SetQueueSize(size int) {
	m.QueueSize.Set(float64(size))
}

// RecordSessionStarted increments the sessions started counter
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionStopped records a normal session end and its duration
func (m *Metrics) RecordSessionStopped(durationSeconds float64) {
	m.SessionsStopped.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordSessionCanceled records a canceled session and its duration
func (m *Metrics) RecordSessionCanceled(durationSeconds float64) {
	m.SessionsCanceled.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordSilenceWarning increments the silence advisory counter
func (m *Metrics) RecordSilenceWarning() {
	m.SilenceWarnings.Inc()
}

// RecordSegmentDispatched records a dispatched segment and its duration
func (m *Metrics) RecordSegmentDispatched(durationSeconds float64) {
	m.SegmentsDispatched.Inc()
	m.SegmentDuration.Observe(durationSeconds)
}

// RecordSegmentFlushed records a segment flushed on stop
func (m *Metrics) RecordSegmentFlushed(durationSeconds float64) {
	m.SegmentsFlushed.Inc()
	m.SegmentDuration.Observe(durationSeconds)
}

// RecordSegmentDroppedQuiet increments the dropped quiet segments counter
func (m *Metrics) RecordSegmentDroppedQuiet() {
	m.SegmentsDroppedQuiet.Inc()
}

// RecordTranscriptionRequest increments the transcription requests counter
func (m *Metrics) RecordTranscriptionRequest() {
	m.TranscriptionRequests.Inc()
}

// RecordTranscriptionSuccess records a successful transcription
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64) {
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordTranscriptionFailure records a failed transcription
func (m *Metrics) RecordTranscriptionFailure(durationSeconds float64) {
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
