package vad

// WarningMessage is the advisory text raised after prolonged silence.
const WarningMessage = "No audio input detected. Please check your microphone " +
	"input device and adjust your microphone cutoff level in the settings."

// SilenceMonitor tracks elapsed silence since the last speech frame and
// raises an advisory when it crosses a fixed threshold. It is purely
// observational: it never affects segmentation or dispatch. The counter is
// reset only by non-silent frames, never by segment dispatch.
type SilenceMonitor struct {
	warnAfter float64 // seconds
	elapsed   float64
	raised    bool
	onWarning func(message string)
	onClear   func()
}

// NewSilenceMonitor creates a monitor that invokes onWarning once when
// elapsed silence reaches warnAfter seconds and onClear once when speech
// resumes or the monitor is reset while the advisory is up.
func NewSilenceMonitor(warnAfter float64, onWarning func(string), onClear func()) *SilenceMonitor {
	return &SilenceMonitor{
		warnAfter: warnAfter,
		onWarning: onWarning,
		onClear:   onClear,
	}
}

// Observe records one classified frame of frameDuration seconds.
func (m *SilenceMonitor) Observe(frameDuration float64, silent bool) {
	if !silent {
		m.elapsed = 0
		m.clear()
		return
	}

	m.elapsed += frameDuration
	if m.elapsed >= m.warnAfter && !m.raised {
		m.raised = true
		if m.onWarning != nil {
			m.onWarning(WarningMessage)
		}
	}
}

// Reset clears the elapsed counter and withdraws any active advisory.
// Called when recording stops.
func (m *SilenceMonitor) Reset() {
	m.elapsed = 0
	m.clear()
}

// Elapsed returns the current silence duration in seconds.
func (m *SilenceMonitor) Elapsed() float64 {
	return m.elapsed
}

// Raised reports whether the advisory is currently active.
func (m *SilenceMonitor) Raised() bool {
	return m.raised
}

func (m *SilenceMonitor) clear() {
	if m.raised {
		m.raised = false
		if m.onClear != nil {
			m.onClear()
		}
	}
}
