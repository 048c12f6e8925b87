package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/medscribe/capture-service/internal/device"
	"github.com/medscribe/capture-service/internal/metrics"
	"github.com/medscribe/capture-service/internal/transcription"
)

// Manager owns the single active session. Starting a session while one is
// running is an error; the previous session must be stopped or canceled
// first.
type Manager struct {
	cfg     Config
	opener  device.Opener
	backend transcription.Backend
	logger  *slog.Logger
	metrics *metrics.Metrics

	deviceIndex int

	mu     sync.Mutex
	active *Session
}

// NewManager creates a session manager. opener supplies the audio source
// for each session; deviceIndex selects the input device, negative for
// the system default.
func NewManager(cfg Config, opener device.Opener, deviceIndex int, backend transcription.Backend, logger *slog.Logger, m *metrics.Metrics) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	return &Manager{
		cfg:         cfg,
		opener:      opener,
		backend:     backend,
		logger:      logger,
		metrics:     m,
		deviceIndex: deviceIndex,
	}, nil
}

// Start opens the input device and begins a new session.
func (m *Manager) Start(sink Sink) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, fmt.Errorf("a session is already active")
	}

	source, err := m.opener(m.cfg.Policy.SampleRate, m.cfg.Policy.ChunkFrames, m.deviceIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio source: %w", err)
	}

	sess, err := New(m.cfg, source, m.backend, sink, m.logger, m.metrics)
	if err != nil {
		source.Close()
		return nil, err
	}

	m.active = sess

	// Release the slot once the session terminates on its own.
	go func() {
		sess.Wait()
		m.mu.Lock()
		if m.active == sess {
			m.active = nil
		}
		m.mu.Unlock()
	}()

	return sess, nil
}

// Stop gracefully ends the active session and waits for the drain.
// No-op when nothing is running.
func (m *Manager) Stop() {
	if sess := m.Active(); sess != nil {
		sess.Stop()
		sess.Wait()
	}
}

// Cancel abandons the active session and waits for it to terminate.
// No-op when nothing is running.
func (m *Manager) Cancel() {
	if sess := m.Active(); sess != nil {
		sess.Cancel()
		sess.Wait()
	}
}

// Active returns the running session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
