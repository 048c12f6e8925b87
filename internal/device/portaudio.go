package device

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures mono PCM16 frames from a microphone through
// PortAudio. It owns the library lifetime: Initialize on open, Terminate
// on close.
type PortAudioSource struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []int16
	closed bool
}

// OpenPortAudio opens an input stream on the selected device. It satisfies
// the Opener signature and is the production opener wired in by the daemon.
func OpenPortAudio(sampleRate, chunkFrames, deviceIndex int) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	s := &PortAudioSource{
		buffer: make([]int16, chunkFrames),
	}

	var stream *portaudio.Stream
	var err error

	if deviceIndex < 0 {
		stream, err = portaudio.OpenDefaultStream(
			1,                   // input channels (mono)
			0,                   // output channels
			float64(sampleRate), // sample rate
			chunkFrames,         // frames per buffer
			s.buffer,
		)
	} else {
		stream, err = openDeviceStream(sampleRate, chunkFrames, deviceIndex, s.buffer)
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	s.stream = stream
	return s, nil
}

// openDeviceStream opens a stream on a specific input device by index.
func openDeviceStream(sampleRate, chunkFrames, deviceIndex int, buffer []int16) (*portaudio.Stream, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	if deviceIndex >= len(devices) {
		return nil, fmt.Errorf("device index %d out of range, %d devices available", deviceIndex, len(devices))
	}

	dev := devices[deviceIndex]
	if dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %q has no input channels", dev.Name)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = chunkFrames

	return portaudio.OpenStream(params, buffer)
}

// Read blocks until the next frame has been captured and returns a copy of
// it. The returned slice is owned by the caller.
func (s *PortAudioSource) Read() ([]int16, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("source is closed")
	}
	stream := s.stream
	s.mu.Unlock()

	if err := stream.Read(); err != nil {
		return nil, fmt.Errorf("failed to read from input stream: %w", err)
	}

	frame := make([]int16, len(s.buffer))
	copy(frame, s.buffer)
	return frame, nil
}

// Close stops the stream and terminates PortAudio. Safe to call more than once.
func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.stream.Stop(); err != nil {
		firstErr = err
	}
	if err := s.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// ListDevices returns the names of available input devices, in index order.
// Used by the daemon's --list-devices flag.
func ListDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	names := make([]string, 0, len(devices))
	for i, dev := range devices {
		if dev.MaxInputChannels < 1 {
			continue
		}
		names = append(names, fmt.Sprintf("%d: %s", i, dev.Name))
	}
	return names, nil
}
