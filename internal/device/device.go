package device

// Source delivers fixed-size frames of mono PCM16 audio. Read blocks until
// a full frame is available or the source fails. After Close, Read returns
// an error.
type Source interface {
	// Read returns the next frame of ChunkFrames samples.
	Read() ([]int16, error)

	// Close stops capture and releases the underlying device.
	Close() error
}

// Opener creates a Source with the given capture parameters. deviceIndex
// selects a specific input device; a negative index means the system default.
type Opener func(sampleRate, chunkFrames, deviceIndex int) (Source, error)
