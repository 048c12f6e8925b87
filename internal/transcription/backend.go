package transcription

import "context"

// Request carries one audio segment to a backend. Samples are mono PCM16
// at SampleRate.
type Request struct {
	Samples    []int16
	SampleRate int
}

// Result is the transcription of one request.
type Result struct {
	Text string `json:"text"`
}

// Backend transcribes audio segments. Implementations must honor ctx
// cancellation: an aborted request returns ctx.Err() as soon as practical.
type Backend interface {
	// Transcribe converts one segment to text.
	Transcribe(ctx context.Context, req *Request) (*Result, error)

	// Name identifies the backend in logs and the status API.
	Name() string

	// Close releases backend resources.
	Close() error
}
