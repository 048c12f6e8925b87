package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/medscribe/capture-service/internal/audio"
)

// LocalBackend transcribes segments offline through a Vosk model. The
// recognizer is stateful and processes one segment at a time.
type LocalBackend struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

// voskResult parses the JSON returned by the Vosk recognizer.
type voskResult struct {
	Text string `json:"text"`
}

// NewLocal loads a Vosk model from modelPath and prepares a recognizer
// for the given sample rate.
func NewLocal(modelPath string, sampleRate int) (*LocalBackend, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model not found: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	return &LocalBackend{
		model:      model,
		recognizer: rec,
	}, nil
}

// Name identifies the backend
func (b *LocalBackend) Name() string {
	return "local"
}

// Transcribe runs the segment through the recognizer and returns the
// final text. The recognizer is reset between segments.
func (b *LocalBackend) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recognizer == nil {
		return nil, fmt.Errorf("backend is closed")
	}

	b.recognizer.AcceptWaveform(audio.SamplesToBytes(req.Samples))
	resultJSON := b.recognizer.FinalResult()
	b.recognizer.Reset()

	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse recognizer result: %w", err)
	}

	return &Result{Text: result.Text}, nil
}

// Close frees the model and recognizer
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recognizer != nil {
		b.recognizer.Free()
		b.recognizer = nil
	}

	if b.model != nil {
		b.model.Free()
		b.model = nil
	}

	return nil
}
