package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medscribe/capture-service/internal/audio"
)

func testRequest() *Request {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 3000)
	}
	return &Request{Samples: samples, SampleRate: 16000}
}

func TestRemoteTranscribe(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}

		file, _, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("missing audio form file: %v", err)
			http.Error(w, "missing audio", http.StatusBadRequest)
			return
		}
		defer file.Close()

		buf := make([]byte, 4)
		if _, err := file.Read(buf); err != nil || string(buf) != "RIFF" {
			t.Errorf("uploaded payload is not a WAV file, got %q", buf)
		}

		if r.FormValue("sample_rate") != "16000" {
			t.Errorf("unexpected sample_rate field: %q", r.FormValue("sample_rate"))
		}

		json.NewEncoder(w).Encode(Result{Text: "hello world"})
	}))
	defer server.Close()

	backend, err := NewRemote(RemoteConfig{
		Endpoint: server.URL,
		APIKey:   "secret-key",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRemote failed: %v", err)
	}
	defer backend.Close()

	result, err := backend.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if result.Text != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", result.Text)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Result{Text: "recovered"})
	}))
	defer server.Close()

	backend, err := NewRemote(RemoteConfig{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	if err != nil {
		t.Fatalf("NewRemote failed: %v", err)
	}
	defer backend.Close()

	result, err := backend.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Transcribe should succeed after retries: %v", err)
	}

	if result.Text != "recovered" {
		t.Errorf("expected %q, got %q", "recovered", result.Text)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}

	stats := backend.GetStats()
	if stats.TotalRetries != 2 {
		t.Errorf("expected 2 retries recorded, got %d", stats.TotalRetries)
	}
}

func TestRemoteDoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	backend, _ := NewRemote(RemoteConfig{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	defer backend.Close()

	_, err := backend.Transcribe(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "HTTP error 400") {
		t.Errorf("expected HTTP error 400 in message, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", attempts)
	}
}

func TestRemoteCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	backend, _ := NewRemote(RemoteConfig{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 5,
	})
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := backend.Transcribe(ctx, testRequest())
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	// Cancellation must short-circuit the backoff waits.
	if time.Since(start) > 2*time.Second {
		t.Error("canceled request should not wait out the backoff schedule")
	}
}

func TestRemoteValidation(t *testing.T) {
	if _, err := NewRemote(RemoteConfig{}); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestMultipartBodyRoundTrip(t *testing.T) {
	req := testRequest()
	body, contentType, err := createMultipartBody(req)
	if err != nil {
		t.Fatalf("createMultipartBody failed: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Errorf("unexpected content type: %q", contentType)
	}
	if body == nil {
		t.Fatal("expected non-nil body")
	}

	// The WAV payload decodes back to the original samples.
	wav, err := audio.EncodeWAV(req.Samples, req.SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	samples, rate, err := audio.DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != req.SampleRate || len(samples) != len(req.Samples) {
		t.Errorf("WAV round trip mismatch: rate=%d len=%d", rate, len(samples))
	}
}
