package transcription

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/medscribe/capture-service/internal/audio"
)

// RemoteConfig contains remote transcription client configuration
type RemoteConfig struct {
	Endpoint        string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	AllowSelfSigned bool // skip TLS certificate verification
}

// RemoteBackend sends segments to a speech-to-text HTTP API as multipart
// WAV uploads. Failed requests are retried with exponential backoff.
type RemoteBackend struct {
	config     RemoteConfig
	httpClient *http.Client

	// Statistics
	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	totalRetries    uint64
	avgResponseTime time.Duration

	mu sync.RWMutex
}

// ClientStats represents remote client statistics
type ClientStats struct {
	TotalRequests   uint64        `json:"total_requests"`
	SuccessRequests uint64        `json:"success_requests"`
	FailedRequests  uint64        `json:"failed_requests"`
	SuccessRate     float64       `json:"success_rate"`
	TotalRetries    uint64        `json:"total_retries"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
}

// NewRemote creates a remote transcription backend
func NewRemote(config RemoteConfig) (*RemoteBackend, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	if config.MaxRetries < 0 {
		config.MaxRetries = 3
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	if config.AllowSelfSigned {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &RemoteBackend{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}, nil
}

// Name identifies the backend
func (b *RemoteBackend) Name() string {
	return "remote"
}

// Transcribe uploads one segment and returns its transcription. Retryable
// failures are retried up to MaxRetries times with exponential backoff;
// ctx cancellation aborts both in-flight requests and backoff waits.
func (b *RemoteBackend) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()
	b.incrementTotalRequests()

	var lastErr error

	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			b.incrementTotalRetries()

			backoffTime := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			if backoffTime > 30*time.Second {
				backoffTime = 30 * time.Second
			}

			select {
			case <-time.After(backoffTime):
			case <-ctx.Done():
				b.incrementFailedRequests()
				return nil, ctx.Err()
			}
		}

		result, err := b.doRequest(ctx, req)
		if err == nil {
			b.incrementSuccessRequests()
			b.updateAvgResponseTime(time.Since(startTime))
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			b.incrementFailedRequests()
			return nil, ctx.Err()
		}

		if !isRetryableError(err) {
			break
		}
	}

	b.incrementFailedRequests()
	return nil, fmt.Errorf("transcription failed after %d attempts: %w", b.config.MaxRetries+1, lastErr)
}

// doRequest performs a single HTTP request to the transcription API
func (b *RemoteBackend) doRequest(ctx context.Context, req *Request) (*Result, error) {
	body, contentType, err := createMultipartBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.config.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if b.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.config.APIKey)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	return &result, nil
}

// createMultipartBody encodes the segment as a WAV file in a
// multipart/form-data body under the "audio" field.
func createMultipartBody(req *Request) (io.Reader, string, error) {
	data, err := audio.EncodeWAV(req.Samples, req.SampleRate)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode WAV payload: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("audio", "segment.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := fileWriter.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.WriteField("sample_rate", fmt.Sprintf("%d", req.SampleRate)); err != nil {
		return nil, "", fmt.Errorf("failed to write field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// isRetryableError determines if an error is worth retrying. Server errors,
// rate limiting and connection failures are retryable; client errors are not.
func isRetryableError(err error) bool {
	if err == context.DeadlineExceeded {
		return true
	}

	errStr := err.Error()

	if strings.Contains(errStr, "HTTP error 5") {
		return true
	}

	if strings.Contains(errStr, "HTTP error 429") {
		return true
	}

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "refused") {
		return true
	}

	return false
}

// Statistics methods
func (b *RemoteBackend) incrementTotalRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalRequests++
}

func (b *RemoteBackend) incrementSuccessRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.successRequests++
}

func (b *RemoteBackend) incrementFailedRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failedRequests++
}

func (b *RemoteBackend) incrementTotalRetries() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalRetries++
}

func (b *RemoteBackend) updateAvgResponseTime(responseTime time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Simple moving average
	if b.avgResponseTime == 0 {
		b.avgResponseTime = responseTime
	} else {
		b.avgResponseTime = (b.avgResponseTime + responseTime) / 2
	}
}

// GetStats returns current client statistics
func (b *RemoteBackend) GetStats() ClientStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	successRate := float64(0)
	if b.totalRequests > 0 {
		successRate = float64(b.successRequests) / float64(b.totalRequests) * 100
	}

	return ClientStats{
		TotalRequests:   b.totalRequests,
		SuccessRequests: b.successRequests,
		FailedRequests:  b.failedRequests,
		SuccessRate:     successRate,
		TotalRetries:    b.totalRetries,
		AvgResponseTime: b.avgResponseTime,
	}
}

// Close releases HTTP client resources
func (b *RemoteBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}
