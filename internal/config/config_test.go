package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate:  16000,
			ChunkFrames: 1024,
			DeviceIndex: -1,
		},
		Segmentation: SegmentationConfig{
			SilenceCutoff:      0.02,
			MinAudioDuration:   5,
			MinSilenceDuration: 1,
			RealTime:           true,
			QueueCapacity:      64,
			SilenceWarning:     10,
		},
		Transcription: TranscriptionConfig{
			Endpoint:         "https://stt.example.com/whisperaudio",
			APIKey:           "test-key",
			Timeout:          30,
			MaxRetries:       3,
			WholeFileTimeout: 180,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: "127.0.0.1",
			Port:    8765,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "invalid sample rate",
			mutate: func(c *Config) {
				c.Audio.SampleRate = 0
			},
			expectError: true,
			errorMsg:    "sample_rate must be positive",
		},
		{
			name: "invalid chunk frames",
			mutate: func(c *Config) {
				c.Audio.ChunkFrames = -1
			},
			expectError: true,
			errorMsg:    "chunk_frames must be positive",
		},
		{
			name: "silence cutoff above range",
			mutate: func(c *Config) {
				c.Segmentation.SilenceCutoff = 1.5
			},
			expectError: true,
			errorMsg:    "silence_cutoff must be between 0 and 1",
		},
		{
			name: "non-positive audio duration",
			mutate: func(c *Config) {
				c.Segmentation.MinAudioDuration = 0
			},
			expectError: true,
			errorMsg:    "min_audio_duration must be positive",
		},
		{
			name: "non-positive silence duration",
			mutate: func(c *Config) {
				c.Segmentation.MinSilenceDuration = -3
			},
			expectError: true,
			errorMsg:    "min_silence_duration must be positive",
		},
		{
			name: "local mode without model path",
			mutate: func(c *Config) {
				c.Transcription.UseLocal = true
				c.Transcription.ModelPath = ""
			},
			expectError: true,
			errorMsg:    "model_path cannot be empty",
		},
		{
			name: "remote mode without endpoint",
			mutate: func(c *Config) {
				c.Transcription.UseLocal = false
				c.Transcription.Endpoint = ""
			},
			expectError: true,
			errorMsg:    "endpoint cannot be empty",
		},
		{
			name: "invalid http port",
			mutate: func(c *Config) {
				c.HTTP.Port = 70000
			},
			expectError: true,
			errorMsg:    "http port must be between 1 and 65535",
		},
		{
			name: "http disabled skips port check",
			mutate: func(c *Config) {
				c.HTTP.Enabled = false
				c.HTTP.Port = 0
			},
			expectError: false,
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			expectError: true,
			errorMsg:    "level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected validation error containing %q, got nil", tt.errorMsg)
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	yamlContent := `
audio:
  sample_rate: 16000
  chunk_frames: 1024
  device_index: 2
segmentation:
  silence_cutoff: 0.02
  min_audio_duration: 5
  min_silence_duration: 1
  real_time: true
  queue_capacity: 64
  silence_warning: 10
transcription:
  endpoint: "https://stt.example.com/whisperaudio"
  api_key: "secret"
  timeout: 30
  max_retries: 3
  whole_file_timeout: 180
http:
  enabled: true
  address: "127.0.0.1"
  port: 8765
logging:
  level: "debug"
  format: "json"
  output: "stderr"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.DeviceIndex != 2 {
		t.Errorf("expected device_index 2, got %d", cfg.Audio.DeviceIndex)
	}
	if cfg.Segmentation.SilenceCutoff != 0.02 {
		t.Errorf("expected silence_cutoff 0.02, got %f", cfg.Segmentation.SilenceCutoff)
	}
	if !cfg.Segmentation.RealTime {
		t.Error("expected real_time to be true")
	}
	if cfg.Transcription.APIKey != "secret" {
		t.Errorf("expected api_key 'secret', got %q", cfg.Transcription.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %q", cfg.Logging.Level)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	yamlContent := `
transcription:
  endpoint: "https://stt.example.com/whisperaudio"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("expected default sample_rate 16000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.ChunkFrames != 1024 {
		t.Errorf("expected default chunk_frames 1024, got %d", cfg.Audio.ChunkFrames)
	}
	if cfg.Segmentation.SilenceWarning != 10 {
		t.Errorf("expected default silence_warning 10, got %d", cfg.Segmentation.SilenceWarning)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()

	if got := cfg.Segmentation.GetMinAudioDuration(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
	if got := cfg.Segmentation.GetMinSilenceDuration(); got != 1*time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := cfg.Transcription.GetWholeFileTimeout(); got != 180*time.Second {
		t.Errorf("expected 180s, got %v", got)
	}
}
