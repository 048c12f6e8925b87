package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Segmentation  SegmentationConfig  `yaml:"segmentation"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	HTTP          HTTPConfig          `yaml:"http"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// AudioConfig contains microphone capture parameters
type AudioConfig struct {
	SampleRate  int `yaml:"sample_rate"`  // Hz, e.g. 16000
	ChunkFrames int `yaml:"chunk_frames"` // samples read per device call, e.g. 1024
	DeviceIndex int `yaml:"device_index"` // input device index, -1 for system default
}

// SegmentationConfig contains speech/silence segmentation parameters
type SegmentationConfig struct {
	SilenceCutoff      float32 `yaml:"silence_cutoff"`       // normalized amplitude 0..1
	MinAudioDuration   int     `yaml:"min_audio_duration"`   // seconds
	MinSilenceDuration int     `yaml:"min_silence_duration"` // seconds
	RealTime           bool    `yaml:"real_time"`
	QueueCapacity      int     `yaml:"queue_capacity"`
	SilenceWarning     int     `yaml:"silence_warning"` // seconds before no-audio advisory
}

// TranscriptionConfig contains transcription backend configuration
type TranscriptionConfig struct {
	UseLocal         bool   `yaml:"use_local"`
	ModelPath        string `yaml:"model_path"` // local model directory
	Endpoint         string `yaml:"endpoint"`   // remote transcription URL
	APIKey           string `yaml:"api_key"`
	Timeout          int    `yaml:"timeout"` // seconds, per request
	MaxRetries       int    `yaml:"max_retries"`
	AllowSelfSigned  bool   `yaml:"allow_self_signed"`
	WholeFileTimeout int    `yaml:"whole_file_timeout"` // seconds, ceiling for the one-shot upload
}

// HTTPConfig contains status API server configuration
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns a configuration populated with the standard defaults.
// Values are still subject to Validate after the YAML overlay.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:  16000,
			ChunkFrames: 1024,
			DeviceIndex: -1,
		},
		Segmentation: SegmentationConfig{
			SilenceCutoff:      0.01,
			MinAudioDuration:   5,
			MinSilenceDuration: 1,
			RealTime:           true,
			QueueCapacity:      64,
			SilenceWarning:     10,
		},
		Transcription: TranscriptionConfig{
			Timeout:          30,
			MaxRetries:       3,
			WholeFileTimeout: 180,
		},
		HTTP: HTTPConfig{
			Address: "127.0.0.1",
			Port:    8765,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Segmentation.Validate(); err != nil {
		return fmt.Errorf("segmentation config: %w", err)
	}

	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates audio capture configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}

	if a.ChunkFrames <= 0 {
		return fmt.Errorf("chunk_frames must be positive, got %d", a.ChunkFrames)
	}

	if a.DeviceIndex < -1 {
		return fmt.Errorf("device_index must be -1 (default) or a non-negative index, got %d", a.DeviceIndex)
	}

	return nil
}

// Validate validates segmentation configuration
func (s *SegmentationConfig) Validate() error {
	if s.SilenceCutoff < 0 || s.SilenceCutoff > 1 {
		return fmt.Errorf("silence_cutoff must be between 0 and 1, got %f", s.SilenceCutoff)
	}

	if s.MinAudioDuration <= 0 {
		return fmt.Errorf("min_audio_duration must be positive, got %d", s.MinAudioDuration)
	}

	if s.MinSilenceDuration <= 0 {
		return fmt.Errorf("min_silence_duration must be positive, got %d", s.MinSilenceDuration)
	}

	if s.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be at least 1, got %d", s.QueueCapacity)
	}

	if s.SilenceWarning < 1 {
		return fmt.Errorf("silence_warning must be at least 1 second, got %d", s.SilenceWarning)
	}

	return nil
}

// Validate validates transcription configuration
func (t *TranscriptionConfig) Validate() error {
	if t.UseLocal {
		if t.ModelPath == "" {
			return fmt.Errorf("model_path cannot be empty when use_local is set")
		}
	} else {
		if t.Endpoint == "" {
			return fmt.Errorf("endpoint cannot be empty when use_local is not set")
		}
	}

	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}

	if t.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", t.MaxRetries)
	}

	if t.WholeFileTimeout < 1 {
		return fmt.Errorf("whole_file_timeout must be at least 1 second, got %d", t.WholeFileTimeout)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetMinAudioDuration returns the minimum audio duration as a time.Duration
func (s *SegmentationConfig) GetMinAudioDuration() time.Duration {
	return time.Duration(s.MinAudioDuration) * time.Second
}

// GetMinSilenceDuration returns the minimum silence duration as a time.Duration
func (s *SegmentationConfig) GetMinSilenceDuration() time.Duration {
	return time.Duration(s.MinSilenceDuration) * time.Second
}

// GetSilenceWarning returns the silence warning threshold as a time.Duration
func (s *SegmentationConfig) GetSilenceWarning() time.Duration {
	return time.Duration(s.SilenceWarning) * time.Second
}

// GetTimeoutDuration returns the per-request transcription timeout as a time.Duration
func (t *TranscriptionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// GetWholeFileTimeout returns the whole-file upload ceiling as a time.Duration
func (t *TranscriptionConfig) GetWholeFileTimeout() time.Duration {
	return time.Duration(t.WholeFileTimeout) * time.Second
}
