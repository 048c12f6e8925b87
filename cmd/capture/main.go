package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medscribe/capture-service/internal/config"
	"github.com/medscribe/capture-service/internal/device"
	"github.com/medscribe/capture-service/internal/metrics"
	"github.com/medscribe/capture-service/internal/segmenter"
	"github.com/medscribe/capture-service/internal/server"
	"github.com/medscribe/capture-service/internal/session"
	"github.com/medscribe/capture-service/internal/transcription"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "capture-service"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	listDevices := flag.Bool("list-devices", false, "List available input devices and exit")
	flag.Parse()

	if *listDevices {
		names, err := device.ListDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list devices: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("chunk_frames", cfg.Audio.ChunkFrames),
		slog.Int("device_index", cfg.Audio.DeviceIndex),
		slog.Float64("silence_cutoff", float64(cfg.Segmentation.SilenceCutoff)),
		slog.Int("min_audio_duration", cfg.Segmentation.MinAudioDuration),
		slog.Int("min_silence_duration", cfg.Segmentation.MinSilenceDuration),
		slog.Bool("real_time", cfg.Segmentation.RealTime),
		slog.Bool("use_local", cfg.Transcription.UseLocal),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()

	// Initialize transcription backend
	backend, err := newBackend(cfg)
	if err != nil {
		logger.Error("Failed to create transcription backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()
	logger.Info("Transcription backend initialized", slog.String("backend", backend.Name()))

	// Initialize session manager
	sessionConfig := session.Config{
		Policy: segmenter.Config{
			SampleRate:         cfg.Audio.SampleRate,
			ChunkFrames:        cfg.Audio.ChunkFrames,
			SilenceCutoff:      cfg.Segmentation.SilenceCutoff,
			MinAudioDuration:   cfg.Segmentation.GetMinAudioDuration().Seconds(),
			MinSilenceDuration: cfg.Segmentation.GetMinSilenceDuration().Seconds(),
			RealTime:           cfg.Segmentation.RealTime,
		},
		QueueCapacity:    cfg.Segmentation.QueueCapacity,
		SilenceWarning:   cfg.Segmentation.GetSilenceWarning().Seconds(),
		WholeFileTimeout: cfg.Transcription.GetWholeFileTimeout(),
	}

	sessionMgr, err := session.NewManager(sessionConfig, device.OpenPortAudio,
		cfg.Audio.DeviceIndex, backend, logger, appMetrics)
	if err != nil {
		logger.Error("Failed to create session manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize HTTP API server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, sessionMgr, appMetrics)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Transcripts go to stdout; warnings and errors to stderr.
	sink := session.Sink{
		OnTranscript: func(text string) {
			fmt.Println(text)
		},
		OnWarning: func(message string) {
			if message != "" {
				fmt.Fprintln(os.Stderr, message)
			}
		},
		OnError: func(err error) {
			logger.Error("Pipeline error", slog.String("error", err.Error()))
		},
	}

	// Start recording
	sess, err := sessionMgr.Start(sink)
	if err != nil {
		logger.Error("Failed to start recording session", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Signal handling: SIGUSR1 toggles pause, SIGUSR2 cancels, the first
	// INT/TERM stops gracefully and a second one cancels.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)

	logger.Info("Recording, send SIGINT or SIGTERM to stop")

	done := make(chan struct{})
	go func() {
		sess.Wait()
		close(done)
	}()

	stopping := false
loop:
	for {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				if sess.Paused() {
					sess.Resume()
				} else {
					sess.Pause()
				}
			case syscall.SIGUSR2:
				sess.Cancel()
			default:
				if stopping {
					logger.Info("Second shutdown signal, canceling session")
					sess.Cancel()
				} else {
					logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
					stopping = true
					sess.Stop()
				}
			}
		case <-done:
			break loop
		}
	}

	// Stop HTTP server
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	info := sess.Info()
	logger.Info("Final session statistics",
		slog.String("status", info.Status),
		slog.Uint64("segments_enqueued", info.SegmentsEnqueued),
		slog.Uint64("transcripts", info.Transcripts),
		slog.Uint64("transcribe_errors", info.TranscribeErrors),
	)

	logger.Info("Service stopped")
}

// newBackend selects the transcription backend from configuration.
func newBackend(cfg *config.Config) (transcription.Backend, error) {
	if cfg.Transcription.UseLocal {
		return transcription.NewLocal(cfg.Transcription.ModelPath, cfg.Audio.SampleRate)
	}

	return transcription.NewRemote(transcription.RemoteConfig{
		Endpoint:        cfg.Transcription.Endpoint,
		APIKey:          cfg.Transcription.APIKey,
		Timeout:         cfg.Transcription.GetTimeoutDuration(),
		MaxRetries:      cfg.Transcription.MaxRetries,
		AllowSelfSigned: cfg.Transcription.AllowSelfSigned,
	})
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
