package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"spoken-answer/config"
	"spoken-answer/internal/application"
	"spoken-answer/internal/infra/audio"
	"spoken-answer/internal/infra/azure"
	"spoken-answer/internal/infra/cache"
	"spoken-answer/internal/infra/metrics"
	"spoken-answer/internal/infra/openai"
	"spoken-answer/internal/infra/pushover"
	"spoken-answer/internal/infra/resultlog"
	"spoken-answer/internal/interpreter"
	"spoken-answer/pkg/logx"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", logx.Error(err))
		os.Exit(1)
	}

	logger := slog.New(logx.NewHandler(os.Stdout, cfg.Log.Format, cfg.Log.Level))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service error", logx.Error(err))
		os.Exit(1)
	}

	logger.Info("shutting down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	stt, err := createSTT(cfg, logger)
	if err != nil {
		return err
	}

	source := createAudioSource(cfg.Audio, logger)

	sinks := application.MultiSink{}
	registry := prometheus.NewRegistry()

	if cfg.Metrics.Enabled {
		metricsSink, err := metrics.NewSink(registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		sinks = append(sinks, metricsSink)
	}

	if cfg.Pushover.Enabled {
		sinks = append(sinks, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey))
	}

	if cfg.Results.Path != "" {
		writer, err := resultlog.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer closeQuietly(writer, logger)
		sinks = append(sinks, writer)
	}

	service := application.NewAnswerService(
		source,
		stt,
		interpreter.New(),
		sinks,
		logger,
	)

	if httpSource, ok := source.(*audio.HTTPSource); ok {
		httpSource.SetEvaluator(service)
	}

	logger.Info("starting spoken answer service",
		"audio_source", cfg.Audio.Source,
		"stt_provider", cfg.STT.Provider,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return service.Run(ctx)
	})

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Addr, registry, logger)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	return g.Wait()
}

func createSTT(cfg *config.Config, logger *slog.Logger) (application.SpeechToText, error) {
	var stt application.SpeechToText

	switch cfg.STT.Provider {
	case config.ProviderAzure:
		client, err := azure.NewFastTranscriptionClient(cfg.Azure.Key, cfg.Azure.Region, cfg.Azure.Locales...)
		if err != nil {
			return nil, fmt.Errorf("creating azure client: %w", err)
		}
		info := client.Info()
		logger.Info("azure fast transcription configured", "region", info.Region, "endpoint", info.Endpoint)
		stt = client
	case config.ProviderOpenAI:
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	default:
		return &application.NoopSTT{}, nil
	}

	if ttl := cfg.CacheTTL(); ttl > 0 {
		stt = cache.NewCachingSTT(stt, ttl, logger)
	}
	return stt, nil
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir, logger)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		logger.Warn("unknown audio source, using http", "source", cfg.Source)
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

func closeQuietly(c io.Closer, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("closing", logx.Error(err))
	}
}
