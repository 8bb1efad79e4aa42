package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/missionai/agrimesh"
	anthropicprovider "github.com/missionai/agrimesh/aiservice/anthropic"
	openaiprovider "github.com/missionai/agrimesh/aiservice/openai"
	"github.com/missionai/agrimesh/blob"
	"github.com/missionai/agrimesh/config"
	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/logging"
	"github.com/missionai/agrimesh/resilience"
	"github.com/missionai/agrimesh/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	mesh, closeFn, err := buildMesh(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.New(mesh, func(o *server.Options) { o.Logger = logger }).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newLogger(cfg config.Config) *logging.AgriLogger {
	lc := logging.DefaultLoggerConfig()
	lc.Level = logging.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	return logging.NewLogger(lc)
}

// buildMesh assembles an AgriMesh from configuration: durable storage and AI
// providers when configured, in-memory defaults otherwise.
func buildMesh(cfg config.Config, logger *logging.AgriLogger) (*agrimesh.AgriMesh, func(), error) {
	closeFn := func() {}

	var durable core.BlobStore
	if cfg.StoragePath != "" {
		store, err := blob.NewSQLiteStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session storage: %w", err)
		}
		durable = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close session storage", "error", err)
			}
		}
	}

	var speech core.SpeechService
	var translation core.TranslationService
	var inference core.InferenceService
	if cfg.OpenAIAPIKey != "" {
		provider := openaiprovider.New()
		speech = provider
		translation = provider
		inference = provider
	}
	if cfg.AnthropicAPIKey != "" {
		inference = anthropicprovider.New(func(o *anthropicprovider.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		})
	}

	mesh := agrimesh.New(func(o *agrimesh.Options) {
		o.Durable = durable
		o.Speech = speech
		o.Translation = translation
		o.Inference = inference
		o.FailureThreshold = cfg.FailureThreshold
		o.OpenTimeout = cfg.OpenTimeout
		o.Retry = resilience.RetryPolicy{
			MaxRetries:    cfg.MaxRetries,
			BackoffFactor: cfg.BackoffFactor,
			BackoffUnit:   time.Second,
		}
		o.Logger = logger
	})
	return mesh, closeFn, nil
}
