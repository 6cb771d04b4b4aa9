// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quotesense-api/internal/config"
	"quotesense-api/internal/infra/api"
	"quotesense-api/internal/infra/logging"
	"quotesense-api/internal/infra/metrics"
	"quotesense-api/internal/infra/sched"
	"quotesense-api/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop provider, console logs, raw output in errors)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.AI.Provider, cfg.AI.PromptVersion)

	// ---- Prompt template ----
	tmpl, err := usecase.LookupTemplate(cfg.AI.PromptVersion)
	if cfg.AI.PromptFile != "" {
		tmpl, err = usecase.LoadTemplateFile(cfg.AI.PromptFile, cfg.AI.PromptFields)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt template")
	}

	// ---- Completion client ----
	ai, err := buildCompletionClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("completion client")
	}

	tokens := usecase.NewTiktokenCounter("cl100k_base")
	if cfg.AI.MaxInputTokens > 0 {
		if err := tokens.LoadErr(); err != nil {
			logger.Warn().Err(err).Msg("tiktoken encoding unavailable; using estimated token counts")
		}
	}

	estimator := usecase.NewEstimateUseCase(ai, usecase.NewPromptBuilder(tmpl), tokens, usecase.EstimatorOptions{
		TextModel:      cfg.AI.TextModel,
		VisionModel:    cfg.AI.VisionModel,
		Temperature:    cfg.AI.SamplingTemperature(),
		MaxTokens:      cfg.AI.MaxTokens,
		RequestTimeout: cfg.AI.RequestTimeout,
		MaxInputTokens: cfg.AI.MaxInputTokens,
		Dev:            cfg.Runtime.Dev,
	}, logger)

	// ---- HTTP ----
	srv := api.NewServer(estimator, api.Options{
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ExposeRawOutput: cfg.ExposeRawOutput(),
	}, logger)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		// the completion call may take up to the request timeout
		WriteTimeout: cfg.AI.RequestTimeout + 10*time.Second,
	}
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("provider", cfg.AI.Provider).
			Str("text_model", cfg.AI.TextModel).
			Str("vision_model", cfg.AI.VisionModel).
			Str("prompt_version", tmpl.Version).
			Msg("QuoteSense API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Msg("metrics listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	// ---- Heartbeat ----
	go func() { _ = sched.NewHeartbeat(cfg.Heartbeat.Interval, logger).Run(ctx) }()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}
