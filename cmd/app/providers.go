package main

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"quotesense-api/internal/config"
	"quotesense-api/internal/domain/ports/adapter"
	aiAdapters "quotesense-api/internal/infra/adapters/ai"
)

// buildCompletionClient wires every provider that has credentials, routes by
// model and wraps the router with the concurrency cap and retry policy.
func buildCompletionClient(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.CompletionClient, error) {
	byProvider := map[string]adapter.CompletionClient{}

	if cfg.AI.OpenAIKey != "" {
		var opts []option.RequestOption
		if cfg.AI.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.AI.OpenAIBaseURL))
		}
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.TextModel, opts...)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		byProvider["openai"] = aiAdapters.NewInstrumentedAI(oa, logger)
	}
	if cfg.AI.GeminiKey != "" {
		gm, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, defaultFor(cfg, "gemini"), nil)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		byProvider["gemini"] = aiAdapters.NewInstrumentedAI(gm, logger)
	}
	if cfg.AI.Provider == "noop" {
		byProvider["noop"] = aiAdapters.NewInstrumentedAI(aiAdapters.NewNoopAIAdapter(), logger)
	}

	var client adapter.CompletionClient = aiAdapters.NewMultiAIAdapter(cfg.AI.Provider, byProvider, cfg.AI.Models)
	client = aiAdapters.NewLimitedAI(client, cfg.AI.ConcurrentLimit)
	client = aiAdapters.NewRetryingAI(client, cfg.AI.Retry.MaxRetries, cfg.AI.Retry.BaseDelay, cfg.AI.Retry.MaxDelay, logger)
	return client, nil
}

func defaultFor(cfg *config.Config, provider string) string {
	if cfg.AI.Provider == provider {
		return cfg.AI.TextModel
	}
	return ""
}
