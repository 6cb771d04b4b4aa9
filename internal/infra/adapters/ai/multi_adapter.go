// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"strings"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*MultiAIAdapter)(nil)

type MultiAIAdapter struct {
	defaultProvider string // e.g., "openai" or "gemini"
	byProvider      map[string]adapter.CompletionClient
	modelToProvider map[string]string // model -> provider
}

// NewMultiAIAdapter only knows a default provider. Each provider adapter owns
// its default model.
func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]adapter.CompletionClient,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiAIAdapter) Name() string { return "multi" }

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"), strings.HasPrefix(l, "o4"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

// Pick returns the adapter serving model, or nil when that provider is not configured.
func (m *MultiAIAdapter) Pick(model string) adapter.CompletionClient {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	if model == "" {
		return m.byProvider[m.defaultProvider]
	}
	return nil
}

func (m *MultiAIAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	a := m.Pick(req.Model)
	if a == nil {
		return adapter.CompletionResult{}, domain.NewError(domain.KindConfiguration,
			"no provider configured for model "+req.Model)
	}
	return a.Complete(ctx, req)
}
