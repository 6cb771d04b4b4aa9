package ai

import (
	"context"

	"quotesense-api/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionClient = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.CompletionClient
	sem   chan struct{}
}

// NewLimitedAI caps outstanding upstream calls. Waiting callers give up when
// their context ends.
func NewLimitedAI(inner adapter.CompletionClient, maxConcurrent int) adapter.CompletionClient {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Name() string { return l.inner.Name() }

func (l *limitedAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.CompletionResult{}, transportError(l.inner.Name(), ctx.Err())
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, req)
}
