package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
	"quotesense-api/internal/infra/logging"
	"quotesense-api/internal/infra/metrics"
)

var _ adapter.CompletionClient = (*instrumentedAI)(nil)

type instrumentedAI struct {
	inner adapter.CompletionClient
	log   *zerolog.Logger
}

// NewInstrumentedAI records latency, outcome and token usage of every call.
func NewInstrumentedAI(inner adapter.CompletionClient, logger *zerolog.Logger) adapter.CompletionClient {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &instrumentedAI{inner: inner, log: logger}
}

func (i *instrumentedAI) Name() string { return i.inner.Name() }

func (i *instrumentedAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	start := time.Now()
	res, err := i.inner.Complete(ctx, req)
	took := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	model := res.Model
	if model == "" {
		model = req.Model
	}
	metrics.ObserveCompletion(i.inner.Name(), model, outcome, res.Usage.PromptTokens, res.Usage.CompletionTokens, took)

	l := logging.With(ctx, i.log)
	ev := l.Debug()
	if err != nil {
		ev = l.Warn().Err(err)
	}
	ev.Str("provider", i.inner.Name()).
		Str("model", model).
		Str("outcome", outcome).
		Int("tokens_in", res.Usage.PromptTokens).
		Int("tokens_out", res.Usage.CompletionTokens).
		Dur("latency", took).
		Msg("completion call")
	return res, err
}
