package ai

import (
	"context"
	"time"

	"quotesense-api/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*NoopAIAdapter)(nil)

// noopReport matches the v1.0 report schema.
const noopReport = `{"trade":["Plumber"],"confidence":80,"diy_feasibility":5,` +
	`"complexity":"Medium","cost_estimate":{"low":"AUD 150","average":"AUD 250","high":"AUD 400"},` +
	`"is_expensive":false,"emergency_level":"Medium","risk_alert":"Water damage risk if left unattended",` +
	`"clarifying_questions":["Where exactly is the leak?"],` +
	`"recommendation":"Dev mode estimate. Configure a provider key for real analysis."}`

// NoopAIAdapter answers every request with a fixed valid report. Dev mode only.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{delay: 50 * time.Millisecond}
}

func (a *NoopAIAdapter) Name() string { return "noop" }

func (a *NoopAIAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return adapter.CompletionResult{}, transportError(a.Name(), ctx.Err())
	}
	return adapter.CompletionResult{
		Text:  noopReport,
		Model: modelOrDefault(req.Model, "noop-estimator"),
	}, nil
}
