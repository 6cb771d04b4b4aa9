package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
	ai "quotesense-api/internal/infra/adapters/ai"
	"quotesense-api/internal/usecase"
)

type flakyAI struct {
	fails []error
	calls int
}

func (f *flakyAI) Name() string { return "flaky" }

func (f *flakyAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	f.calls++
	if f.calls <= len(f.fails) {
		return adapter.CompletionResult{}, f.fails[f.calls-1]
	}
	return adapter.CompletionResult{Text: `{}`}, nil
}

func TestRetryingAI(t *testing.T) {
	unavailable := domain.NewError(domain.KindUpstreamUnavailable, "down")
	limited := domain.NewError(domain.KindRateLimited, "slow down")

	t.Run("should pass through with zero retries", func(t *testing.T) {
		inner := &flakyAI{fails: []error{unavailable}}
		c := ai.NewRetryingAI(inner, 0, time.Millisecond, time.Millisecond, nil)
		_, err := c.Complete(context.Background(), adapter.CompletionRequest{})
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("should retry transient kinds", func(t *testing.T) {
		inner := &flakyAI{fails: []error{unavailable, limited}}
		c := ai.NewRetryingAI(inner, 3, time.Millisecond, 2*time.Millisecond, nil)
		res, err := c.Complete(context.Background(), adapter.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, `{}`, res.Text)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("should not retry upstream errors", func(t *testing.T) {
		inner := &flakyAI{fails: []error{domain.NewError(domain.KindUpstreamError, "bad")}}
		c := ai.NewRetryingAI(inner, 3, time.Millisecond, time.Millisecond, nil)
		_, err := c.Complete(context.Background(), adapter.CompletionRequest{})
		assert.ErrorIs(t, err, domain.ErrUpstreamError)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("should stop after max retries", func(t *testing.T) {
		inner := &flakyAI{fails: []error{limited, limited, limited, limited}}
		c := ai.NewRetryingAI(inner, 2, time.Millisecond, time.Millisecond, nil)
		_, err := c.Complete(context.Background(), adapter.CompletionRequest{})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Equal(t, 3, inner.calls)
	})
}

type blockingAI struct {
	running atomic.Int32
	peak    atomic.Int32
	release chan struct{}
}

func (b *blockingAI) Name() string { return "blocking" }

func (b *blockingAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	n := b.running.Add(1)
	defer b.running.Add(-1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-b.release
	return adapter.CompletionResult{}, nil
}

func TestLimitedAI(t *testing.T) {
	t.Run("should cap concurrent calls", func(t *testing.T) {
		inner := &blockingAI{release: make(chan struct{})}
		c := ai.NewLimitedAI(inner, 2)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.Complete(context.Background(), adapter.CompletionRequest{})
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(inner.release)
		wg.Wait()
		assert.LessOrEqual(t, inner.peak.Load(), int32(2))
	})

	t.Run("should give up waiting when context ends", func(t *testing.T) {
		inner := &blockingAI{release: make(chan struct{})}
		defer close(inner.release)
		c := ai.NewLimitedAI(inner, 1)

		go func() { _, _ = c.Complete(context.Background(), adapter.CompletionRequest{}) }()
		time.Sleep(20 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Complete(ctx, adapter.CompletionRequest{})
		assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable), "got %v", err)
	})

	t.Run("should return inner when unlimited", func(t *testing.T) {
		inner := &flakyAI{}
		assert.Same(t, adapter.CompletionClient(inner), ai.NewLimitedAI(inner, 0))
	})
}

func TestNoopAIAdapter(t *testing.T) {
	res, err := ai.NewNoopAIAdapter().Complete(context.Background(), adapter.CompletionRequest{Model: "noop-estimator"})
	require.NoError(t, err)
	assert.Equal(t, "noop-estimator", res.Model)

	tmpl, err := usecase.LookupTemplate("v1.0")
	require.NoError(t, err)
	_, missing, err := usecase.ParseReport(res.Text, tmpl.ExpectedFields)
	require.NoError(t, err)
	assert.Empty(t, missing)

	var report struct {
		DIYFeasibility int `json:"diy_feasibility"`
		CostEstimate   struct {
			Low     string `json:"low"`
			Average string `json:"average"`
			High    string `json:"high"`
		} `json:"cost_estimate"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &report))
	assert.True(t, report.DIYFeasibility >= 0 && report.DIYFeasibility <= 10)
	assert.NotEmpty(t, report.CostEstimate.Low)
	assert.NotEmpty(t, report.CostEstimate.Average)
	assert.NotEmpty(t, report.CostEstimate.High)
}

func TestInstrumentedAI(t *testing.T) {
	inner := &flakyAI{fails: []error{domain.NewError(domain.KindRateLimited, "x")}}
	c := ai.NewInstrumentedAI(inner, nil)
	assert.Equal(t, "flaky", c.Name())
	_, err := c.Complete(context.Background(), adapter.CompletionRequest{Model: "gpt-4o-mini"})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	_, err = c.Complete(context.Background(), adapter.CompletionRequest{Model: "gpt-4o-mini"})
	assert.NoError(t, err)
}
