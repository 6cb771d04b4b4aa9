package ai

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*retryingAI)(nil)

type retryingAI struct {
	inner      adapter.CompletionClient
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	log        *zerolog.Logger
}

// NewRetryingAI retries UpstreamUnavailable and RateLimited failures with
// exponential backoff. maxRetries <= 0 returns inner unchanged.
func NewRetryingAI(inner adapter.CompletionClient, maxRetries int, baseDelay, maxDelay time.Duration, logger *zerolog.Logger) adapter.CompletionClient {
	if maxRetries <= 0 {
		return inner
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &retryingAI{inner: inner, maxRetries: maxRetries, baseDelay: baseDelay, maxDelay: maxDelay, log: logger}
}

func (r *retryingAI) Name() string { return r.inner.Name() }

func (r *retryingAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.baseDelay
	eb.MaxInterval = r.maxDelay
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.maxRetries)), ctx)

	attempt := 0
	op := func() (adapter.CompletionResult, error) {
		attempt++
		res, err := r.inner.Complete(ctx, req)
		if err == nil {
			return res, nil
		}
		if !domain.IsRetryable(err) || ctx.Err() != nil {
			return res, backoff.Permanent(err)
		}
		return res, err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying completion")
	}
	res, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		if _, ok := domain.AsError(err); !ok {
			// the policy gave up on the context itself
			return res, transportError(r.inner.Name(), err)
		}
	}
	return res, err
}
