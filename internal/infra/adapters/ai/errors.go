package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quotesense-api/internal/domain"
)

// statusError maps a non-2xx answer from a provider onto the error taxonomy.
func statusError(provider string, status int, msg string, cause error) *domain.Error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = http.StatusText(status)
	}
	e := &domain.Error{UpstreamStatus: status, Err: cause}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = domain.KindConfiguration
		e.Message = fmt.Sprintf("%s rejected the service credentials: %s", provider, msg)
	case http.StatusTooManyRequests:
		e.Kind = domain.KindRateLimited
		e.Message = fmt.Sprintf("%s rate limit reached, retry later: %s", provider, msg)
	default:
		e.Kind = domain.KindUpstreamError
		e.Message = fmt.Sprintf("%s returned an error: %s", provider, msg)
	}
	return e
}

// transportError covers failures where no HTTP answer was received.
func transportError(provider string, err error) *domain.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.Wrap(domain.KindUpstreamUnavailable, provider+" did not answer in time", err)
	case errors.Is(err, context.Canceled):
		return domain.Wrap(domain.KindUpstreamUnavailable, provider+" request was cancelled", err)
	default:
		return domain.Wrap(domain.KindUpstreamUnavailable, "cannot reach "+provider, err)
	}
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
