package api

import (
	"errors"
	"net/http"
	"strconv"

	"quotesense-api/internal/domain"
)

// retryAfterSeconds is advertised on 429 answers.
const retryAfterSeconds = 20

var errPanic = errors.New("internal server error")

type errorBody struct {
	Status         string `json:"status"`
	Error          string `json:"error"`
	Message        string `json:"message"`
	Retryable      bool   `json:"retryable"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	RawOutput      string `json:"raw_output,omitempty"`
}

// statusFor is the only place an error kind becomes an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		// configuration, upstream and malformed output
		return http.StatusInternalServerError
	}
}

// errorResponse maps any error onto a status and JSON body.
func errorResponse(err error, exposeRaw bool) (int, errorBody) {
	de, ok := domain.AsError(err)
	if !ok {
		return http.StatusInternalServerError, errorBody{
			Status:  "error",
			Error:   string(domain.KindUpstreamError),
			Message: "internal server error",
		}
	}
	body := errorBody{
		Status:         "error",
		Error:          string(de.Kind),
		Message:        de.Message,
		Retryable:      de.Retryable(),
		UpstreamStatus: de.UpstreamStatus,
	}
	if body.Message == "" {
		body.Message = string(de.Kind)
	}
	if exposeRaw && de.Kind == domain.KindMalformedUpstreamOutput {
		body.RawOutput = de.RawOutput
	}
	return statusFor(de.Kind), body
}

func writeError(w http.ResponseWriter, err error, exposeRaw bool) {
	status, body := errorResponse(err, exposeRaw)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeJSON(w, status, body)
}
