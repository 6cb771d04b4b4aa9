package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/model"
	"quotesense-api/internal/infra/logging"
	"quotesense-api/internal/usecase"
)

// timestampLayout matches ISO-8601 with millisecond precision in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Options struct {
	MaxBodyBytes    int64
	ExposeRawOutput bool // include malformed model text in error bodies
}

// Server exposes the health probes and the estimation endpoint.
type Server struct {
	estimator usecase.EstimateUseCase
	opts      Options
	log       *zerolog.Logger
	now       func() time.Time
}

func NewServer(estimator usecase.EstimateUseCase, opts Options, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "api").Logger()
	return &Server{estimator: estimator, opts: opts, log: &l, now: time.Now}
}

// Router builds the full handler with middlewares.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"X-Job-ID", "X-Request-ID", "Retry-After"},
			MaxAge:         300,
		}),
		BodyLimit(s.opts.MaxBodyBytes),
	)
	s.Register(r)
	return r
}

// Register attaches the routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.handleLiveness("alive"))
	r.Get("/health", s.handleLiveness("healthy"))
	r.Post("/process-job", s.handleProcessJob)
	// Preflights are answered by the CORS middleware; bare OPTIONS still succeed.
	r.Options("/*", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	// Wrong methods get the same answer as unknown paths.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)
}

func (s *Server) handleLiveness(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    status,
			"timestamp": s.now().UTC().Format(timestampLayout),
		})
	}
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
}

type processJobResponse struct {
	Status   string               `json:"status"`
	RawInput string               `json:"raw_input"`
	AIOutput model.AnalysisReport `json:"ai_output"`
}

func (s *Server) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = domain.NewError(domain.KindInvalidRequest, "request body is too large")
		} else {
			err = domain.Wrap(domain.KindInvalidRequest, "cannot read request body", err)
		}
		writeError(w, err, false)
		return
	}

	req, err := usecase.ParseJobRequest(body)
	if err != nil {
		l.Warn().Err(err).Msg("rejected job request")
		writeError(w, err, false)
		return
	}
	if usecase.ImageFieldIgnored(body, req) {
		l.Warn().Msg("image_url is not a usable string; processing as text only")
	}

	res, err := s.estimator.Process(r.Context(), req)
	if err != nil {
		writeError(w, err, s.opts.ExposeRawOutput)
		return
	}

	w.Header().Set("X-Job-ID", res.ID)
	writeJSON(w, http.StatusOK, processJobResponse{
		Status:   "success",
		RawInput: res.RawInput,
		AIOutput: res.Report,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
