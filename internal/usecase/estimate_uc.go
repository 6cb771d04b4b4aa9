// File: internal/usecase/estimate_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/model"
	"quotesense-api/internal/domain/ports/adapter"
	"quotesense-api/internal/infra/logging"
	"quotesense-api/internal/infra/metrics"
)

// Compile-time check
var _ EstimateUseCase = (*estimateUC)(nil)

type EstimateUseCase interface {
	// Process turns one validated job into an analysis report with exactly one
	// call to the completion client.
	Process(ctx context.Context, req model.JobRequest) (*model.JobResult, error)
}

type EstimatorOptions struct {
	TextModel      string
	VisionModel    string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration
	MaxInputTokens int // 0 disables
	Dev            bool
}

type estimateUC struct {
	ai      adapter.CompletionClient
	prompts *PromptBuilder
	tokens  TokenCounter
	opts    EstimatorOptions
	log     *zerolog.Logger
	now     func() time.Time
}

func NewEstimateUseCase(ai adapter.CompletionClient, prompts *PromptBuilder, tokens TokenCounter, opts EstimatorOptions, logger *zerolog.Logger) *estimateUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "Estimator").Logger()
	return &estimateUC{ai: ai, prompts: prompts, tokens: tokens, opts: opts, log: &l, now: time.Now}
}

// ModelFor picks the vision model when the job carries an image.
func (uc *estimateUC) ModelFor(req model.JobRequest) string {
	if req.HasImage() && uc.opts.VisionModel != "" {
		return uc.opts.VisionModel
	}
	return uc.opts.TextModel
}

func (uc *estimateUC) Process(ctx context.Context, req model.JobRequest) (*model.JobResult, error) {
	tmpl := uc.prompts.Template()

	if strings.TrimSpace(req.UserInput) == "" {
		metrics.IncJob(tmpl.Version, string(domain.KindInvalidRequest))
		return nil, domain.NewError(domain.KindInvalidRequest, "user_input must not be empty")
	}
	if uc.opts.MaxInputTokens > 0 && uc.tokens != nil {
		if n := uc.tokens.Count(req.UserInput); n > uc.opts.MaxInputTokens {
			metrics.IncJob(tmpl.Version, string(domain.KindInvalidRequest))
			return nil, domain.NewError(domain.KindInvalidRequest,
				fmt.Sprintf("user_input is too long: %d tokens, limit %d", n, uc.opts.MaxInputTokens))
		}
	}

	id := model.NewJobID()
	ctx = logging.WithJobID(ctx, id)
	l := logging.With(ctx, uc.log)
	defer logging.TraceDuration(l, "Estimator.Process")()

	modelName := uc.ModelFor(req)
	l.Info().
		Str("input", logging.Redact(req.UserInput, uc.opts.Dev)).
		Bool("image", req.HasImage()).
		Str("model", modelName).
		Str("prompt_version", tmpl.Version).
		Msg("new estimation request")

	if uc.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.RequestTimeout)
		defer cancel()
	}

	res, err := uc.ai.Complete(ctx, adapter.CompletionRequest{
		Model:       modelName,
		Messages:    uc.prompts.Build(req),
		Temperature: uc.opts.Temperature,
		Format:      adapter.FormatJSONObject,
		MaxTokens:   uc.opts.MaxTokens,
	})
	if err != nil {
		if _, ok := domain.AsError(err); !ok {
			err = domain.Wrap(domain.KindUpstreamError, "AI processing failed", err)
		}
		kind := domain.KindOf(err)
		metrics.IncJob(tmpl.Version, string(kind))
		l.Error().Err(err).Str("kind", string(kind)).Msg("completion failed")
		return nil, err
	}
	l.Debug().Str("raw_output", res.Text).Msg("raw AI output")

	report, missing, err := ParseReport(res.Text, tmpl.ExpectedFields)
	if err != nil {
		metrics.IncJob(tmpl.Version, string(domain.KindMalformedUpstreamOutput))
		l.Error().Err(err).Str("raw_output", res.Text).Msg("AI output failed JSON parse")
		return nil, err
	}
	if len(missing) > 0 {
		for _, f := range missing {
			metrics.IncMissingField(tmpl.Version, f)
		}
		l.Warn().Strs("missing", missing).Msg("report is missing expected fields")
	}
	metrics.IncJob(tmpl.Version, "success")

	used := res.Model
	if used == "" {
		used = modelName
	}
	return &model.JobResult{
		ID:            id,
		RawInput:      req.UserInput,
		Report:        report,
		Model:         used,
		PromptVersion: tmpl.Version,
		Missing:       missing,
		CreatedAt:     uc.now(),
	}, nil
}
