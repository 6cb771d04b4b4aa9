package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionClient = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.CompletionClient using the Chat Completions API.
// Any OpenAI-compatible gateway works through option.WithBaseURL.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model string, opts ...option.RequestOption) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, domain.NewError(domain.KindConfiguration, "openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	// SDK retries are off; retry policy belongs to NewRetryingAI.
	all := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &OpenAIAdapter{
		client: openai.NewClient(all...),
		model:  model,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	model := modelOrDefault(req.Model, o.model)

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Format == adapter.FormatJSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return adapter.CompletionResult{}, statusError(o.Name(), apiErr.StatusCode, apiErr.Message, err)
		}
		return adapter.CompletionResult{}, transportError(o.Name(), err)
	}
	if len(completion.Choices) == 0 {
		return adapter.CompletionResult{}, domain.NewError(domain.KindUpstreamError, "openai returned no choices")
	}

	return adapter.CompletionResult{
		Text:  completion.Choices[0].Message.Content,
		Model: completion.Model,
		Usage: adapter.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case adapter.RoleSystem:
			out = append(out, openai.SystemMessage(m.Text))
		case adapter.RoleUser:
			if !m.IsMultimodal() {
				out = append(out, openai.UserMessage(m.Text))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Parts))
			for _, p := range m.Parts {
				switch p.Type {
				case adapter.PartImage:
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL: p.ImageURL,
					}))
				default:
					parts = append(parts, openai.TextContentPart(p.Text))
				}
			}
			out = append(out, openai.UserMessage(parts))
		default:
			out = append(out, openai.AssistantMessage(m.Text))
		}
	}
	return out
}
