package ai

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// httpClient may be nil.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, httpClient *http.Client) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, domain.NewError(domain.KindConfiguration, "gemini: empty api key")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindConfiguration, "gemini client", err)
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	model := modelOrDefault(req.Model, g.defaultModel)

	cfg := &genai.GenerateContentConfig{
		Temperature: ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Format == adapter.FormatJSONObject {
		cfg.ResponseMIMEType = "application/json"
	}

	var contents []*genai.Content
	for _, m := range req.Messages {
		switch strings.ToLower(m.Role) {
		case adapter.RoleSystem:
			// Gemini takes the system prompt through config, not history.
			if cfg.SystemInstruction == nil {
				cfg.SystemInstruction = &genai.Content{}
			}
			cfg.SystemInstruction.Parts = append(cfg.SystemInstruction.Parts, &genai.Part{Text: m.Text})
		case adapter.RoleUser:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: toGenAIParts(m)})
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: toGenAIParts(m)})
		}
	}
	if len(contents) == 0 {
		return adapter.CompletionResult{}, domain.NewError(domain.KindUpstreamError, "gemini: no user content")
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		if code, msg, ok := geminiAPIError(err); ok {
			return adapter.CompletionResult{}, statusError(g.Name(), code, msg, err)
		}
		return adapter.CompletionResult{}, transportError(g.Name(), err)
	}

	text, ok := candidateText(resp)
	if !ok {
		return adapter.CompletionResult{}, domain.NewError(domain.KindUpstreamError, "gemini returned no candidates")
	}
	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return adapter.CompletionResult{Text: text, Model: model, Usage: u}, nil
}

func toGenAIParts(m adapter.Message) []*genai.Part {
	if !m.IsMultimodal() {
		return []*genai.Part{{Text: m.Text}}
	}
	parts := make([]*genai.Part, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Type == adapter.PartImage {
			parts = append(parts, genai.NewPartFromURI(p.ImageURL, imageMIME(p.ImageURL)))
			continue
		}
		parts = append(parts, &genai.Part{Text: p.Text})
	}
	return parts
}

// candidateText joins the text parts of the first candidate, skipping thoughts.
func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String(), true
}

// geminiAPIError digs the HTTP status out of the SDK error chain.
func geminiAPIError(err error) (int, string, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := any(e).(type) {
		case genai.APIError:
			return v.Code, v.Message, true
		case *genai.APIError:
			return v.Code, v.Message, true
		}
	}
	return 0, "", false
}

func imageMIME(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(p))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}

func ptr[T any](v T) *T { return &v }
