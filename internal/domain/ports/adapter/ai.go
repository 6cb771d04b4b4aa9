package adapter

import "context"

// Roles used in a prompt.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// ContentPart is one block of a multimodal message.
type ContentPart struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Message is a role-tagged prompt entry. Either Text or Parts is set, never both.
type Message struct {
	Role  string        `json:"role"`
	Text  string        `json:"content,omitempty"`
	Parts []ContentPart `json:"parts,omitempty"`
}

func (m Message) IsMultimodal() bool { return len(m.Parts) > 0 }

// OutputFormat is the response mode requested from the model.
type OutputFormat string

const (
	FormatText       OutputFormat = "text"
	FormatJSONObject OutputFormat = "json_object"
)

// CompletionRequest is one call to the completion service.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	Format      OutputFormat
	MaxTokens   int // 0 leaves the provider default
}

// Usage for a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResult is the raw model text of a successful call.
type CompletionResult struct {
	Text  string
	Model string
	Usage Usage
}

// CompletionClient is the port for the external text/vision model.
// Failures are returned as *domain.Error with one of the upstream kinds.
type CompletionClient interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
