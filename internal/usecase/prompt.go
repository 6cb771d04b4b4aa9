package usecase

import (
	"quotesense-api/internal/domain/model"
	"quotesense-api/internal/domain/ports/adapter"
)

// PromptBuilder renders the message sequence for one job.
// User text only ever goes into the user-role message.
type PromptBuilder struct {
	tmpl PromptTemplate
}

func NewPromptBuilder(tmpl PromptTemplate) *PromptBuilder {
	return &PromptBuilder{tmpl: tmpl}
}

func (b *PromptBuilder) Template() PromptTemplate { return b.tmpl }

func (b *PromptBuilder) Build(req model.JobRequest) []adapter.Message {
	system := adapter.Message{Role: adapter.RoleSystem, Text: b.tmpl.System}

	user := adapter.Message{Role: adapter.RoleUser}
	if req.HasImage() {
		user.Parts = []adapter.ContentPart{
			{Type: adapter.PartText, Text: req.UserInput},
			{Type: adapter.PartImage, ImageURL: req.ImageURL},
		}
	} else {
		user.Text = req.UserInput
	}
	return []adapter.Message{system, user}
}
