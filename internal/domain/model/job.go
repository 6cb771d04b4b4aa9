package model

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobRequest is one home-repair problem as submitted by a caller.
type JobRequest struct {
	UserInput string
	ImageURL  string // optional; empty means no image
}

func (r JobRequest) HasImage() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}

// JobResult is the outcome of a successful estimation.
type JobResult struct {
	ID            string
	RawInput      string
	Report        AnalysisReport
	Model         string
	PromptVersion string
	// Missing lists expected report fields the model did not populate.
	Missing   []string
	CreatedAt time.Time
}

// NewJobID returns a lexicographically sortable job identifier.
func NewJobID() string {
	return ulid.Make().String()
}
