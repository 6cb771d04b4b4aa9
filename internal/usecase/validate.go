package usecase

import (
	"bytes"
	"encoding/json"
	"strings"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/model"
)

type jobPayload struct {
	UserInput json.RawMessage `json:"user_input"`
	ImageURL  json.RawMessage `json:"image_url"`
}

// ParseJobRequest extracts user_input and image_url from a request body.
// image_url is passed through as-is; a non-string or empty value means no image.
func ParseJobRequest(body []byte) (model.JobRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.JobRequest{}, domain.NewError(domain.KindInvalidRequest, "request body must be a JSON object with user_input")
	}
	var p jobPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return model.JobRequest{}, domain.Wrap(domain.KindInvalidRequest, "request body is not valid JSON", err)
	}

	if len(p.UserInput) == 0 || string(p.UserInput) == "null" {
		return model.JobRequest{}, domain.NewError(domain.KindInvalidRequest, "user_input is required")
	}
	var input string
	if err := json.Unmarshal(p.UserInput, &input); err != nil {
		return model.JobRequest{}, domain.NewError(domain.KindInvalidRequest, "user_input must be a string")
	}
	if strings.TrimSpace(input) == "" {
		return model.JobRequest{}, domain.NewError(domain.KindInvalidRequest, "user_input must not be empty")
	}

	req := model.JobRequest{UserInput: input}
	if len(p.ImageURL) > 0 {
		var img string
		if json.Unmarshal(p.ImageURL, &img) == nil && strings.TrimSpace(img) != "" {
			req.ImageURL = img
		}
	}
	return req, nil
}

// ImageFieldIgnored reports whether body carried an image_url that was not usable.
func ImageFieldIgnored(body []byte, req model.JobRequest) bool {
	if req.HasImage() {
		return false
	}
	var p jobPayload
	if json.Unmarshal(body, &p) != nil {
		return false
	}
	s := strings.TrimSpace(string(p.ImageURL))
	return s != "" && s != "null" && s != `""`
}
