package usecase

import (
	"encoding/json"
	"strings"

	"quotesense-api/internal/domain"
	"quotesense-api/internal/domain/model"
)

// ParseReport strictly parses the model text as JSON. The document is returned
// unmodified; missing lists expected top-level fields that are absent.
// Missing fields never fail the parse.
func ParseReport(raw string, expected []string) (model.AnalysisReport, []string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil, &domain.Error{
			Kind:      domain.KindMalformedUpstreamOutput,
			Message:   "AI returned an empty response",
			RawOutput: raw,
		}
	}

	if !json.Valid([]byte(text)) {
		// RawMessage keeps numbers as text; the decode only reports where the syntax breaks.
		var syntax json.RawMessage
		err := json.Unmarshal([]byte(text), &syntax)
		return nil, nil, &domain.Error{
			Kind:      domain.KindMalformedUpstreamOutput,
			Message:   "AI returned invalid JSON",
			RawOutput: raw,
			Err:       err,
		}
	}

	report := model.AnalysisReport(text)
	fields, ok := report.Fields()
	if !ok {
		return report, append([]string(nil), expected...), nil
	}
	var missing []string
	for _, f := range expected {
		if _, has := fields[f]; !has {
			missing = append(missing, f)
		}
	}
	return report, missing, nil
}
