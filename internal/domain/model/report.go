package model

import (
	"bytes"
	"encoding/json"
)

// AnalysisReport is the model's JSON document, kept byte-for-byte as returned
// (modulo surrounding whitespace). Its shape is owned by the prompt template.
type AnalysisReport json.RawMessage

func (r AnalysisReport) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *AnalysisReport) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// Fields decodes the top level of the report when it is a JSON object.
func (r AnalysisReport) Fields() (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, false
	}
	return m, true
}
