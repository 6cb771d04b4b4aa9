//go:build !integration

package usecase

import (
	"errors"
	"reflect"
	"testing"

	"quotesense-api/internal/domain"
)

func TestParseReport(t *testing.T) {
	expected := []string{"trade", "confidence", "recommendation"}

	t.Run("valid object passes through unmodified", func(t *testing.T) {
		raw := "\n {\"trade\":[\"Plumber\"],\"confidence\":90, \"extra\":{\"nested\":true}} \n"
		report, missing, err := ParseReport(raw, expected)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(report) != `{"trade":["Plumber"],"confidence":90, "extra":{"nested":true}}` {
			t.Errorf("report was modified: %s", report)
		}
		if !reflect.DeepEqual(missing, []string{"recommendation"}) {
			t.Errorf("unexpected missing fields: %v", missing)
		}
	})

	t.Run("non-object JSON is accepted", func(t *testing.T) {
		report, missing, err := ParseReport(`[1,2,3]`, expected)
		if err != nil || string(report) != `[1,2,3]` {
			t.Fatalf("expected array to pass, got %s / %v", report, err)
		}
		if len(missing) != len(expected) {
			t.Errorf("expected every field to be reported missing, got %v", missing)
		}
	})

	t.Run("numbers beyond float64 range are valid JSON", func(t *testing.T) {
		raw := `{"trade":["Plumber"],"confidence":90,"recommendation":"x","cost_estimate":{"average":1e400}}`
		report, missing, err := ParseReport(raw, expected)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(report) != raw {
			t.Errorf("report was modified: %s", report)
		}
		if len(missing) != 0 {
			t.Errorf("unexpected missing fields: %v", missing)
		}
	})

	for name, raw := range map[string]string{
		"prose":          "not json",
		"empty":          "   ",
		"markdown fence": "```json\n{\"trade\":[]}\n```",
		"trailing prose": `{"trade":[]} Hope this helps!`,
		"truncated":      `{"trade":["Plumb`,
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, _, err := ParseReport(raw, expected)
			if !errors.Is(err, domain.ErrMalformedUpstreamOutput) {
				t.Fatalf("expected malformed output error, got %v", err)
			}
			de, _ := domain.AsError(err)
			if de.RawOutput != raw {
				t.Errorf("raw output not preserved: %q", de.RawOutput)
			}
		})
	}
}
