//go:build !integration

package model

import (
	"encoding/json"
	"testing"
)

func TestJobRequest_HasImage(t *testing.T) {
	t.Run("should report no image for empty or blank url", func(t *testing.T) {
		for _, u := range []string{"", "   ", "\n"} {
			if (JobRequest{UserInput: "x", ImageURL: u}).HasImage() {
				t.Errorf("expected HasImage=false for %q", u)
			}
		}
	})

	t.Run("should report an image when url is set", func(t *testing.T) {
		if !(JobRequest{UserInput: "x", ImageURL: "https://img/1.jpg"}).HasImage() {
			t.Fatal("expected HasImage=true")
		}
	})
}

func TestAnalysisReport_MarshalVerbatim(t *testing.T) {
	t.Run("should embed the raw document inside an envelope", func(t *testing.T) {
		env := struct {
			Status string         `json:"status"`
			Out    AnalysisReport `json:"ai_output"`
		}{Status: "success", Out: AnalysisReport(`{"trade":["Plumber"],"confidence":90}`)}

		b, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		want := `{"status":"success","ai_output":{"trade":["Plumber"],"confidence":90}}`
		if string(b) != want {
			t.Errorf("expected %s, but got %s", want, b)
		}
	})

	t.Run("should marshal an empty report as null", func(t *testing.T) {
		b, err := json.Marshal(AnalysisReport(nil))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if string(b) != "null" {
			t.Errorf("expected null, but got %s", b)
		}
	})
}

func TestAnalysisReport_Fields(t *testing.T) {
	t.Run("should decode top-level keys of an object", func(t *testing.T) {
		m, ok := AnalysisReport(`{"trade":["Plumber"],"confidence":90}`).Fields()
		if !ok {
			t.Fatal("expected object report to decode")
		}
		if _, has := m["confidence"]; !has || len(m) != 2 {
			t.Errorf("unexpected fields: %v", m)
		}
	})

	t.Run("should reject non-object documents", func(t *testing.T) {
		if _, ok := AnalysisReport(`[1,2]`).Fields(); ok {
			t.Error("expected array report not to decode as fields")
		}
	})
}

func TestNewJobID(t *testing.T) {
	a, b := NewJobID(), NewJobID()
	if len(a) != 26 || a == b {
		t.Fatalf("expected distinct 26-char ids, got %q and %q", a, b)
	}
}
