package pipeline

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/claimpilot/claimpilot/internal/model"
)

func renderedClaim() *model.Claim {
	return &model.Claim{
		ID:          "c1",
		ClaimNumber: "CLM-2024-0042",
		Status:      model.StatusValidated,
		Documents: []model.Document{
			{ID: "d1", Type: model.DocTypePolicy, ExtractionStatus: model.ExtractionSucceeded},
		},
		Results: []model.ValidationResult{{
			ClaimID: "c1",
			Verdict: model.VerdictFlagged,
			Discrepancies: []model.Discrepancy{
				{Field: "insured_name", Severity: model.SeverityMinor, Explanation: "name mismatch between claim_form and policy"},
			},
			Damage:          &model.DamageSummary{Score: 0.8, Reducer: "min", Assessed: 1},
			Rationale:       []string{"name mismatch between claim_form and policy"},
			Confidence:      0.85,
			EvidenceDigest:  "abcdef0123456789",
			PipelineVersion: Version,
			GeneratedAt:     time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
		}},
	}
}

func TestRenderer_JSONRoundTrips(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})

	var buf bytes.Buffer
	if err := r.RenderJSON(&buf, renderedClaim()); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded model.Claim
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ID != "c1" || len(decoded.Results) != 1 {
		t.Errorf("round-trip lost data: %+v", decoded)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: true})

	var buf bytes.Buffer
	if err := r.RenderMarkdown(&buf, renderedClaim()); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Claim CLM-2024-0042",
		"FLAGGED",
		"name mismatch between claim_form and policy",
		"Score 0.80",
		"pipeline " + Version,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_MarkdownNoResult(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})

	claim := renderedClaim()
	claim.Results = nil
	claim.Status = model.StatusCollecting

	var buf bytes.Buffer
	if err := r.RenderMarkdown(&buf, claim); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "No validation run yet") {
		t.Errorf("expected the no-result notice:\n%s", buf.String())
	}
}

func TestRenderer_SummaryShowsStale(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})

	claim := renderedClaim()
	claim.Results[0].Stale = true

	var buf bytes.Buffer
	if err := r.RenderSummary(&buf, claim); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "flagged (stale)") {
		t.Errorf("summary should mark stale verdicts: %s", buf.String())
	}
}
