package verdict

import (
	"strings"
	"testing"

	"github.com/claimpilot/claimpilot/internal/model"
)

func testClaim() *model.Claim {
	return &model.Claim{
		ID: "c1",
		Documents: []model.Document{
			{
				ID: "d1", Type: model.DocTypePolicy, ExtractionStatus: model.ExtractionSucceeded,
				Fields: map[string]model.ExtractedField{
					"policy_number": {Name: "policy_number", Raw: "POL-1", Confidence: 0.9},
				},
			},
			{
				ID: "d2", Type: model.DocTypeClaimForm, ExtractionStatus: model.ExtractionSucceeded,
				Fields: map[string]model.ExtractedField{
					"claim_number": {Name: "claim_number", Raw: "CLM-1", Confidence: 0.8},
				},
			},
		},
	}
}

func testVerdictConfig() model.VerdictConfig {
	return model.VerdictConfig{
		RequiredDocuments: []model.DocumentType{model.DocTypePolicy, model.DocTypeClaimForm},
		DamageThreshold:   0.5,
	}
}

func TestAggregator_Approved(t *testing.T) {
	a := New(testVerdictConfig())

	out := a.Decide(testClaim(), nil, &model.DamageSummary{Score: 0.9, Assessed: 1})
	if out.Verdict != model.VerdictApproved {
		t.Errorf("verdict = %s, want approved", out.Verdict)
	}
}

func TestAggregator_CriticalRejects(t *testing.T) {
	a := New(testVerdictConfig())

	ds := []model.Discrepancy{
		{Field: "vehicle_registration", Severity: model.SeverityCritical, Explanation: "vehicle_registration mismatch between claim_form and policy"},
		{Field: "insured_name", Severity: model.SeverityMinor, Explanation: "name mismatch between claim_form and policy"},
	}
	out := a.Decide(testClaim(), ds, nil)
	if out.Verdict != model.VerdictRejected {
		t.Errorf("verdict = %s, want rejected", out.Verdict)
	}
	// A perfect damage score never rescues a critical discrepancy.
	out = a.Decide(testClaim(), ds, &model.DamageSummary{Score: 1.0, Assessed: 3})
	if out.Verdict != model.VerdictRejected {
		t.Errorf("high damage score must not override rejection, got %s", out.Verdict)
	}
}

func TestAggregator_MissingRequiredDocumentRejects(t *testing.T) {
	a := New(testVerdictConfig())

	claim := testClaim()
	claim.Documents = claim.Documents[:1] // drop the claim form

	out := a.Decide(claim, nil, nil)
	if out.Verdict != model.VerdictRejected {
		t.Errorf("verdict = %s, want rejected", out.Verdict)
	}
	found := false
	for _, r := range out.Rationale {
		if strings.Contains(r, "required document missing: claim_form") {
			found = true
		}
	}
	if !found {
		t.Errorf("rationale should name the missing document: %v", out.Rationale)
	}
}

func TestAggregator_MajorFlags(t *testing.T) {
	a := New(testVerdictConfig())

	ds := []model.Discrepancy{
		{Field: "accident_date", Severity: model.SeverityMajor, Explanation: "accident date 2024-03-15 is after policy expiry 2024-01-01"},
	}
	out := a.Decide(testClaim(), ds, nil)
	if out.Verdict != model.VerdictFlagged {
		t.Errorf("verdict = %s, want flagged", out.Verdict)
	}
}

func TestAggregator_MinorAloneFlags(t *testing.T) {
	a := New(testVerdictConfig())

	// A name variant like "Jane Doe" vs "Jane Doee" never auto-approves.
	ds := []model.Discrepancy{
		{Field: "insured_name", Severity: model.SeverityMinor, Explanation: "name mismatch between claim_form and policy"},
	}
	out := a.Decide(testClaim(), ds, nil)
	if out.Verdict != model.VerdictFlagged {
		t.Errorf("verdict = %s, want flagged", out.Verdict)
	}
}

func TestAggregator_LowDamageScoreFlags(t *testing.T) {
	a := New(testVerdictConfig())

	out := a.Decide(testClaim(), nil, &model.DamageSummary{Score: 0.2, Assessed: 2})
	if out.Verdict != model.VerdictFlagged {
		t.Errorf("verdict = %s, want flagged", out.Verdict)
	}
	found := false
	for _, r := range out.Rationale {
		if strings.Contains(r, "below threshold") {
			found = true
		}
	}
	if !found {
		t.Errorf("rationale should mention the threshold: %v", out.Rationale)
	}
}

func TestAggregator_NoAssessedImagesNoDamageFlag(t *testing.T) {
	a := New(testVerdictConfig())

	// Zero score with zero assessed images means no damage evidence was
	// scored at all, not that the evidence contradicts the claim.
	out := a.Decide(testClaim(), nil, &model.DamageSummary{Score: 0, Assessed: 0})
	if out.Verdict != model.VerdictApproved {
		t.Errorf("verdict = %s, want approved", out.Verdict)
	}
}

func TestAggregator_FailedExtractionFlags(t *testing.T) {
	a := New(testVerdictConfig())

	claim := testClaim()
	claim.Documents = append(claim.Documents, model.Document{
		ID: "d3", Type: model.DocTypeDrivingLicense,
		ExtractionStatus: model.ExtractionFailed,
		ExtractionError:  "provider timeout",
	})

	out := a.Decide(claim, nil, nil)
	if out.Verdict != model.VerdictFlagged {
		t.Errorf("verdict = %s, want flagged", out.Verdict)
	}
}

func TestAggregator_FailedImageFlags(t *testing.T) {
	a := New(testVerdictConfig())

	claim := testClaim()
	claim.Images = []model.DamageImage{
		{ID: "i1", AssessmentStatus: model.AssessmentFailed, AssessmentError: "not an image"},
	}

	out := a.Decide(claim, nil, nil)
	if out.Verdict != model.VerdictFlagged {
		t.Errorf("verdict = %s, want flagged", out.Verdict)
	}
}

func TestAggregator_RationaleOrder(t *testing.T) {
	a := New(testVerdictConfig())

	ds := []model.Discrepancy{
		{Field: "vehicle_registration", Severity: model.SeverityCritical, Explanation: "critical one"},
		{Field: "accident_date", Severity: model.SeverityMajor, Explanation: "major one"},
		{Field: "insured_name", Severity: model.SeverityMinor, Explanation: "minor one"},
	}
	out := a.Decide(testClaim(), ds, &model.DamageSummary{Score: 0.1, Assessed: 1})

	if len(out.Rationale) < 4 {
		t.Fatalf("expected discrepancy and damage rationale, got %v", out.Rationale)
	}
	if out.Rationale[0] != "critical one" || out.Rationale[1] != "major one" || out.Rationale[2] != "minor one" {
		t.Errorf("discrepancy rationale out of order: %v", out.Rationale)
	}
	if !strings.Contains(out.Rationale[3], "below threshold") {
		t.Errorf("damage note should follow discrepancies: %v", out.Rationale)
	}
}

func TestAggregator_Confidence(t *testing.T) {
	a := New(testVerdictConfig())

	out := a.Decide(testClaim(), nil, &model.DamageSummary{Score: 0.7, Assessed: 1})

	// Mean of 0.9, 0.8 and 0.7.
	want := (0.9 + 0.8 + 0.7) / 3
	if diff := out.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %f, want %f", out.Confidence, want)
	}
}
