package check

import (
	"strings"
	"testing"
	"time"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/normalize"
)

func testConfig() model.CheckerConfig {
	return model.DefaultConfig().Checker
}

// Reference time for the submission-in-future rule.
var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// doc builds a document whose fields are run through the real normalizer,
// so the tests exercise the same values the pipeline produces.
func doc(id string, t model.DocumentType, fields map[string]string) model.Document {
	n := normalize.New(model.DefaultConfig().Locale)
	d := model.Document{
		ID:               id,
		Type:             t,
		ExtractionStatus: model.ExtractionSucceeded,
		Fields:           make(map[string]model.ExtractedField, len(fields)),
	}
	for name, raw := range fields {
		normalized, failed := n.Normalize(name, raw)
		d.Fields[name] = model.ExtractedField{
			Name:                name,
			Raw:                 raw,
			Normalized:          normalized,
			NormalizationFailed: failed,
			Confidence:          0.9,
			DocumentID:          id,
		}
	}
	return d
}

func findDiscrepancy(ds []model.Discrepancy, field string) *model.Discrepancy {
	for i := range ds {
		if ds[i].Field == field {
			return &ds[i]
		}
	}
	return nil
}

func TestChecker_ExactMatchNoDiscrepancy(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{
			"insured_name":         "Rajesh Kumar",
			"vehicle_registration": "MH-12-AB-1234",
		}),
		doc("d2", model.DocTypeClaimForm, map[string]string{
			"insured_name":         "RAJESH KUMAR",
			"vehicle_registration": "MH 12 AB 1234",
		}),
	}, testNow)

	if len(ds) != 0 {
		t.Fatalf("expected no discrepancies, got %d: %+v", len(ds), ds)
	}
}

func TestChecker_MismatchSeverityFromTable(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"vehicle_registration": "MH-12-AB-1234"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"vehicle_registration": "MH-12-AB-9999"}),
	}, testNow)

	d := findDiscrepancy(ds, "vehicle_registration")
	if d == nil {
		t.Fatal("expected a vehicle_registration discrepancy")
	}
	if d.Severity != model.SeverityCritical {
		t.Errorf("severity = %s, want critical", d.Severity)
	}
	if len(d.Values) != 2 {
		t.Errorf("expected both conflicting values, got %d", len(d.Values))
	}
	if !strings.Contains(d.Explanation, "claim_form and policy") {
		t.Errorf("unexpected explanation: %q", d.Explanation)
	}
}

func TestChecker_NameVariantIsMinor(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"insured_name": "Jane Doe"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"insured_name": "Jane Doee"}),
	}, testNow)

	d := findDiscrepancy(ds, "insured_name")
	if d == nil {
		t.Fatal("expected an insured_name discrepancy")
	}
	if d.Severity != model.SeverityMinor {
		t.Errorf("severity = %s, want minor", d.Severity)
	}
}

func TestChecker_ThreeWayMismatchIsOneRecord(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"insured_name": "Amit Shah"}),
		doc("d2", model.DocTypeAadhaar, map[string]string{"insured_name": "Amit Sha"}),
		doc("d3", model.DocTypePAN, map[string]string{"insured_name": "A. Shah"}),
	}, testNow)

	var nameRecords int
	for _, d := range ds {
		if d.Field == "insured_name" && len(d.Values) > 0 {
			nameRecords++
			if len(d.Values) != 3 {
				t.Errorf("expected 3 value pairs, got %d", len(d.Values))
			}
		}
	}
	if nameRecords != 1 {
		t.Errorf("expected exactly one insured_name record, got %d", nameRecords)
	}
}

func TestChecker_KYCNumbersAreDistinctFields(t *testing.T) {
	c := New(testConfig())

	// An Aadhaar number and a PAN number differ for every claimant. They
	// live in separate fields, so both documents together must be clean.
	ds := c.Check([]model.Document{
		doc("d1", model.DocTypeAadhaar, map[string]string{
			"aadhaar_number": "1234 5678 9012",
			"insured_name":   "Rajesh Kumar",
		}),
		doc("d2", model.DocTypePAN, map[string]string{
			"pan_number":   "ABCDE1234F",
			"insured_name": "Rajesh Kumar",
		}),
	}, testNow)

	if len(ds) != 0 {
		t.Fatalf("matching KYC documents must not conflict, got %+v", ds)
	}
}

func TestChecker_KYCNameChecksAgainstInsured(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"insured_name": "Rajesh Kumar"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"insured_name": "Rajesh Kumar"}),
		doc("d3", model.DocTypeAadhaar, map[string]string{"insured_name": "Suresh Kumar"}),
	}, testNow)

	d := findDiscrepancy(ds, "insured_name")
	if d == nil {
		t.Fatal("a KYC name differing from the insured must surface")
	}
	if d.Severity != model.SeverityMinor {
		t.Errorf("severity = %s, want minor", d.Severity)
	}
	if len(d.Values) != 3 {
		t.Errorf("expected all three observed values, got %d", len(d.Values))
	}
}

func TestChecker_LicenceHolderNotComparedToInsured(t *testing.T) {
	c := New(testConfig())

	// The driver can be someone other than the insured; the licence name
	// stays out of the insured_name comparison group.
	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"insured_name": "Rajesh Kumar"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"insured_name": "Rajesh Kumar"}),
		doc("d3", model.DocTypeDrivingLicense, map[string]string{"holder_name": "Amit Shah"}),
	}, testNow)

	if len(ds) != 0 {
		t.Fatalf("a differing licence holder must not conflict, got %+v", ds)
	}
}

func TestChecker_WeakEvidenceCapsAtMinor(t *testing.T) {
	c := New(testConfig())

	// Second registration fails identifier normalization (punctuation only).
	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"vehicle_registration": "MH-12-AB-1234"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"vehicle_registration": "---"}),
	}, testNow)

	d := findDiscrepancy(ds, "vehicle_registration")
	if d == nil {
		t.Fatal("expected a discrepancy")
	}
	if d.Severity != model.SeverityMinor {
		t.Errorf("weak evidence must cap severity at minor, got %s", d.Severity)
	}
	if !strings.Contains(d.Explanation, "weak evidence") {
		t.Errorf("explanation should mention weak evidence: %q", d.Explanation)
	}
}

func TestChecker_MissingCorroboration(t *testing.T) {
	c := New(testConfig())

	// Claim form carries the name; the policy is present but lacks it.
	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"policy_number": "POL-1"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"insured_name": "Jane Doe"}),
	}, testNow)

	d := findDiscrepancy(ds, "insured_name")
	if d == nil {
		t.Fatal("expected a missing-corroboration discrepancy")
	}
	if d.Severity != model.SeverityMajor {
		t.Errorf("severity = %s, want major", d.Severity)
	}
	if !strings.Contains(d.Explanation, "absent from policy") {
		t.Errorf("unexpected explanation: %q", d.Explanation)
	}
}

func TestChecker_NoCorroborationRuleWhenFieldAbsentEverywhere(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{"policy_number": "POL-1"}),
		doc("d2", model.DocTypeClaimForm, map[string]string{"claim_number": "CLM-1"}),
	}, testNow)

	if d := findDiscrepancy(ds, "insured_name"); d != nil {
		t.Errorf("field absent from every document must not trigger the rule: %+v", d)
	}
}

func TestChecker_DateOrdering(t *testing.T) {
	c := New(testConfig())

	docs := []model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{
			"policy_start_date":  "2023-01-01",
			"policy_expiry_date": "2024-01-01",
		}),
		doc("d2", model.DocTypeClaimForm, map[string]string{
			"accident_date":         "2024-03-15", // after policy expiry
			"claim_submission_date": "2024-03-01", // before the accident
		}),
		doc("d3", model.DocTypeDrivingLicense, map[string]string{
			"expiry_date": "2024-02-01", // expired before the accident
		}),
	}

	ds := c.Check(docs, testNow)

	var explanations []string
	for _, d := range ds {
		if d.Severity != model.SeverityMajor {
			t.Errorf("date-ordering discrepancies must be major, got %s for %q", d.Severity, d.Explanation)
		}
		explanations = append(explanations, d.Explanation)
	}

	wantFragments := []string{
		"after policy expiry",
		"before the accident on",
		"driving licence expired",
	}
	for _, frag := range wantFragments {
		found := false
		for _, e := range explanations {
			if strings.Contains(e, frag) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a discrepancy containing %q, got %v", frag, explanations)
		}
	}
}

func TestChecker_SubmissionInFuture(t *testing.T) {
	c := New(testConfig())

	ds := c.Check([]model.Document{
		doc("d1", model.DocTypeClaimForm, map[string]string{
			"claim_submission_date": "2024-06-01",
		}),
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	d := findDiscrepancy(ds, "claim_submission_date")
	if d == nil {
		t.Fatal("expected a future-submission discrepancy")
	}
	if !strings.Contains(d.Explanation, "in the future") {
		t.Errorf("unexpected explanation: %q", d.Explanation)
	}
}

func TestChecker_DeterministicOrdering(t *testing.T) {
	c := New(testConfig())

	docs := []model.Document{
		doc("d1", model.DocTypePolicy, map[string]string{
			"vehicle_registration": "MH-12-AB-1234",
			"insured_name":         "Jane Doe",
		}),
		doc("d2", model.DocTypeClaimForm, map[string]string{
			"vehicle_registration": "MH-12-AB-9999",
			"insured_name":         "Jane Doee",
		}),
	}

	first := c.Check(docs, testNow)

	// Same evidence, reversed input order.
	second := c.Check([]model.Document{docs[1], docs[0]}, testNow)

	if len(first) != len(second) {
		t.Fatalf("different lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Field != second[i].Field || first[i].Explanation != second[i].Explanation {
			t.Errorf("position %d differs: %q vs %q", i, first[i].Explanation, second[i].Explanation)
		}
	}

	// Severity must come sorted worst-first.
	for i := 1; i < len(first); i++ {
		if first[i].Severity.Rank() > first[i-1].Severity.Rank() {
			t.Errorf("discrepancies not sorted by severity at %d", i)
		}
	}
	if len(first) == 0 || first[0].Field != "vehicle_registration" {
		t.Errorf("critical registration mismatch should sort first, got %+v", first)
	}
}
