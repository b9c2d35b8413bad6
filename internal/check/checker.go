// Package check compares normalized fields across the documents of one
// claim and produces discrepancy records. Output is a deterministic
// function of the non-superseded documents' extracted fields: identical
// input always yields an identical discrepancy set, independent of attach
// order, which the audit trail depends on.
package check

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/normalize"
)

// Checker cross-checks extracted fields for consistency.
type Checker struct {
	cfg model.CheckerConfig
}

// New creates a checker with the given configuration.
func New(cfg model.CheckerConfig) *Checker {
	return &Checker{cfg: cfg}
}

// occurrence is one field value seen in one document.
type occurrence struct {
	docID      string
	docType    model.DocumentType
	raw        string
	normalized string
	failed     bool
}

// Check produces the discrepancy set for the given documents. Callers pass
// only non-superseded, successfully extracted documents, plus the reference
// time for the submission-in-future rule; the checker itself never reads
// the clock, so the same input always yields the same output.
func (c *Checker) Check(docs []model.Document, now time.Time) []model.Discrepancy {
	byField := collectFields(docs)

	var out []model.Discrepancy
	out = append(out, c.checkMismatches(byField)...)
	out = append(out, c.checkCoOccurrence(docs, byField)...)
	out = append(out, c.checkDateOrdering(docs, now)...)

	sortDiscrepancies(out)
	return out
}

func collectFields(docs []model.Document) map[string][]occurrence {
	byField := make(map[string][]occurrence)
	for _, d := range docs {
		for name, f := range d.Fields {
			byField[name] = append(byField[name], occurrence{
				docID:      d.ID,
				docType:    d.Type,
				raw:        f.Raw,
				normalized: f.Normalized,
				failed:     f.NormalizationFailed,
			})
		}
	}
	for name := range byField {
		occ := byField[name]
		sort.Slice(occ, func(i, j int) bool {
			if occ[i].docType != occ[j].docType {
				return occ[i].docType < occ[j].docType
			}
			return occ[i].docID < occ[j].docID
		})
	}
	return byField
}

// checkMismatches compares every field that appears in two or more
// documents. A disagreement among >2 documents is still a single record
// listing all conflicting pairs.
func (c *Checker) checkMismatches(byField map[string][]occurrence) []model.Discrepancy {
	var out []model.Discrepancy
	for _, field := range sortedKeys(byField) {
		occ := byField[field]
		if len(occ) < 2 {
			continue
		}

		distinct := map[string]bool{}
		weak := false
		for _, o := range occ {
			distinct[o.normalized] = true
			if o.failed {
				weak = true
			}
		}
		if len(distinct) < 2 {
			continue
		}

		severity := c.cfg.SeverityFor(field)
		explanation := fmt.Sprintf("%s mismatch between %s", displayField(field), joinTypes(occ))
		if weak {
			// A value that failed normalization is weak evidence: it can
			// never carry a hard match failure by itself.
			severity = model.SeverityMinor
			explanation += " (unparseable value, weak evidence)"
		}

		out = append(out, model.Discrepancy{
			Field:       field,
			Values:      pairs(occ),
			Severity:    severity,
			Explanation: explanation,
		})
	}
	return out
}

// checkCoOccurrence enforces the configured must-co-occur sets. Absence is
// only a conflict when the document that should corroborate the field is
// actually present and lacks it.
func (c *Checker) checkCoOccurrence(docs []model.Document, byField map[string][]occurrence) []model.Discrepancy {
	var out []model.Discrepancy
	for _, rule := range c.cfg.CoOccur {
		present := map[model.DocumentType]bool{}
		hasField := map[model.DocumentType]bool{}
		for _, d := range docs {
			present[d.Type] = true
			if _, ok := d.Fields[rule.Field]; ok {
				hasField[d.Type] = true
			}
		}

		anywhere := false
		for _, t := range rule.Types {
			if hasField[t] {
				anywhere = true
			}
		}
		if !anywhere {
			continue
		}

		for _, t := range rule.Types {
			if present[t] && !hasField[t] {
				out = append(out, model.Discrepancy{
					Field:    rule.Field,
					Severity: model.SeverityMajor,
					Explanation: fmt.Sprintf("missing corroboration: %s absent from %s",
						displayField(rule.Field), t),
				})
			}
		}
	}
	return out
}

// checkDateOrdering applies the cross-document date rules: the accident
// must fall inside the policy window, the submission between accident and
// now, and the licence must not have expired before the accident.
func (c *Checker) checkDateOrdering(docs []model.Document, now time.Time) []model.Discrepancy {
	var out []model.Discrepancy

	policyStart, _ := fieldDate(docs, model.DocTypePolicy, "policy_start_date")
	policyExpiry, _ := fieldDate(docs, model.DocTypePolicy, "policy_expiry_date")
	accident, accidentOcc := fieldDate(docs, model.DocTypeClaimForm, "accident_date")
	submission, submissionOcc := fieldDate(docs, model.DocTypeClaimForm, "claim_submission_date")
	licenseExpiry, _ := fieldDate(docs, model.DocTypeDrivingLicense, "expiry_date")

	if accident != nil && policyStart != nil && accident.Before(*policyStart) {
		out = append(out, dateDiscrepancy("accident_date", accidentOcc,
			fmt.Sprintf("accident date %s is before policy start %s",
				accident.Format("2006-01-02"), policyStart.Format("2006-01-02"))))
	}
	if accident != nil && policyExpiry != nil && accident.After(*policyExpiry) {
		out = append(out, dateDiscrepancy("accident_date", accidentOcc,
			fmt.Sprintf("accident date %s is after policy expiry %s",
				accident.Format("2006-01-02"), policyExpiry.Format("2006-01-02"))))
	}
	if submission != nil && accident != nil && submission.Before(*accident) {
		out = append(out, dateDiscrepancy("claim_submission_date", submissionOcc,
			fmt.Sprintf("claim submitted %s, before the accident on %s",
				submission.Format("2006-01-02"), accident.Format("2006-01-02"))))
	}
	if submission != nil && submission.After(now) {
		out = append(out, dateDiscrepancy("claim_submission_date", submissionOcc,
			fmt.Sprintf("claim submission date %s is in the future", submission.Format("2006-01-02"))))
	}
	if accident != nil && licenseExpiry != nil && accident.After(*licenseExpiry) {
		out = append(out, dateDiscrepancy("accident_date", accidentOcc,
			fmt.Sprintf("driving licence expired %s, before the accident on %s",
				licenseExpiry.Format("2006-01-02"), accident.Format("2006-01-02"))))
	}
	return out
}

// fieldDate returns the first successfully normalized date of the given
// field from a document of the given type.
func fieldDate(docs []model.Document, t model.DocumentType, field string) (*time.Time, *occurrence) {
	for _, d := range docs {
		if d.Type != t {
			continue
		}
		f, ok := d.Fields[field]
		if !ok || f.NormalizationFailed {
			continue
		}
		if parsed, ok := normalize.ParseISODate(f.Normalized); ok {
			return &parsed, &occurrence{
				docID:      d.ID,
				docType:    d.Type,
				raw:        f.Raw,
				normalized: f.Normalized,
			}
		}
	}
	return nil, nil
}

func dateDiscrepancy(field string, occ *occurrence, explanation string) model.Discrepancy {
	d := model.Discrepancy{
		Field:       field,
		Severity:    model.SeverityMajor,
		Explanation: explanation,
	}
	if occ != nil {
		d.Values = pairs([]occurrence{*occ})
	}
	return d
}

func pairs(occ []occurrence) []model.FieldValue {
	values := make([]model.FieldValue, len(occ))
	for i, o := range occ {
		values[i] = model.FieldValue{
			DocumentID:   o.docID,
			DocumentType: o.docType,
			Value:        o.raw,
		}
	}
	return values
}

func sortDiscrepancies(out []model.Discrepancy) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Explanation < out[j].Explanation
	})
}

func sortedKeys(m map[string][]occurrence) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// joinTypes renders the document types involved in a conflict, e.g.
// "policy and claim_form" or "aadhaar, pan and policy".
func joinTypes(occ []occurrence) string {
	seen := map[string]bool{}
	var types []string
	for _, o := range occ {
		t := string(o.docType)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	switch len(types) {
	case 1:
		return types[0]
	case 2:
		return types[0] + " and " + types[1]
	default:
		return strings.Join(types[:len(types)-1], ", ") + " and " + types[len(types)-1]
	}
}

// displayField maps a few canonical names to friendlier report wording.
func displayField(field string) string {
	switch field {
	case "insured_name":
		return "name"
	default:
		return field
	}
}
