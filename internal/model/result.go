package model

import "time"

// Severity classifies how damaging a discrepancy is to the claim
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for deterministic sorting (higher is worse).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// FieldValue is one (document, value) pair inside a discrepancy.
type FieldValue struct {
	DocumentID   string       `json:"document_id"`
	DocumentType DocumentType `json:"document_type"`
	Value        string       `json:"value"`
}

// Discrepancy records a single cross-document inconsistency. When more
// than two documents disagree on a field it is still one record listing
// every conflicting pair. Immutable once created; a new validation run
// produces a new set rather than mutating past ones.
type Discrepancy struct {
	Field       string       `json:"field"`
	Values      []FieldValue `json:"values,omitempty"`
	Severity    Severity     `json:"severity"`
	Explanation string       `json:"explanation"`
}

// Verdict is the final decision on a claim
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictFlagged  Verdict = "flagged"
	VerdictRejected Verdict = "rejected"
)

// DamageSummary is the claim-level aggregate of per-image damage signals.
type DamageSummary struct {
	Score    float64  `json:"score"`
	Reducer  string   `json:"reducer"` // min or mean
	Assessed int      `json:"assessed"`
	Failed   int      `json:"failed"`
	Tags     []string `json:"tags,omitempty"`
	Regions  []string `json:"regions,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// ValidationResult is one verdict over one evidence set. Results are
// append-only history on the claim; the claim surfaces the latest.
type ValidationResult struct {
	ClaimID       string         `json:"claim_id"`
	Verdict       Verdict        `json:"verdict"`
	Discrepancies []Discrepancy  `json:"discrepancies"`
	Damage        *DamageSummary `json:"damage,omitempty"`
	Rationale     []string       `json:"rationale"`
	Confidence    float64        `json:"confidence"`

	// EvidenceDigest fingerprints the non-superseded evidence the result
	// was computed from. Identical evidence must reproduce an identical
	// result, timestamp aside.
	EvidenceDigest string `json:"evidence_digest"`

	// Stale is set when artifacts were attached after this result was
	// issued; the record itself is never mutated beyond this flag.
	Stale bool `json:"stale,omitempty"`

	PipelineVersion string    `json:"pipeline_version"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Clone returns a deep copy of the result.
func (r *ValidationResult) Clone() *ValidationResult {
	cp := *r
	cp.Discrepancies = make([]Discrepancy, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		d.Values = append([]FieldValue(nil), d.Values...)
		cp.Discrepancies[i] = d
	}
	cp.Rationale = append([]string(nil), r.Rationale...)
	if r.Damage != nil {
		dmg := *r.Damage
		dmg.Tags = append([]string(nil), r.Damage.Tags...)
		dmg.Regions = append([]string(nil), r.Damage.Regions...)
		dmg.Notes = append([]string(nil), r.Damage.Notes...)
		cp.Damage = &dmg
	}
	return &cp
}
