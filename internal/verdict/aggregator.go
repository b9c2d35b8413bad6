// Package verdict combines discrepancies, the damage signal and document
// completeness into the final decision. The decision function is
// deterministic and the rationale ordering is stable: critical, major,
// minor, damage notes, completeness notes.
package verdict

import (
	"fmt"
	"sort"

	"github.com/claimpilot/claimpilot/internal/model"
)

// Aggregator computes verdicts.
type Aggregator struct {
	cfg model.VerdictConfig
}

// New creates an aggregator with the given configuration.
func New(cfg model.VerdictConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Outcome is the aggregated decision.
type Outcome struct {
	Verdict    model.Verdict
	Rationale  []string
	Confidence float64
}

// Decide produces the verdict for a claim given its current discrepancy
// set and damage summary. Discrepancies must already be sorted by the
// checker (severity desc) for the rationale ordering to hold.
func (a *Aggregator) Decide(claim *model.Claim, discrepancies []model.Discrepancy, damage *model.DamageSummary) Outcome {
	var (
		hasCritical bool
		rationale   []string
	)

	for _, d := range discrepancies {
		if d.Severity == model.SeverityCritical {
			hasCritical = true
		}
		rationale = append(rationale, d.Explanation)
	}

	damageLow := false
	var damageNotes []string
	if damage != nil {
		if damage.Assessed > 0 && damage.Score < a.cfg.DamageThreshold {
			damageLow = true
			damageNotes = append(damageNotes, fmt.Sprintf(
				"damage evidence score %.2f below threshold %.2f",
				damage.Score, a.cfg.DamageThreshold))
		}
		damageNotes = append(damageNotes, damage.Notes...)
	}

	var completeness []string
	missingRequired := false
	for _, t := range a.cfg.RequiredDocuments {
		if !claim.HasDocumentType(t) {
			missingRequired = true
			completeness = append(completeness, fmt.Sprintf("required document missing: %s", t))
		}
	}

	artifactFailed := false
	for _, d := range claim.Documents {
		if !d.Superseded && d.ExtractionStatus == model.ExtractionFailed {
			artifactFailed = true
			completeness = append(completeness, fmt.Sprintf("document %s (%s) unprocessable", d.ID, d.Type))
		}
	}
	for _, img := range claim.ActiveImages() {
		if img.AssessmentStatus == model.AssessmentFailed {
			artifactFailed = true
			completeness = append(completeness, fmt.Sprintf("image %s unassessable", img.ID))
		}
	}

	rationale = append(rationale, damageNotes...)
	rationale = append(rationale, completeness...)

	// Approval means a clean claim: any discrepancy, minor included, puts
	// it in front of a human assessor.
	verdict := model.VerdictApproved
	switch {
	case hasCritical || missingRequired:
		verdict = model.VerdictRejected
	case len(discrepancies) > 0 || damageLow || artifactFailed:
		verdict = model.VerdictFlagged
	}

	return Outcome{
		Verdict:    verdict,
		Rationale:  rationale,
		Confidence: confidence(claim, damage),
	}
}

// confidence averages the adapter-reported field confidences across active
// documents together with the damage score. Purely informational; it never
// changes the verdict.
func confidence(claim *model.Claim, damage *model.DamageSummary) float64 {
	var sum float64
	var n int
	for _, d := range claim.ActiveDocuments() {
		// Summed in sorted field order so repeated runs reproduce the
		// exact float, not just an approximation of it.
		names := make([]string, 0, len(d.Fields))
		for name := range d.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sum += d.Fields[name].Confidence
			n++
		}
	}
	if damage != nil && damage.Assessed > 0 {
		sum += damage.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
