package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/claimpilot/claimpilot/internal/model"
)

// Renderer turns claims and validation results into the output formats
// the CLI exposes.
type Renderer struct {
	cfg model.OutputConfig
}

// NewRenderer creates a renderer.
func NewRenderer(cfg model.OutputConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// RenderJSON writes the claim as indented JSON.
func (r *Renderer) RenderJSON(w io.Writer, claim *model.Claim) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(claim)
}

// RenderSummary writes a one-line status for the claim.
func (r *Renderer) RenderSummary(w io.Writer, claim *model.Claim) error {
	verdict := "-"
	if res := claim.LatestResult(); res != nil {
		verdict = string(res.Verdict)
		if res.Stale {
			verdict += " (stale)"
		}
	}
	_, err := fmt.Fprintf(w, "%s  %-22s %-12s verdict=%s docs=%d images=%d\n",
		claim.ID, claim.ClaimNumber, claim.Status, verdict,
		len(claim.ActiveDocuments()), len(claim.ActiveImages()))
	return err
}

// RenderMarkdown writes a human-readable validation report.
func (r *Renderer) RenderMarkdown(w io.Writer, claim *model.Claim) error {
	var b strings.Builder

	title := claim.ClaimNumber
	if title == "" {
		title = claim.ID
	}
	fmt.Fprintf(&b, "# Claim %s\n\n", title)
	fmt.Fprintf(&b, "- Status: `%s`\n", claim.Status)
	fmt.Fprintf(&b, "- Documents: %d active", len(claim.ActiveDocuments()))
	if n := len(claim.Documents) - len(claim.ActiveDocuments()); n > 0 {
		fmt.Fprintf(&b, " (%d superseded or failed)", n)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Images: %d active\n", len(claim.ActiveImages()))

	res := claim.LatestResult()
	if res == nil {
		b.WriteString("\nNo validation run yet.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\n## Verdict: %s\n\n", strings.ToUpper(string(res.Verdict)))
	if res.Stale {
		b.WriteString("> Evidence changed after this result was issued; re-run validation.\n\n")
	}
	fmt.Fprintf(&b, "Confidence: %.2f\n", res.Confidence)

	if len(res.Discrepancies) > 0 {
		b.WriteString("\n### Discrepancies\n\n")
		b.WriteString("| Severity | Field | Detail |\n|---|---|---|\n")
		for _, d := range res.Discrepancies {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", d.Severity, d.Field, d.Explanation)
		}
	}

	if res.Damage != nil {
		fmt.Fprintf(&b, "\n### Damage evidence\n\nScore %.2f (%s over %d image(s), %d failed)\n",
			res.Damage.Score, res.Damage.Reducer, res.Damage.Assessed, res.Damage.Failed)
		if len(res.Damage.Tags) > 0 {
			fmt.Fprintf(&b, "\nObserved: %s\n", strings.Join(res.Damage.Tags, ", "))
		}
		if len(res.Damage.Regions) > 0 {
			fmt.Fprintf(&b, "Regions: %s\n", strings.Join(res.Damage.Regions, ", "))
		}
	}

	if len(res.Rationale) > 0 {
		b.WriteString("\n### Rationale\n\n")
		for _, line := range res.Rationale {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if r.cfg.IncludeFooter {
		fmt.Fprintf(&b, "\n---\npipeline %s · evidence %s · %s\n",
			res.PipelineVersion, shortDigest(res.EvidenceDigest),
			res.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
