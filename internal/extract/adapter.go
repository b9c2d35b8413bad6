// Package extract wraps the document-understanding capability behind a
// narrow adapter contract: artifact bytes plus a declared type in,
// per-field values with confidence out. The probabilistic provider never
// leaks past this boundary; everything downstream is deterministic.
package extract

import (
	"context"

	"github.com/claimpilot/claimpilot/internal/model"
)

// FieldValue is one raw extracted value with the adapter's confidence.
type FieldValue struct {
	Raw        string  `json:"raw"`
	Confidence float64 `json:"confidence"`
}

// Adapter defines the extraction contract. A failed call condemns only
// the document it was extracting; callers mark that document failed and
// keep the claim alive.
type Adapter interface {
	// Name identifies the provider for rate limiting and reports.
	Name() string

	// Extract returns the fields found in the artifact, keyed by the
	// canonical field names of the document type.
	Extract(ctx context.Context, artifact []byte, contentType string, docType model.DocumentType) (map[string]FieldValue, error)
}

// ClampConfidence forces a provider-reported confidence into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
