package model

import "time"

// ClaimStatus represents the lifecycle state of a claim
type ClaimStatus string

const (
	StatusCreated            ClaimStatus = "created"              // Claim exists, no artifacts yet
	StatusCollecting         ClaimStatus = "collecting"           // Artifacts being attached
	StatusReadyForValidation ClaimStatus = "ready_for_validation" // Has documents, no verdict for current evidence
	StatusValidated          ClaimStatus = "validated"            // Latest verdict covers current evidence
)

// Claim is the aggregate root. It exclusively owns its documents, images
// and validation history; none of them outlive the claim.
type Claim struct {
	ID          string        `json:"id"`
	ClaimNumber string        `json:"claim_number,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      ClaimStatus   `json:"status"`
	Documents   []Document    `json:"documents"`
	Images      []DamageImage `json:"images"`

	// Results is append-only validation history, oldest first.
	Results []ValidationResult `json:"results,omitempty"`

	// Version is the optimistic-concurrency counter. Every successful
	// save increments it; a save against a stale version is rejected.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LatestResult returns the most recent validation result, or nil.
func (c *Claim) LatestResult() *ValidationResult {
	if len(c.Results) == 0 {
		return nil
	}
	return &c.Results[len(c.Results)-1]
}

// ActiveDocuments returns documents that participate in consistency
// checking: not superseded and successfully extracted.
func (c *Claim) ActiveDocuments() []Document {
	var active []Document
	for _, d := range c.Documents {
		if !d.Superseded && d.ExtractionStatus == ExtractionSucceeded {
			active = append(active, d)
		}
	}
	return active
}

// ActiveImages returns images that are not superseded.
func (c *Claim) ActiveImages() []DamageImage {
	var active []DamageImage
	for _, img := range c.Images {
		if !img.Superseded {
			active = append(active, img)
		}
	}
	return active
}

// HasDocumentType reports whether a non-superseded document of the given
// type exists, regardless of extraction outcome.
func (c *Claim) HasDocumentType(t DocumentType) bool {
	for _, d := range c.Documents {
		if !d.Superseded && d.Type == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted state behind the version check.
func (c *Claim) Clone() *Claim {
	cp := *c
	cp.Documents = make([]Document, len(c.Documents))
	for i := range c.Documents {
		cp.Documents[i] = *c.Documents[i].Clone()
	}
	cp.Images = make([]DamageImage, len(c.Images))
	for i := range c.Images {
		cp.Images[i] = *c.Images[i].Clone()
	}
	cp.Results = make([]ValidationResult, len(c.Results))
	for i := range c.Results {
		cp.Results[i] = *c.Results[i].Clone()
	}
	return &cp
}
