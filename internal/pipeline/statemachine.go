package pipeline

import "github.com/claimpilot/claimpilot/internal/model"

// applyAttach moves the claim to the status an attach implies. Attaching
// to a validated claim reopens it and marks every prior result stale; the
// records themselves are never rewritten.
func applyAttach(claim *model.Claim) {
	if claim.Status == model.StatusValidated {
		for i := range claim.Results {
			claim.Results[i].Stale = true
		}
		claim.Status = model.StatusCollecting
		return
	}
	if hasDocuments(claim) {
		claim.Status = model.StatusReadyForValidation
	} else {
		claim.Status = model.StatusCollecting
	}
}

// hasDocuments reports whether any non-superseded document exists,
// regardless of extraction outcome. A claim with only images keeps
// collecting: photographs alone are not enough to validate against.
func hasDocuments(claim *model.Claim) bool {
	for _, d := range claim.Documents {
		if !d.Superseded {
			return true
		}
	}
	return false
}

// canValidate gates RequestValidation.
func canValidate(claim *model.Claim) error {
	if !hasDocuments(claim) {
		return model.ErrInsufficientEvidence
	}
	return nil
}
