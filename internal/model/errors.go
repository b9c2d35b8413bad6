package model

import "errors"

// Domain errors. Client errors are surfaced directly and must not be
// retried; concurrency errors are retryable; artifact errors are recovered
// locally by marking the artifact failed and continuing.
var (
	// ErrClaimNotFound indicates the referenced claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrInvalidDocumentType indicates a declared type outside the
	// accepted enumeration.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrInsufficientEvidence indicates validation was requested with no
	// documents attached.
	ErrInsufficientEvidence = errors.New("insufficient evidence: no documents attached")

	// ErrConcurrentModification indicates a conflicting write to the same
	// claim. Retryable: the caller should reload and re-request.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrExtractionFailed marks a single document the adapter could not
	// process. Never aborts the claim.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrAssessmentFailed marks a single image the damage adapter could
	// not process. Never aborts the claim.
	ErrAssessmentFailed = errors.New("assessment failed")

	// ErrArtifactNotFound indicates an opaque handle the artifact store
	// cannot resolve.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// IsClientError reports whether err is the caller's fault and should be
// surfaced without retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrClaimNotFound) ||
		errors.Is(err, ErrInvalidDocumentType) ||
		errors.Is(err, ErrInsufficientEvidence)
}

// IsRetryable reports whether the caller may safely re-issue the request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
