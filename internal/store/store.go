// Package store defines the persistence ports the pipeline depends on and
// ships the in-process implementations. The storage technology behind a
// production deployment is an external concern; the core only requires
// these narrow contracts.
package store

import (
	"context"

	"github.com/claimpilot/claimpilot/internal/model"
)

// ClaimStore persists claims with optimistic concurrency. Implementations
// must hand out copies: a caller mutating a returned claim must never
// affect stored state until Save succeeds.
type ClaimStore interface {
	// Create stores a new claim and assigns version 1.
	Create(ctx context.Context, claim *model.Claim) error

	// Get returns the claim or model.ErrClaimNotFound.
	Get(ctx context.Context, id string) (*model.Claim, error)

	// Save writes the claim if its stored version still equals
	// expectedVersion, then increments the version. A stale expectation
	// fails with model.ErrConcurrentModification and leaves the stored
	// claim untouched.
	Save(ctx context.Context, claim *model.Claim, expectedVersion int64) error

	// List returns claims ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]model.Claim, error)
}

// ArtifactStore holds raw uploaded bytes behind opaque handles.
type ArtifactStore interface {
	// Put stores the bytes and returns a handle for later retrieval.
	Put(ctx context.Context, data []byte, contentType string) (model.ArtifactRef, error)

	// Get resolves a handle or fails with model.ErrArtifactNotFound.
	Get(ctx context.Context, ref model.ArtifactRef) ([]byte, error)
}
