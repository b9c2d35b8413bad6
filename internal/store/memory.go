package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/claimpilot/claimpilot/internal/model"
)

// Ensure the implementations satisfy the ports.
var (
	_ ClaimStore    = (*MemoryClaimStore)(nil)
	_ ArtifactStore = (*MemoryArtifactStore)(nil)
)

// MemoryClaimStore is an in-memory ClaimStore with optimistic versioning.
type MemoryClaimStore struct {
	mu     sync.RWMutex
	claims map[string]*model.Claim
}

// NewMemoryClaimStore creates an empty in-memory claim store.
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		claims: make(map[string]*model.Claim),
	}
}

// Create stores a new claim at version 1.
func (s *MemoryClaimStore) Create(_ context.Context, claim *model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := claim.Clone()
	cp.Version = 1
	s.claims[cp.ID] = cp
	claim.Version = 1
	return nil
}

// Get returns a deep copy of the claim.
func (s *MemoryClaimStore) Get(_ context.Context, id string) (*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[id]
	if !ok {
		return nil, model.ErrClaimNotFound
	}
	return claim.Clone(), nil
}

// Save applies the compare-and-swap write rule.
func (s *MemoryClaimStore) Save(_ context.Context, claim *model.Claim, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.claims[claim.ID]
	if !ok {
		return model.ErrClaimNotFound
	}
	if stored.Version != expectedVersion {
		return model.ErrConcurrentModification
	}

	cp := claim.Clone()
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now().UTC()
	s.claims[cp.ID] = cp
	claim.Version = cp.Version
	claim.UpdatedAt = cp.UpdatedAt
	return nil
}

// List returns claims newest first.
func (s *MemoryClaimStore) List(_ context.Context, offset, limit int) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*model.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]model.Claim, 0, end-offset)
	for _, c := range all[offset:end] {
		out = append(out, *c.Clone())
	}
	return out, nil
}

// MemoryArtifactStore keeps artifact bytes in memory, keyed by content
// digest. Repeated uploads of identical bytes share one entry.
type MemoryArtifactStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryArtifactStore creates an empty in-memory artifact store.
func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores the bytes and returns a digest-keyed handle.
func (s *MemoryArtifactStore) Put(_ context.Context, data []byte, contentType string) (model.ArtifactRef, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)

	return model.ArtifactRef{Key: key, ContentType: contentType}, nil
}

// Get resolves a handle.
func (s *MemoryArtifactStore) Get(_ context.Context, ref model.ArtifactRef) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[ref.Key]
	if !ok {
		return nil, model.ErrArtifactNotFound
	}
	return append([]byte(nil), data...), nil
}
