package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claimpilot/claimpilot/internal/model"
)

var _ ClaimStore = (*FileClaimStore)(nil)

// FileClaimStore persists claims as one JSON file each, so CLI
// invocations share state without a database. The version check runs
// under a process-wide mutex; cross-process races are out of scope for a
// local tool.
type FileClaimStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileClaimStore creates a store rooted at dir.
func NewFileClaimStore(dir string) *FileClaimStore {
	return &FileClaimStore{dir: dir}
}

// Create writes a new claim at version 1.
func (s *FileClaimStore) Create(_ context.Context, claim *model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := claim.Clone()
	cp.Version = 1
	if err := s.write(cp); err != nil {
		return err
	}
	claim.Version = 1
	return nil
}

// Get reads a claim by ID.
func (s *FileClaimStore) Get(_ context.Context, id string) (*model.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// Save applies the compare-and-swap write rule against the stored file.
func (s *FileClaimStore) Save(_ context.Context, claim *model.Claim, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read(claim.ID)
	if err != nil {
		return err
	}
	if stored.Version != expectedVersion {
		return model.ErrConcurrentModification
	}

	cp := claim.Clone()
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now().UTC()
	if err := s.write(cp); err != nil {
		return err
	}
	claim.Version = cp.Version
	claim.UpdatedAt = cp.UpdatedAt
	return nil
}

// List reads every claim file, newest first.
func (s *FileClaimStore) List(_ context.Context, offset, limit int) ([]model.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list claims: %w", err)
	}

	var all []*model.Claim
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		c, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue // skip unreadable entries rather than failing the listing
		}
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
		out = append(out, *c)
	}
	return out, nil
}

func (s *FileClaimStore) read(id string) (*model.Claim, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrClaimNotFound
		}
		return nil, fmt.Errorf("read claim: %w", err)
	}
	var claim model.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("decode claim %s: %w", id, err)
	}
	return &claim, nil
}

func (s *FileClaimStore) write(claim *model.Claim) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create claim dir: %w", err)
	}
	data, err := json.MarshalIndent(claim, "", "  ")
	if err != nil {
		return fmt.Errorf("encode claim: %w", err)
	}
	// Write-then-rename so a crash never leaves a half-written claim.
	tmp := s.path(claim.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write claim: %w", err)
	}
	if err := os.Rename(tmp, s.path(claim.ID)); err != nil {
		return fmt.Errorf("write claim: %w", err)
	}
	return nil
}

func (s *FileClaimStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
