package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/claimpilot/claimpilot/internal/model"
)

var _ ArtifactStore = (*DiskArtifactStore)(nil)

// DiskArtifactStore keeps artifact bytes on the local filesystem, one file
// per content digest. Good enough for the CLI and for tests; a deployment
// would put an object store behind the same port.
type DiskArtifactStore struct {
	dir string
}

// NewDiskArtifactStore creates a store rooted at dir.
func NewDiskArtifactStore(dir string) *DiskArtifactStore {
	return &DiskArtifactStore{dir: dir}
}

// Put writes the bytes under their digest and returns the handle.
func (s *DiskArtifactStore) Put(_ context.Context, data []byte, contentType string) (model.ArtifactRef, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.ArtifactRef{}, fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return model.ArtifactRef{}, fmt.Errorf("write artifact: %w", err)
	}

	return model.ArtifactRef{Key: key, ContentType: contentType}, nil
}

// Get reads the bytes for a handle.
func (s *DiskArtifactStore) Get(_ context.Context, ref model.ArtifactRef) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref.Key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

func (s *DiskArtifactStore) path(key string) string {
	return filepath.Join(s.dir, key+".bin")
}
