package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/claimpilot/internal/model"
)

func TestDiskArtifactStore_RoundTrip(t *testing.T) {
	s := NewDiskArtifactStore(t.TempDir())
	ctx := context.Background()

	data := []byte("damage photo bytes")
	ref, err := s.Put(ctx, data, "image/jpeg")
	require.NoError(t, err)

	got, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDiskArtifactStore_Missing(t *testing.T) {
	s := NewDiskArtifactStore(t.TempDir())

	_, err := s.Get(context.Background(), model.ArtifactRef{Key: "missing"})
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)
}

func TestFileClaimStore_RoundTrip(t *testing.T) {
	s := NewFileClaimStore(t.TempDir())
	ctx := context.Background()

	claim := newClaim("c1", time.Now().UTC())
	claim.Documents = []model.Document{{
		ID: "d1", Type: model.DocTypePolicy,
		ExtractionStatus: model.ExtractionSucceeded,
		Fields: map[string]model.ExtractedField{
			"policy_number": {Name: "policy_number", Raw: "POL-1", Normalized: "pol1"},
		},
	}}
	require.NoError(t, s.Create(ctx, claim))

	got, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "pol1", got.Documents[0].Fields["policy_number"].Normalized)
}

func TestFileClaimStore_SaveConflict(t *testing.T) {
	s := NewFileClaimStore(t.TempDir())
	ctx := context.Background()

	claim := newClaim("c1", time.Now().UTC())
	require.NoError(t, s.Create(ctx, claim))

	first, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	second, err := s.Get(ctx, "c1")
	require.NoError(t, err)

	first.Status = model.StatusCollecting
	require.NoError(t, s.Save(ctx, first, first.Version))

	second.Status = model.StatusValidated
	err = s.Save(ctx, second, second.Version)
	assert.ErrorIs(t, err, model.ErrConcurrentModification)
}

func TestFileClaimStore_ListAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writer := NewFileClaimStore(dir)
	require.NoError(t, writer.Create(ctx, newClaim("c1", base)))
	require.NoError(t, writer.Create(ctx, newClaim("c2", base.Add(time.Hour))))

	// A fresh instance over the same directory sees the same claims,
	// which is what makes separate CLI invocations work.
	reader := NewFileClaimStore(dir)
	all, err := reader.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c2", all[0].ID)
}

func TestFileClaimStore_GetMissing(t *testing.T) {
	s := NewFileClaimStore(t.TempDir())

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrClaimNotFound)
}
