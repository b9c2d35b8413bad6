// Package cache memoizes extraction-adapter output. Extraction is the
// expensive, probabilistic step of the pipeline; caching by artifact
// digest keeps re-validation cheap for unchanged artifacts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ArtifactDigest fingerprints raw artifact bytes.
func ArtifactDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds a cache key for one extraction: the artifact digest, the
// declared document type and the pipeline version. Bumping the pipeline
// version invalidates every prior entry.
func Key(digest, docType, pipelineVersion string) string {
	return "claimpilot:" + pipelineVersion + ":" + docType + ":" + digest
}
