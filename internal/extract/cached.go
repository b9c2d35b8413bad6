package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claimpilot/claimpilot/internal/cache"
	"github.com/claimpilot/claimpilot/internal/model"
)

// CachedAdapter memoizes a wrapped adapter by artifact digest. Only
// successful extractions are cached; failures always retry the provider.
type CachedAdapter struct {
	inner   Adapter
	cache   cache.Cache
	ttl     time.Duration
	version string
}

// NewCachedAdapter wraps an adapter with a cache. The version string is
// the pipeline version; bumping it invalidates all prior entries.
func NewCachedAdapter(inner Adapter, c cache.Cache, ttl time.Duration, version string) *CachedAdapter {
	return &CachedAdapter{
		inner:   inner,
		cache:   c,
		ttl:     ttl,
		version: version,
	}
}

// Name returns the wrapped provider's name
func (a *CachedAdapter) Name() string {
	return a.inner.Name()
}

// Extract serves from cache when possible.
func (a *CachedAdapter) Extract(ctx context.Context, artifact []byte, contentType string, docType model.DocumentType) (map[string]FieldValue, error) {
	key := cache.Key(cache.ArtifactDigest(artifact), string(docType), a.version)

	if data, found := a.cache.Get(key); found {
		var fields map[string]FieldValue
		if err := json.Unmarshal(data, &fields); err == nil {
			return fields, nil
		}
		// Corrupt entry: drop it and re-extract.
		_ = a.cache.Delete(key)
	}

	fields, err := a.inner.Extract(ctx, artifact, contentType, docType)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fields); err == nil {
		_ = a.cache.Set(key, data, a.ttl)
	}
	return fields, nil
}
