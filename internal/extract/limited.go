package extract

import (
	"context"
	"fmt"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/worker"
)

var _ Adapter = (*LimitedAdapter)(nil)

// LimitedAdapter throttles an adapter through the shared per-provider
// rate limiter. Wrap it inside the cache layer so cache hits never wait.
type LimitedAdapter struct {
	inner   Adapter
	limiter *worker.Limiter
}

// NewLimitedAdapter wraps inner with the limiter.
func NewLimitedAdapter(inner Adapter, limiter *worker.Limiter) *LimitedAdapter {
	return &LimitedAdapter{inner: inner, limiter: limiter}
}

func (a *LimitedAdapter) Name() string { return a.inner.Name() }

func (a *LimitedAdapter) Extract(ctx context.Context, artifact []byte, contentType string, docType model.DocumentType) (map[string]FieldValue, error) {
	if err := a.limiter.Wait(ctx, a.inner.Name()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return a.inner.Extract(ctx, artifact, contentType, docType)
}
