// Package assess scores damage photographs against the claim's declared
// loss. Like extraction, the vision provider sits behind a narrow adapter;
// aggregation over images is deterministic and an unassessable image is
// excluded and noted, never fatal.
package assess

import (
	"context"

	"github.com/claimpilot/claimpilot/internal/model"
)

// DeclaredDamage is the loss the claimant described, taken from the claim
// form and repair estimate when present.
type DeclaredDamage struct {
	Description string
	Location    string // front, rear, left, right
	Parts       string // from the repair estimate
}

// Adapter defines the damage-assessment contract.
type Adapter interface {
	// Name identifies the provider for rate limiting and reports.
	Name() string

	// Assess scores one image against the declared damage.
	Assess(ctx context.Context, image []byte, contentType string, declared DeclaredDamage) (*model.DamageSignal, error)
}
