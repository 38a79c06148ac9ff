package resolver

import (
	"context"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
)

// Resolver determines which internal user an external identity belongs to.
// It is the ONLY place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (auth.User, error)
}
