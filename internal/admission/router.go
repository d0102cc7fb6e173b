package admission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
)

// TokenDigest returns the SHA-256 hex digest of a raw entrance token.
// Only digests are stored and compared, so a dumped token table cannot be
// replayed at an entrance.
func TokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Router disambiguates which facility an entrance token belongs to and
// dispatches the scan to that facility's controller.  It is the single
// authoritative token→facility lookup: a token found in more than one
// facility's active set is a provisioning fault and is hard-failed as
// ambiguous, never silently resolved by picking one.
type Router struct {
	registry    TokenRegistry
	controllers map[uint64]*Controller
}

// NewRouter builds a Router over the provisioning registry and the
// controllers of every facility the process serves.
func NewRouter(registry TokenRegistry, controllers ...*Controller) *Router {
	r := &Router{registry: registry, controllers: make(map[uint64]*Controller, len(controllers))}
	for _, ctl := range controllers {
		r.controllers[ctl.Facility().ID] = ctl
	}
	return r
}

// Route resolves a raw token to the controller of the single facility that
// provisioned it.  A zero Reason means the controller was found; otherwise
// Reason explains the denial.  A non-nil error means the registry itself
// was unreachable.
func (r *Router) Route(ctx context.Context, token string) (*Controller, Reason, error) {
	ids, err := r.registry.Facilities(ctx, TokenDigest(token))
	if err != nil {
		return nil, "", fmt.Errorf("%w: token registry: %v", ErrUnavailable, err)
	}
	switch len(ids) {
	case 0:
		return nil, ReasonUnknownToken, nil
	case 1:
	default:
		log.Printf("admission: token digest maps to %d facilities %v; refusing to pick one", len(ids), ids)
		return nil, ReasonAmbiguousToken, nil
	}
	ctl, ok := r.controllers[ids[0]]
	if !ok {
		// Provisioned for a facility this process does not serve.
		log.Printf("admission: token routed to unserved facility %d", ids[0])
		return nil, ReasonUnknownToken, nil
	}
	return ctl, "", nil
}
