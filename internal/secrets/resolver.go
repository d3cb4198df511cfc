package secrets

import (
	"context"
	"errors"
	"strings"

	fleeterrors "github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

// Resolver looks up devcontainer secrets under a name prefix.
type Resolver struct {
	store  Store
	prefix string
}

// NewResolver creates a Resolver reading from store under prefix.
func NewResolver(store Store, prefix string) *Resolver {
	return &Resolver{store: store, prefix: prefix}
}

// Name returns the parameter name for a devcontainer secret.
func (r *Resolver) Name(id string, kind Kind) string {
	return ParameterName(r.prefix, id, kind)
}

// Required reads a secret that must exist. Every failure, including a
// missing parameter, is a SecretLookupFailed error carrying the store's
// diagnostic text.
func (r *Resolver) Required(ctx context.Context, id string, kind Kind) (string, error) {
	name := r.Name(id, kind)
	value, err := r.store.GetParameter(ctx, name)
	if err != nil {
		return "", fleeterrors.SecretLookupFailed(id, name, err)
	}
	logging.AddSecret(value)
	return value, nil
}

// Optional reads a secret that may be absent. Any failure, not only a
// missing parameter, is reported as absent; store errors other than
// ErrNotFound are only visible in debug logs. Blank values count as absent.
func (r *Resolver) Optional(ctx context.Context, id string, kind Kind) (string, bool) {
	name := r.Name(id, kind)
	value, err := r.store.GetParameter(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Debug("optional secret lookup failed, treating as absent",
				"devcontainer", id, "parameter", name, "error", err)
		}
		return "", false
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	logging.AddSecret(value)
	return value, true
}
