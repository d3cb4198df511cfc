// Package secrets resolves per-devcontainer secrets from a remote parameter
// store.
//
// Parameters are addressed as /{prefix}/devcontainers/{id}/{kind}. A Store
// reads one parameter with decryption; a Resolver applies the required and
// optional lookup policies on top of it.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names a per-devcontainer secret.
type Kind string

const (
	KindOpenVSCodeToken Kind = "openvscode-token"
	KindSSHPublicKey    Kind = "ssh-public-key"
)

// ErrNotFound is returned by a Store when the parameter does not exist.
var ErrNotFound = errors.New("parameter not found")

// Store reads decrypted parameter values by fully-qualified name.
type Store interface {
	// GetParameter returns the value of name. Absent parameters yield an
	// error wrapping ErrNotFound.
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParameterName builds the hierarchical parameter name for a devcontainer secret.
func ParameterName(prefix, id string, kind Kind) string {
	return fmt.Sprintf("/%s/devcontainers/%s/%s", strings.Trim(prefix, "/"), id, kind)
}

func notFound(name, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %s: %s", ErrNotFound, name, detail)
}
