package secrets

import (
	"context"
	"errors"
	"strings"
	"testing"

	fleeterrors "github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

func TestResolver_Required(t *testing.T) {
	defer logging.ResetSecrets()
	store := NewMemoryStore(map[string]string{
		"/dev/devcontainers/web/openvscode-token": "tok-web",
	})
	r := NewResolver(store, "dev")

	got, err := r.Required(context.Background(), "web", KindOpenVSCodeToken)
	if err != nil {
		t.Fatalf("Required failed: %v", err)
	}
	if got != "tok-web" {
		t.Errorf("Required() = %q, want %q", got, "tok-web")
	}
	if logging.Redact("tok-web") != logging.Placeholder {
		t.Error("resolved token should be registered for redaction")
	}
}

func TestResolver_RequiredMissing(t *testing.T) {
	r := NewResolver(NewMemoryStore(nil), "dev")

	_, err := r.Required(context.Background(), "web", KindOpenVSCodeToken)
	if !fleeterrors.IsKind(err, fleeterrors.KindSecretLookupFailed) {
		t.Fatalf("Required() error = %v, want kind %q", err, fleeterrors.KindSecretLookupFailed)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("error chain should keep ErrNotFound")
	}
	if fleeterrors.ContainerOf(err) != "web" {
		t.Errorf("ContainerOf() = %q, want %q", fleeterrors.ContainerOf(err), "web")
	}
	if !strings.Contains(err.Error(), "/dev/devcontainers/web/openvscode-token") {
		t.Errorf("error = %q, want it to name the parameter", err.Error())
	}
}

func TestResolver_RequiredStoreFailure(t *testing.T) {
	store := NewMemoryStore(nil)
	store.FailWith("/dev/devcontainers/web/openvscode-token", errors.New("AccessDeniedException"))
	r := NewResolver(store, "dev")

	_, err := r.Required(context.Background(), "web", KindOpenVSCodeToken)
	if !fleeterrors.IsKind(err, fleeterrors.KindSecretLookupFailed) {
		t.Fatalf("Required() error = %v, want kind %q", err, fleeterrors.KindSecretLookupFailed)
	}
	if !strings.Contains(err.Error(), "AccessDeniedException") {
		t.Errorf("error = %q, want store diagnostic", err.Error())
	}
}

func TestResolver_Optional(t *testing.T) {
	defer logging.ResetSecrets()
	store := NewMemoryStore(map[string]string{
		"/dev/devcontainers/web/ssh-public-key":   "ssh-ed25519 AAAA web\n",
		"/dev/devcontainers/blank/ssh-public-key": "   ",
	})
	store.FailWith("/dev/devcontainers/flaky/ssh-public-key", errors.New("RequestTimeout"))
	r := NewResolver(store, "dev")
	ctx := context.Background()

	tests := []struct {
		id        string
		wantValue string
		wantFound bool
	}{
		{"web", "ssh-ed25519 AAAA web", true},
		{"missing", "", false},
		{"blank", "", false},
		// transport failures are masked as absent
		{"flaky", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, found := r.Optional(ctx, tt.id, KindSSHPublicKey)
			if got != tt.wantValue || found != tt.wantFound {
				t.Errorf("Optional(%s) = %q, %v, want %q, %v", tt.id, got, found, tt.wantValue, tt.wantFound)
			}
		})
	}
}

func TestResolver_Name(t *testing.T) {
	r := NewResolver(NewMemoryStore(nil), "dev")
	if got := r.Name("web", KindSSHPublicKey); got != "/dev/devcontainers/web/ssh-public-key" {
		t.Errorf("Name() = %q, want %q", got, "/dev/devcontainers/web/ssh-public-key")
	}
}
