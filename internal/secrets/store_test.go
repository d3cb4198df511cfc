package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestParameterName(t *testing.T) {
	tests := []struct {
		prefix string
		id     string
		kind   Kind
		want   string
	}{
		{"dev", "web", KindOpenVSCodeToken, "/dev/devcontainers/web/openvscode-token"},
		{"dev", "web", KindSSHPublicKey, "/dev/devcontainers/web/ssh-public-key"},
		{"/team/dev/", "api", KindSSHPublicKey, "/team/dev/devcontainers/api/ssh-public-key"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ParameterName(tt.prefix, tt.id, tt.kind); got != tt.want {
				t.Errorf("ParameterName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(map[string]string{"/a": "1"})
	ctx := context.Background()

	if v, err := store.GetParameter(ctx, "/a"); err != nil || v != "1" {
		t.Errorf("GetParameter(/a) = %q, %v, want %q, nil", v, err, "1")
	}
	if _, err := store.GetParameter(ctx, "/b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetParameter(/b) error = %v, want ErrNotFound", err)
	}

	boom := errors.New("throttled")
	store.FailWith("/a", boom)
	if _, err := store.GetParameter(ctx, "/a"); err != boom {
		t.Errorf("GetParameter(/a) error = %v, want %v", err, boom)
	}

	reads := store.Reads()
	if len(reads) != 3 || reads[0] != "/a" || reads[1] != "/b" {
		t.Errorf("Reads() = %v, want [/a /b /a]", reads)
	}
}
