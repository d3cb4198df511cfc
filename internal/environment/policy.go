package environment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/secrets"
)

// Policy names.
const (
	PolicyWebUI = "web-ui"
	PolicyPlain = "plain"
)

// Launcher script names, one per policy.
const (
	LauncherWebUI = "devcontainer_up_with_web_ui.sh"
	LauncherPlain = "devcontainer_up.sh"
)

// LauncherName returns the launcher script the named policy drives.
func LauncherName(policy string) (string, error) {
	switch policy {
	case PolicyWebUI:
		return LauncherWebUI, nil
	case PolicyPlain:
		return LauncherPlain, nil
	default:
		_, err := ParsePolicyName(policy)
		return "", err
	}
}

// Policy derives the launcher environment for a container spec.
type Policy interface {
	// Name identifies the policy.
	Name() string

	// Launcher is the script file name the policy's variables are meant for.
	Launcher() string

	// Build returns a fresh Environment for spec.
	Build(ctx context.Context, spec fleet.ContainerSpec) (Environment, error)
}

// SecretSource is the lookup surface WebUIPolicy needs from a resolver.
type SecretSource interface {
	Required(ctx context.Context, id string, kind secrets.Kind) (string, error)
	Optional(ctx context.Context, id string, kind secrets.Kind) (string, bool)
}

// ParsePolicyName validates a policy name.
func ParsePolicyName(name string) (string, error) {
	switch name {
	case PolicyWebUI, PolicyPlain:
		return name, nil
	default:
		return "", fmt.Errorf("unknown environment policy %q (must be %s or %s)", name, PolicyWebUI, PolicyPlain)
	}
}

// base sets the variables common to every policy.
func base(spec fleet.ContainerSpec) (Environment, error) {
	if spec.ID == "" {
		return nil, errors.MissingField("", "id")
	}
	if spec.Source == "" {
		return nil, errors.MissingField(spec.ID, "source")
	}

	env := Environment{
		VarDevcontainerID: spec.ID,
		VarRepoURL:        spec.Source,
	}
	if spec.Branch != "" {
		env[VarBranch] = spec.Branch
	}
	if spec.DevcontainerPath != "" {
		env[VarDevcontainerPath] = spec.DevcontainerPath
	}
	return env, nil
}

// PlainPolicy forwards the spec's top-level port and performs no secret
// lookups.
type PlainPolicy struct{}

// Name implements Policy.
func (PlainPolicy) Name() string { return PolicyPlain }

// Launcher implements Policy.
func (PlainPolicy) Launcher() string { return LauncherPlain }

// Build implements Policy.
func (PlainPolicy) Build(_ context.Context, spec fleet.ContainerSpec) (Environment, error) {
	env, err := base(spec)
	if err != nil {
		return nil, err
	}
	env[VarPort] = strconv.Itoa(spec.PortOrDefault())
	return env, nil
}

// WebUIPolicy injects the OpenVSCode token and remote access settings.
type WebUIPolicy struct {
	PublicIP string
	Secrets  SecretSource
}

// Name implements Policy.
func (p *WebUIPolicy) Name() string { return PolicyWebUI }

// Launcher implements Policy.
func (p *WebUIPolicy) Launcher() string { return LauncherWebUI }

// Build implements Policy.
func (p *WebUIPolicy) Build(ctx context.Context, spec fleet.ContainerSpec) (Environment, error) {
	env, err := base(spec)
	if err != nil {
		return nil, err
	}

	token, err := p.Secrets.Required(ctx, spec.ID, secrets.KindOpenVSCodeToken)
	if err != nil {
		return nil, err
	}
	env[VarOpenVSCodeToken] = token
	env[VarPublicIP] = p.PublicIP

	env[VarOpenVSCodeServerEnabled] = boolString(spec.OpenVSCodeEnabled())
	if spec.OpenVSCodeEnabled() {
		env[VarOpenVSCodeServerPort] = strconv.Itoa(spec.OpenVSCodePort())
	}

	env[VarSSHEnabled] = boolString(spec.SSHEnabled())
	if spec.SSHEnabled() {
		// Only the container's own key is accepted; there is no shared key.
		key, found := p.Secrets.Optional(ctx, spec.ID, secrets.KindSSHPublicKey)
		if !found {
			return nil, errors.NoSSHKeyAvailable(spec.ID)
		}
		env[VarSSHPublicKey] = key
		env[VarSSHPort] = strconv.Itoa(spec.SSHPort())
	}

	return env, nil
}

var (
	_ Policy = PlainPolicy{}
	_ Policy = (*WebUIPolicy)(nil)
)
