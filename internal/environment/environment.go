// Package environment derives the variables handed to the devcontainer
// launcher for one container spec.
package environment

import (
	"sort"
	"strings"

	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

// Launcher variable names.
const (
	VarDevcontainerID          = "DEVCONTAINER_ID"
	VarRepoURL                 = "REPO_URL"
	VarBranch                  = "BRANCH"
	VarDevcontainerPath        = "DEVCONTAINER_PATH"
	VarOpenVSCodeToken         = "OPENVSCODE_TOKEN"
	VarPublicIP                = "PUBLIC_IP"
	VarOpenVSCodeServerEnabled = "OPENVSCODE_SERVER_ENABLED"
	VarOpenVSCodeServerPort    = "OPENVSCODE_SERVER_PORT"
	VarSSHEnabled              = "SSH_ENABLED"
	VarSSHPublicKey            = "SSH_PUBLIC_KEY"
	VarSSHPort                 = "SSH_PORT"
	VarPort                    = "PORT"
	VarScripts                 = "SCRIPTS"
)

// SecretVars lists the variables whose values come from the parameter store.
var SecretVars = []string{VarOpenVSCodeToken, VarSSHPublicKey}

// Environment maps variable names to values for one launcher invocation.
type Environment map[string]string

// Keys returns the variable names in sorted order.
func (e Environment) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns base with every variable in e applied on top. Entries of
// base that e overrides are dropped; the explicit variables follow in
// sorted order. Neither base nor e is modified.
func (e Environment) Merge(base []string) []string {
	merged := make([]string, 0, len(base)+len(e))
	for _, kv := range base {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		if _, overridden := e[name]; overridden {
			continue
		}
		merged = append(merged, kv)
	}
	for _, k := range e.Keys() {
		merged = append(merged, k+"="+e[k])
	}
	return merged
}

// Redacted returns a copy with the values of the given keys masked.
func (e Environment) Redacted(keys ...string) Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	for _, k := range keys {
		if _, ok := out[k]; ok {
			out[k] = logging.Placeholder
		}
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
