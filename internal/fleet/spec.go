// Package fleet defines devcontainer specifications and loads them from the
// fleet configuration document.
package fleet

import (
	"fmt"
	"regexp"
)

// Default ports applied when a spec omits them.
const (
	DefaultPort           = 8000
	DefaultOpenVSCodePort = 8000
	DefaultSSHPort        = 2222
)

// ContainerSpec describes one devcontainer to provision.
type ContainerSpec struct {
	ID               string              `json:"id"`
	Source           string              `json:"source"`
	Branch           string              `json:"branch,omitempty"`
	DevcontainerPath string              `json:"devcontainer_path,omitempty"`
	Port             *int                `json:"port,omitempty"`
	RemoteAccess     *RemoteAccessConfig `json:"remote_access,omitempty"`
}

// RemoteAccessConfig enables remote access services. A service is enabled
// when its key is present, even if its value is an empty object.
type RemoteAccessConfig struct {
	OpenVSCodeServer *ServiceConfig `json:"openvscode_server,omitempty"`
	SSH              *ServiceConfig `json:"ssh,omitempty"`
}

// ServiceConfig configures one remote access service.
type ServiceConfig struct {
	Port *int `json:"port,omitempty"`
}

// PortOrDefault returns the top-level port, defaulting to DefaultPort.
func (s *ContainerSpec) PortOrDefault() int {
	if s.Port != nil {
		return *s.Port
	}
	return DefaultPort
}

// OpenVSCodeEnabled reports whether the openvscode_server key is present.
func (s *ContainerSpec) OpenVSCodeEnabled() bool {
	return s.RemoteAccess != nil && s.RemoteAccess.OpenVSCodeServer != nil
}

// SSHEnabled reports whether the ssh key is present.
func (s *ContainerSpec) SSHEnabled() bool {
	return s.RemoteAccess != nil && s.RemoteAccess.SSH != nil
}

// OpenVSCodePort returns the OpenVSCode server port. Only meaningful when
// OpenVSCodeEnabled is true.
func (s *ContainerSpec) OpenVSCodePort() int {
	if s.OpenVSCodeEnabled() {
		return s.RemoteAccess.OpenVSCodeServer.PortOr(DefaultOpenVSCodePort)
	}
	return DefaultOpenVSCodePort
}

// SSHPort returns the SSH port. Only meaningful when SSHEnabled is true.
func (s *ContainerSpec) SSHPort() int {
	if s.SSHEnabled() {
		return s.RemoteAccess.SSH.PortOr(DefaultSSHPort)
	}
	return DefaultSSHPort
}

// PortOr returns the configured port or def.
func (c *ServiceConfig) PortOr(def int) int {
	if c != nil && c.Port != nil {
		return *c.Port
	}
	return def
}

// idRegex matches the characters allowed in a parameter store path segment.
var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,128}$`)

// Validate checks required fields and value ranges. Load does not call it;
// missing fields surface when the environment is built.
func (s *ContainerSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !idRegex.MatchString(s.ID) {
		return fmt.Errorf("invalid id %q: must contain only letters, digits, '.', '_' or '-' and be at most 128 characters", s.ID)
	}
	if s.Source == "" {
		return fmt.Errorf("source is required")
	}

	ports := map[string]*int{"port": s.Port}
	if s.RemoteAccess != nil {
		if s.RemoteAccess.OpenVSCodeServer != nil {
			ports["remote_access.openvscode_server.port"] = s.RemoteAccess.OpenVSCodeServer.Port
		}
		if s.RemoteAccess.SSH != nil {
			ports["remote_access.ssh.port"] = s.RemoteAccess.SSH.Port
		}
	}
	for name, p := range ports {
		if p != nil && (*p < 1 || *p > 65535) {
			return fmt.Errorf("%s must be between 1 and 65535 (got %d)", name, *p)
		}
	}

	return nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
