// Package ssh describes how to reach a provisioned devcontainer: the ssh
// command line for its sshd feature and the URL of its OpenVSCode server.
package ssh

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
)

// Default SSH configuration values.
const (
	DefaultUser           = "vscode"
	DefaultConnectTimeout = 5
)

// Options configures SSH connection parameters.
type Options struct {
	Port               int
	User               string
	Host               string
	StrictHostKeyCheck bool
	KnownHostsFile     string
	IdentityFile       string
	ConnectTimeout     int
}

// DefaultOptions returns Options for a devcontainer published on host.
// Devcontainers are rebuilt often, so host keys are not pinned.
func DefaultOptions(host string, port int) Options {
	return Options{
		Port:               port,
		User:               DefaultUser,
		Host:               host,
		StrictHostKeyCheck: false,
		KnownHostsFile:     "/dev/null",
		ConnectTimeout:     DefaultConnectTimeout,
	}
}

// WithUser returns a copy with the login user set.
func (o Options) WithUser(user string) Options {
	o.User = user
	return o
}

// WithIdentity returns a copy using the given private key.
func (o Options) WithIdentity(path string) Options {
	o.IdentityFile = path
	return o
}

// WithTimeout returns a copy with the specified connect timeout.
func (o Options) WithTimeout(seconds int) Options {
	o.ConnectTimeout = seconds
	return o
}

// BaseArgs returns the common SSH arguments (options only, no user@host).
func (o Options) BaseArgs() []string {
	args := []string{
		"-p", strconv.Itoa(o.Port),
	}

	if o.IdentityFile != "" {
		args = append(args, "-i", o.IdentityFile)
	}

	if !o.StrictHostKeyCheck {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}

	if o.KnownHostsFile != "" {
		args = append(args, "-o", fmt.Sprintf("UserKnownHostsFile=%s", o.KnownHostsFile))
	}

	if o.ConnectTimeout > 0 {
		args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", o.ConnectTimeout))
	}

	return args
}

// Destination returns the user@host string.
func (o Options) Destination() string {
	return fmt.Sprintf("%s@%s", o.User, o.Host)
}

// BuildArgs returns complete SSH arguments for executing a command.
func (o Options) BuildArgs(command ...string) []string {
	args := o.BaseArgs()
	args = append(args, o.Destination())
	args = append(args, command...)
	return args
}

// CommandLine renders the ssh invocation as a single shell-quoted line
// suitable for copy and paste.
func (o Options) CommandLine(command ...string) string {
	return shellquote.Join(append([]string{"ssh"}, o.BuildArgs(command...)...)...)
}

// Endpoint describes how to reach one devcontainer.
type Endpoint struct {
	Container     string `json:"container"`
	OpenVSCodeURL string `json:"openvscode_url,omitempty"`
	SSHCommand    string `json:"ssh_command,omitempty"`
}

// OpenVSCodeURL returns the browser URL of an OpenVSCode server. A
// non-empty token is passed as the tkn query parameter the server expects.
func OpenVSCodeURL(host string, port int, token string) string {
	u := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/",
	}
	if token != "" {
		u.RawQuery = url.Values{"tkn": {token}}.Encode()
	}
	return u.String()
}

// EndpointFor returns the endpoint of spec on host. Services that are not
// enabled are left empty. base supplies user, identity and timeout; its
// Host and Port are replaced.
func EndpointFor(spec fleet.ContainerSpec, host string, base Options, token string) Endpoint {
	ep := Endpoint{Container: spec.ID}
	if spec.OpenVSCodeEnabled() {
		ep.OpenVSCodeURL = OpenVSCodeURL(host, spec.OpenVSCodePort(), token)
	}
	if spec.SSHEnabled() {
		opts := base
		opts.Host = host
		opts.Port = spec.SSHPort()
		ep.SSHCommand = opts.CommandLine()
	}
	return ep
}
