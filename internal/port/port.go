package port

import (
	"fmt"
	"sort"
	"strings"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
)

// Service names a port a devcontainer publishes.
type Service string

const (
	ServiceApp        Service = "port"
	ServiceOpenVSCode Service = "openvscode_server"
	ServiceSSH        Service = "ssh"
)

// Binding is one host port claimed by a devcontainer service.
type Binding struct {
	Port      int
	Container string
	Service   Service
}

func (b Binding) String() string {
	return fmt.Sprintf("%s/%s", b.Container, b.Service)
}

// Conflict lists the bindings that claim the same host port.
type Conflict struct {
	Port     int
	Bindings []Binding
}

func (c Conflict) String() string {
	owners := make([]string, len(c.Bindings))
	for i, b := range c.Bindings {
		owners[i] = b.String()
	}
	return fmt.Sprintf("port %d is claimed by %s", c.Port, strings.Join(owners, ", "))
}

// Bindings returns the host ports the specs publish under the named
// environment policy, in document order.
func Bindings(specs []fleet.ContainerSpec, policy string) []Binding {
	var out []Binding
	for i := range specs {
		s := &specs[i]
		switch policy {
		case environment.PolicyPlain:
			out = append(out, Binding{Port: s.PortOrDefault(), Container: s.ID, Service: ServiceApp})
		case environment.PolicyWebUI:
			if s.OpenVSCodeEnabled() {
				out = append(out, Binding{Port: s.OpenVSCodePort(), Container: s.ID, Service: ServiceOpenVSCode})
			}
			if s.SSHEnabled() {
				out = append(out, Binding{Port: s.SSHPort(), Container: s.ID, Service: ServiceSSH})
			}
		}
	}
	return out
}

// Conflicts finds host ports claimed more than once, lowest port first.
func Conflicts(specs []fleet.ContainerSpec, policy string) []Conflict {
	byPort := make(map[int][]Binding)
	for _, b := range Bindings(specs, policy) {
		byPort[b.Port] = append(byPort[b.Port], b)
	}

	var conflicts []Conflict
	for p, bindings := range byPort {
		if len(bindings) > 1 {
			conflicts = append(conflicts, Conflict{Port: p, Bindings: bindings})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Port < conflicts[j].Port
	})
	return conflicts
}
