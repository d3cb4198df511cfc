package health

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/port"
)

// Status represents the reachability of a devcontainer
type Status string

const (
	StatusHealthy     Status = "healthy"
	StatusDegraded    Status = "degraded"
	StatusUnreachable Status = "unreachable"

	// DefaultTimeout bounds each TCP connect.
	DefaultTimeout = 2 * time.Second
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Probe is the outcome of one port check.
type Probe struct {
	Binding   port.Binding  `json:"binding"`
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
}

// Report collects the probes of one devcontainer.
type Report struct {
	Container string  `json:"container"`
	Status    Status  `json:"status"`
	Probes    []Probe `json:"probes"`
}

// Prober checks TCP reachability of published ports.
type Prober struct {
	Dialer  Dialer
	Timeout time.Duration
}

// NewProber creates a Prober using a net.Dialer.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{Dialer: &net.Dialer{}, Timeout: timeout}
}

// CheckPort connects to host on the binding's port.
func (p *Prober) CheckPort(ctx context.Context, host string, b port.Binding) Probe {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(b.Port))
	start := time.Now()
	conn, err := p.Dialer.DialContext(ctx, "tcp", addr)
	probe := Probe{Binding: b, Latency: time.Since(start)}
	if err != nil {
		probe.Error = err.Error()
		logging.Debug("probe failed", "address", addr, "container", b.Container, "error", err)
		return probe
	}
	_ = conn.Close()
	probe.Reachable = true
	return probe
}

// CheckFleet probes every binding the specs publish under policy and
// groups the results per container, in configuration order.
func (p *Prober) CheckFleet(ctx context.Context, host string, specs []fleet.ContainerSpec, policy string) []Report {
	var reports []Report
	index := make(map[string]int)
	for _, b := range port.Bindings(specs, policy) {
		i, ok := index[b.Container]
		if !ok {
			i = len(reports)
			index[b.Container] = i
			reports = append(reports, Report{Container: b.Container})
		}
		reports[i].Probes = append(reports[i].Probes, p.CheckPort(ctx, host, b))
	}
	for i := range reports {
		reports[i].Status = Summarize(reports[i].Probes)
	}
	return reports
}

// Summarize returns the Status for a set of probes.
func Summarize(probes []Probe) Status {
	up := 0
	for _, p := range probes {
		if p.Reachable {
			up++
		}
	}
	switch {
	case up == len(probes) && up > 0:
		return StatusHealthy
	case up > 0:
		return StatusDegraded
	default:
		return StatusUnreachable
	}
}
