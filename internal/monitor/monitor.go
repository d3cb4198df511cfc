// Package monitor provides periodic reachability monitoring for a fleet.
package monitor

import (
	"context"
	"time"

	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/health"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

// Change is a devcontainer whose status differs from the previous check.
type Change struct {
	Container string
	Previous  health.Status // empty on the first check
	Current   health.Status
}

// Monitor periodically probes every devcontainer of a fleet.
type Monitor struct {
	interval time.Duration
	prober   *health.Prober
	host     string
	specs    []fleet.ContainerSpec
	policy   string
	onChange func(Change)
	last     map[string]health.Status
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithProber replaces the default prober.
func WithProber(p *health.Prober) Option {
	return func(m *Monitor) {
		m.prober = p
	}
}

// OnChange registers a callback for status transitions.
func OnChange(fn func(Change)) Option {
	return func(m *Monitor) {
		m.onChange = fn
	}
}

// New creates a new Monitor.
func New(interval time.Duration, host string, specs []fleet.ContainerSpec, policy string, opts ...Option) *Monitor {
	m := &Monitor{
		interval: interval,
		prober:   health.NewProber(health.DefaultTimeout),
		host:     host,
		specs:    specs,
		policy:   policy,
		last:     make(map[string]health.Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the monitoring loop. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug("starting fleet monitor", "interval", m.interval, "host", m.host)

	// Run an immediate check, then loop on interval.
	m.CheckOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("fleet monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}

// CheckOnce probes the fleet once and reports status transitions.
func (m *Monitor) CheckOnce(ctx context.Context) []health.Report {
	reports := m.prober.CheckFleet(ctx, m.host, m.specs, m.policy)
	for _, r := range reports {
		prev, seen := m.last[r.Container]
		if seen && prev == r.Status {
			continue
		}
		m.last[r.Container] = r.Status
		if m.onChange != nil {
			m.onChange(Change{Container: r.Container, Previous: prev, Current: r.Status})
		}
	}
	return reports
}
