// Package health probes the host ports a provisioned fleet publishes.
//
// Each port binding from package port is checked with a TCP connect to
// the public IP. A container's Status summarizes its bindings:
//
//	StatusHealthy     - every published port accepts connections
//	StatusDegraded    - some ports accept connections
//	StatusUnreachable - no port accepts connections
//
// Probes run sequentially in configuration order, like launches do:
//
//	prober := health.NewProber(2 * time.Second)
//	reports := prober.CheckFleet(ctx, host, specs, policy)
package health
