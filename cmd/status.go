package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/health"
	"github.com/firefly-engineering/fleet-ctl/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that each devcontainer's published ports accept connections",
	Long: `Connect to every port the fleet publishes on the public IP and report
each devcontainer as healthy, degraded or unreachable. Exits non-zero when
any devcontainer is not healthy.

With --watch the check repeats on the given interval and only status
changes are printed, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	statusConfig   string
	statusPolicy   string
	statusPublicIP string
	statusTimeout  time.Duration
	statusWatch    time.Duration
)

func init() {
	configFlag(statusCmd, &statusConfig)
	statusCmd.Flags().StringVar(&statusPolicy, "policy", "", "Environment policy deciding which ports are published")
	statusCmd.Flags().StringVar(&statusPublicIP, "public-ip", "", "Public IP address of the host")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", health.DefaultTimeout, "Connect timeout per port")
	statusCmd.Flags().DurationVar(&statusWatch, "watch", 0, "Repeat the check on this interval")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s := app.Default.Settings
	path := stringFlag(cmd, "config", statusConfig, s.Config)
	policy := stringFlag(cmd, "policy", statusPolicy, s.Policy)
	host := stringFlag(cmd, "public-ip", statusPublicIP, s.PublicIP)
	if _, err := environment.ParsePolicyName(policy); err != nil {
		return errors.UsageError(err.Error())
	}
	if host == "" {
		return errors.UsageError("--public-ip is required")
	}

	specs, err := loadSpecs(path)
	if err != nil {
		return err
	}

	prober := health.NewProber(statusTimeout)
	if statusWatch > 0 {
		return watchStatus(cmd, prober, host, specs, policy)
	}
	reports := prober.CheckFleet(cmd.Context(), host, specs, policy)

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			fmt.Fprintf(out, "%s: %s\n", r.Container, r.Status)
			for _, p := range r.Probes {
				fmt.Fprintf(out, "  %-18s %5d  %s\n", p.Binding.Service, p.Binding.Port, boolStatus(p.Reachable))
			}
		}
	}

	unhealthy := 0
	for _, r := range reports {
		if r.Status != health.StatusHealthy {
			unhealthy++
		}
	}
	if unhealthy > 0 {
		return errors.New(errors.KindGeneral, fmt.Sprintf("%d of %d devcontainers are not healthy", unhealthy, len(reports)))
	}
	return nil
}

func watchStatus(cmd *cobra.Command, prober *health.Prober, host string, specs []fleet.ContainerSpec, policy string) error {
	m := monitor.New(statusWatch, host, specs, policy,
		monitor.WithProber(prober),
		monitor.OnChange(func(c monitor.Change) {
			switch {
			case c.Current == health.StatusHealthy:
				logSuccess("%s is %s", c.Container, c.Current)
			case c.Previous == "":
				logWarning("%s is %s", c.Container, c.Current)
			default:
				logWarning("%s changed from %s to %s", c.Container, c.Previous, c.Current)
			}
		}))

	logInfo("Watching %d devcontainers every %s (Ctrl-C to stop)", len(specs), statusWatch)
	if err := m.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

func boolStatus(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
