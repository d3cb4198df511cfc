package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/audit"
	"github.com/firefly-engineering/fleet-ctl/internal/config"
	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/metrics"
	"github.com/firefly-engineering/fleet-ctl/internal/port"
	"github.com/firefly-engineering/fleet-ctl/internal/provision"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision every devcontainer in the configuration",
	Long: `Provision every devcontainer in the configuration, in order.

The web-ui policy requires --name-prefix, --public-ip, --scripts-dir and
--config and runs devcontainer_up_with_web_ui.sh. The plain policy requires
--scripts-dir and --config and runs devcontainer_up.sh. Each flag falls back
to the settings file.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runPolicy        string
	runNamePrefix    string
	runPublicIP      string
	runScriptsDir    string
	runConfig        string
	runDryRun        bool
	runSecretBackend string
	runAWSRegion     string
	runAWSProfile    string
	runMetricsFile   string
	runStateDir      string
)

func init() {
	runCmd.Flags().StringVar(&runPolicy, "policy", "", "Environment policy: web-ui or plain")
	runCmd.Flags().StringVar(&runNamePrefix, "name-prefix", "", "Parameter store prefix for devcontainer secrets")
	runCmd.Flags().StringVar(&runPublicIP, "public-ip", "", "Public IP address of this host")
	runCmd.Flags().StringVar(&runScriptsDir, "scripts-dir", "", "Directory containing the launcher scripts")
	configFlag(runCmd, &runConfig)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print each launcher environment instead of launching")
	runCmd.Flags().StringVar(&runSecretBackend, "secret-backend", "", "Parameter store backend: ssm or aws-cli")
	runCmd.Flags().StringVar(&runAWSRegion, "aws-region", "", "AWS region of the parameter store")
	runCmd.Flags().StringVar(&runAWSProfile, "aws-profile", "", "AWS shared config profile")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	runCmd.Flags().StringVar(&runStateDir, "state-dir", "", "Directory for the run audit log")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags layers explicitly set flags over the loaded settings.
func applyRunFlags(cmd *cobra.Command, s *config.Settings) {
	s.Policy = stringFlag(cmd, "policy", runPolicy, s.Policy)
	s.NamePrefix = stringFlag(cmd, "name-prefix", runNamePrefix, s.NamePrefix)
	s.PublicIP = stringFlag(cmd, "public-ip", runPublicIP, s.PublicIP)
	s.ScriptsDir = stringFlag(cmd, "scripts-dir", runScriptsDir, s.ScriptsDir)
	s.Config = stringFlag(cmd, "config", runConfig, s.Config)
	s.Secrets.Backend = stringFlag(cmd, "secret-backend", runSecretBackend, s.Secrets.Backend)
	s.Secrets.Region = stringFlag(cmd, "aws-region", runAWSRegion, s.Secrets.Region)
	s.Secrets.Profile = stringFlag(cmd, "aws-profile", runAWSProfile, s.Secrets.Profile)
	s.MetricsFile = stringFlag(cmd, "metrics-file", runMetricsFile, s.MetricsFile)
	s.StateDir = stringFlag(cmd, "state-dir", runStateDir, s.StateDir)
}

// requireRunSettings reports the first setting the selected policy needs
// but does not have.
func requireRunSettings(s *config.Settings) error {
	if err := s.Validate(); err != nil {
		return errors.UsageError(err.Error())
	}

	type setting struct {
		flag  string
		value string
	}
	var required []setting
	if s.Policy == environment.PolicyWebUI {
		required = append(required,
			setting{"--name-prefix", s.NamePrefix},
			setting{"--public-ip", s.PublicIP})
	}
	required = append(required,
		setting{"--scripts-dir", s.ScriptsDir},
		setting{"--config", s.Config})

	for _, r := range required {
		if r.value == "" {
			return errors.UsageError(fmt.Sprintf("%s is required for the %s policy", r.flag, s.Policy))
		}
	}
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := app.Default
	s := a.Settings
	applyRunFlags(cmd, s)
	if err := requireRunSettings(s); err != nil {
		return err
	}

	name, err := environment.LauncherName(s.Policy)
	if err != nil {
		return errors.UsageError(err.Error())
	}
	launcher, err := provision.LauncherPath(s.ScriptsDir, name)
	if err != nil {
		return err
	}
	if err := provision.Preflight(a.FS, launcher, s.Config); err != nil {
		return err
	}

	specs, err := loadSpecs(s.Config)
	if err != nil {
		return err
	}
	for _, c := range port.Conflicts(specs, s.Policy) {
		logWarning("%s", c)
	}

	policy, err := a.Policy(ctx)
	if err != nil {
		return errors.ConfigError("failed to set up the environment policy", err)
	}

	orch := &provision.Orchestrator{
		Launcher: launcher,
		Policy:   policy,
		Runner:   a.Executor,
		BaseEnv:  provision.BaseEnv(a.ProcessEnv(), s.ScriptsDir),
		DryRun:   runDryRun,
		Out:      cmd.OutOrStdout(),
	}

	var recorder *metrics.Recorder
	if !runDryRun {
		runLog := audit.NewRunLogger(a.AuditLogger())
		orch.Observers = append(orch.Observers, runLog)
		logging.Debug("recording run", "run_id", runLog.RunID(), "audit_log", a.AuditLogger().Path())
		if s.MetricsFile != "" {
			recorder = metrics.NewRecorder()
			orch.Observers = append(orch.Observers, recorder)
		}
	}

	if !runDryRun {
		logInfo("Provisioning %d devcontainers with the %s policy...", len(specs), policy.Name())
	}
	result, runErr := orch.Run(ctx, specs)

	if recorder != nil {
		if err := recorder.WriteFile(s.MetricsFile); err != nil {
			logWarning("%v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if !runDryRun {
		logSuccess("Provisioned %d devcontainers in %s", len(result.Launched), result.Duration().Round(time.Millisecond))
	}
	return nil
}
