package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/config"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

var (
	verbose      bool
	jsonOutput   bool
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "fleet-ctl",
	Short: "Devcontainer fleet provisioning CLI",
	Long: `fleet-ctl provisions a fleet of devcontainers on a single host.

It reads a list of devcontainer specs, resolves each container's secrets
from the parameter store and runs the launcher script once per container:
  - strictly in document order, one at a time
  - stopping at the first failure with the launcher's exit code
  - with configuration passed only through environment variables`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	logging.Setup(verbose, jsonOutput, os.Stderr)

	path, required := settingsPath, settingsPath != ""
	if !required {
		path = config.SettingsPathFromEnv()
		required = os.Getenv("FLEET_SETTINGS") != ""
	}

	settings, err := config.LoadSettings(path, required)
	if err != nil {
		return errors.ConfigError("failed to load settings", err)
	}
	logging.Debug("settings loaded", "path", path, "policy", settings.Policy, "backend", settings.Secrets.Backend)
	app.Default.Settings = settings
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context,
// which kills a running launcher.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default $FLEET_SETTINGS or "+config.DefaultSettingsPath+")")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
