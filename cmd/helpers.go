package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
)

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)

// stringFlag returns the flag's value when it was set on the command line,
// otherwise the settings value.
func stringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// loadSpecs reads the configuration document through the app filesystem.
func loadSpecs(path string) ([]fleet.ContainerSpec, error) {
	if path == "" {
		return nil, errors.UsageError("--config is required")
	}
	return fleet.Load(app.Default.FS, path)
}

// configFlag registers the --config flag shared by the read-only commands.
func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Devcontainers configuration document (JSON or YAML)")
}
