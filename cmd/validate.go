package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/port"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a devcontainers configuration without launching anything",
	Long: `Check a devcontainers configuration without launching anything.

Every entry must have a valid id and a source, and ports must be in range.
Host ports published by more than one devcontainer under the selected
policy are reported as conflicts.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateConfig string
	validatePolicy string
)

func init() {
	configFlag(validateCmd, &validateConfig)
	validateCmd.Flags().StringVar(&validatePolicy, "policy", "", "Environment policy used for port checks: web-ui or plain")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s := app.Default.Settings
	path := stringFlag(cmd, "config", validateConfig, s.Config)
	policy := stringFlag(cmd, "policy", validatePolicy, s.Policy)
	if _, err := environment.ParsePolicyName(policy); err != nil {
		return errors.UsageError(err.Error())
	}

	specs, err := loadSpecs(path)
	if err != nil {
		return err
	}

	var problems []string
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			label := specs[i].ID
			if label == "" {
				label = "(no id)"
			}
			problems = append(problems, fmt.Sprintf("entry %d %s: %v", i, label, err))
		}
	}
	for _, c := range port.Conflicts(specs, policy) {
		problems = append(problems, c.String())
	}

	if len(problems) > 0 {
		for _, p := range problems {
			logWarning("%s", p)
		}
		return errors.ShapeError(fmt.Sprintf("%s: %d problem(s) found", path, len(problems)))
	}

	logSuccess("%s: %d devcontainers OK", path, len(specs))
	return nil
}
