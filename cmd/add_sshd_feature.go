package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/devcontainer"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
)

var addSSHDFeatureCmd = &cobra.Command{
	Use:   "add-sshd-feature",
	Short: "Add the SSH server feature to a workspace's devcontainer.json",
	Long: `Add ` + devcontainer.SSHFeatureID + ` to the features of
.devcontainer/devcontainer.json in a workspace. Comments in the file are
kept. Nothing changes when the feature is already present.`,
	Args: cobra.NoArgs,
	RunE: runAddSSHDFeature,
}

var (
	addSSHDWorkspace string
	addSSHDPath      string
)

func init() {
	addSSHDFeatureCmd.Flags().StringVar(&addSSHDWorkspace, "workspace", "", "Project root containing .devcontainer (required)")
	addSSHDFeatureCmd.Flags().StringVar(&addSSHDPath, "devcontainer-path", "", "devcontainer.json path relative to the workspace")
	if err := addSSHDFeatureCmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(addSSHDFeatureCmd)
}

func runAddSSHDFeature(cmd *cobra.Command, args []string) error {
	workspace, err := filepath.Abs(addSSHDWorkspace)
	if err != nil {
		return errors.UsageError("invalid workspace: " + err.Error())
	}

	path, changed, err := devcontainer.EnsureSSHFeature(app.Default.FS, workspace, addSSHDPath)
	if err != nil {
		return err
	}

	if changed {
		logSuccess("SSH feature added to %s", path)
	} else {
		logInfo("SSH feature already present in %s", path)
	}
	return nil
}
