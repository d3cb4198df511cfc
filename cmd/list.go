package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the devcontainers in a configuration",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var listConfig string

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func init() {
	configFlag(listCmd, &listConfig)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	path := stringFlag(cmd, "config", listConfig, app.Default.Settings.Config)
	specs, err := loadSpecs(path)
	if err != nil {
		return err
	}

	if len(specs) == 0 {
		logInfo("No devcontainers in %s", path)
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SOURCE", "BRANCH", "PORT", "OPENVSCODE", "SSH").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range specs {
		t.Row(specRow(&specs[i])...)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return err
}

func specRow(s *fleet.ContainerSpec) []string {
	branch := s.Branch
	if branch == "" {
		branch = "-"
	}
	vscode, ssh := "off", "off"
	if s.OpenVSCodeEnabled() {
		vscode = strconv.Itoa(s.OpenVSCodePort())
	}
	if s.SSHEnabled() {
		ssh = strconv.Itoa(s.SSHPort())
	}
	return []string{
		s.ID,
		strings.TrimSuffix(s.Source, ".git"),
		branch,
		strconv.Itoa(s.PortOrDefault()),
		vscode,
		ssh,
	}
}
