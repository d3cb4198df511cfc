package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display the audit trail of recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyRuns     int
	historyStateDir string
)

func init() {
	historyCmd.Flags().IntVarP(&historyRuns, "runs", "n", 5, "Number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyStateDir, "state-dir", "", "Directory holding the run audit log")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a := app.Default
	a.Settings.StateDir = stringFlag(cmd, "state-dir", historyStateDir, a.Settings.StateDir)

	events, err := a.AuditLogger().Recent(historyRuns)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No runs recorded in %s", a.Settings.StateDir)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if jsonOutput {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}
		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		subject := e.Container
		if subject == "" {
			subject = e.RunID
		}
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-11s %s (%s)\n", ts, e.Type, subject, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-11s %s\n", ts, e.Type, subject)
		}
	}

	return nil
}
