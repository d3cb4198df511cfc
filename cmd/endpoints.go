package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/secrets"
	"github.com/firefly-engineering/fleet-ctl/internal/ssh"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "Show how to reach each devcontainer",
	Long: `Show the OpenVSCode URL and ssh command of each devcontainer with
remote access enabled. With --with-token the OpenVSCode token is read from
the parameter store and included in the URL.`,
	Args: cobra.NoArgs,
	RunE: runEndpoints,
}

var (
	endpointsConfig     string
	endpointsPublicIP   string
	endpointsUser       string
	endpointsIdentity   string
	endpointsWithToken  bool
	endpointsNamePrefix string
)

func init() {
	configFlag(endpointsCmd, &endpointsConfig)
	endpointsCmd.Flags().StringVar(&endpointsPublicIP, "public-ip", "", "Public IP address of the host")
	endpointsCmd.Flags().StringVar(&endpointsUser, "user", ssh.DefaultUser, "SSH login user")
	endpointsCmd.Flags().StringVarP(&endpointsIdentity, "identity", "i", "", "SSH private key to put in the command")
	endpointsCmd.Flags().BoolVar(&endpointsWithToken, "with-token", false, "Include the OpenVSCode token in URLs")
	endpointsCmd.Flags().StringVar(&endpointsNamePrefix, "name-prefix", "", "Parameter store prefix for --with-token")
	rootCmd.AddCommand(endpointsCmd)
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := app.Default
	path := stringFlag(cmd, "config", endpointsConfig, a.Settings.Config)
	host := stringFlag(cmd, "public-ip", endpointsPublicIP, a.Settings.PublicIP)
	prefix := stringFlag(cmd, "name-prefix", endpointsNamePrefix, a.Settings.NamePrefix)
	if host == "" {
		return errors.UsageError("--public-ip is required")
	}

	specs, err := loadSpecs(path)
	if err != nil {
		return err
	}

	var resolver *secrets.Resolver
	if endpointsWithToken {
		store, err := a.SecretStore(ctx)
		if err != nil {
			return errors.ConfigError("failed to set up the parameter store", err)
		}
		resolver = secrets.NewResolver(store, prefix)
	}

	base := ssh.DefaultOptions(host, 0).WithUser(endpointsUser).WithIdentity(endpointsIdentity)
	var endpoints []ssh.Endpoint
	for _, spec := range specs {
		if !spec.OpenVSCodeEnabled() && !spec.SSHEnabled() {
			continue
		}
		token := ""
		if resolver != nil && spec.OpenVSCodeEnabled() {
			token, err = resolver.Required(ctx, spec.ID, secrets.KindOpenVSCodeToken)
			if err != nil {
				return err
			}
		}
		endpoints = append(endpoints, ssh.EndpointFor(spec, host, base, token))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if endpoints == nil {
			endpoints = []ssh.Endpoint{}
		}
		return enc.Encode(endpoints)
	}

	if len(endpoints) == 0 {
		logInfo("No devcontainers with remote access in %s", path)
		return nil
	}
	for _, ep := range endpoints {
		fmt.Fprintf(out, "%s\n", ep.Container)
		if ep.OpenVSCodeURL != "" {
			fmt.Fprintf(out, "  OpenVSCode: %s\n", ep.OpenVSCodeURL)
		}
		if ep.SSHCommand != "" {
			fmt.Fprintf(out, "  SSH:        %s\n", ep.SSHCommand)
		}
	}
	return nil
}
