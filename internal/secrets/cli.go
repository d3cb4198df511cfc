package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// CLIStore reads parameters by running the aws CLI. It mirrors
//
//	aws ssm get-parameter --name N --with-decryption \
//	    --query Parameter.Value --output text
//
// and is useful on hosts where the CLI carries credentials the SDK's
// default chain does not find.
type CLIStore struct {
	Runner  system.CommandExecutor
	Binary  string
	Region  string
	Profile string
	Env     []string
}

// NewCLIStore creates a CLIStore using binary (usually "aws").
func NewCLIStore(runner system.CommandExecutor, binary string) *CLIStore {
	return &CLIStore{
		Runner: runner,
		Binary: binary,
		Env:    os.Environ(),
	}
}

func (c *CLIStore) args(name string) []string {
	args := []string{
		"ssm", "get-parameter",
		"--name", name,
		"--with-decryption",
		"--query", "Parameter.Value",
		"--output", "text",
	}
	if c.Region != "" {
		args = append(args, "--region", c.Region)
	}
	if c.Profile != "" {
		args = append(args, "--profile", c.Profile)
	}
	return args
}

// GetParameter implements Store.
func (c *CLIStore) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := c.Runner.Run(ctx, system.Command{
		Path: c.Binary,
		Args: c.args(name),
		Env:  c.Env,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", c.Binary, err)
	}

	stderr := strings.TrimSpace(string(out.Stderr))
	if out.ExitCode != 0 {
		if strings.Contains(stderr, "ParameterNotFound") {
			return "", notFound(name, stderr)
		}
		return "", fmt.Errorf("%s ssm get-parameter %s exited with code %d: %s", c.Binary, name, out.ExitCode, stderr)
	}

	return strings.TrimSpace(string(out.Stdout)), nil
}
