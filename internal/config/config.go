package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSettingsPath = "/etc/fleet-ctl/config.toml"
	DefaultStateDir     = "/var/lib/fleet-ctl"
	DefaultPolicy       = "web-ui"
	DefaultBackend      = "ssm"
	DefaultAWSCLI       = "aws"
)

// Settings holds fleet-ctl defaults read from the settings file.
// Command-line flags take precedence over every field.
type Settings struct {
	Policy      string          `toml:"policy"`
	NamePrefix  string          `toml:"name_prefix"`
	PublicIP    string          `toml:"public_ip"`
	ScriptsDir  string          `toml:"scripts_dir"`
	Config      string          `toml:"config"`
	StateDir    string          `toml:"state_dir"`
	MetricsFile string          `toml:"metrics_file"`
	Secrets     SecretsSettings `toml:"secrets"`
}

// SecretsSettings selects and configures the parameter store backend.
type SecretsSettings struct {
	Backend string `toml:"backend"` // "ssm" or "aws-cli"
	Region  string `toml:"region"`
	Profile string `toml:"profile"`
	AWSCLI  string `toml:"aws_cli"` // aws binary for the aws-cli backend
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	return &Settings{
		Policy:   DefaultPolicy,
		StateDir: DefaultStateDir,
		Secrets: SecretsSettings{
			Backend: DefaultBackend,
			AWSCLI:  DefaultAWSCLI,
		},
	}
}

// Validate checks that the Settings are valid.
func (s *Settings) Validate() error {
	validPolicies := map[string]bool{"web-ui": true, "plain": true}
	if !validPolicies[s.Policy] {
		return fmt.Errorf("invalid policy: %s (must be web-ui or plain)", s.Policy)
	}

	validBackends := map[string]bool{"ssm": true, "aws-cli": true}
	if !validBackends[s.Secrets.Backend] {
		return fmt.Errorf("invalid secrets backend: %s (must be ssm or aws-cli)", s.Secrets.Backend)
	}

	if s.Secrets.Backend == "aws-cli" && s.Secrets.AWSCLI == "" {
		return fmt.Errorf("secrets.aws_cli is required for the aws-cli backend")
	}

	return nil
}

// LoadSettings reads a TOML settings file on top of DefaultSettings and
// applies FLEET_* environment overrides. A missing file is only an error
// when required is true, i.e. the path was given explicitly.
func LoadSettings(path string, required bool) (*Settings, error) {
	settings := DefaultSettings()

	md, err := toml.DecodeFile(path, settings)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown settings in %s: %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	applyEnvOverrides(settings)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// SettingsPathFromEnv returns FLEET_SETTINGS or the default settings path.
func SettingsPathFromEnv() string {
	if p := os.Getenv("FLEET_SETTINGS"); p != "" {
		return p
	}
	return DefaultSettingsPath
}
