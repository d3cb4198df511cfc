package config

import "os"

// envOverrides maps environment variables to settings field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Settings, string)
}{
	{"FLEET_POLICY", func(s *Settings, v string) { s.Policy = v }},
	{"FLEET_NAME_PREFIX", func(s *Settings, v string) { s.NamePrefix = v }},
	{"FLEET_PUBLIC_IP", func(s *Settings, v string) { s.PublicIP = v }},
	{"FLEET_SCRIPTS_DIR", func(s *Settings, v string) { s.ScriptsDir = v }},
	{"FLEET_CONFIG", func(s *Settings, v string) { s.Config = v }},
	{"FLEET_STATE_DIR", func(s *Settings, v string) { s.StateDir = v }},
	{"FLEET_METRICS_FILE", func(s *Settings, v string) { s.MetricsFile = v }},
	{"FLEET_SECRET_BACKEND", func(s *Settings, v string) { s.Secrets.Backend = v }},
	{"FLEET_AWS_REGION", func(s *Settings, v string) { s.Secrets.Region = v }},
	{"FLEET_AWS_PROFILE", func(s *Settings, v string) { s.Secrets.Profile = v }},
}

// applyEnvOverrides modifies settings in place with environment variable values.
func applyEnvOverrides(s *Settings) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(s, val)
		}
	}
}
