// Package config provides the fleet-ctl settings file.
//
// # Settings File
//
// Settings are read from /etc/fleet-ctl/config.toml (or the path in
// FLEET_SETTINGS / --settings). Every field is optional:
//
//	policy       = "web-ui"          # or "plain"
//	name_prefix  = "dev"
//	public_ip    = "203.0.113.7"
//	scripts_dir  = "/opt/devcontainers/scripts"
//	config       = "/opt/devcontainers/devcontainers.json"
//	state_dir    = "/var/lib/fleet-ctl"
//	metrics_file = "/var/lib/node_exporter/fleet_ctl.prom"
//
//	[secrets]
//	backend = "ssm"                  # or "aws-cli"
//	region  = "eu-west-1"
//	profile = ""
//	aws_cli = "aws"
//
// # Precedence
//
// Defaults, then the file, then FLEET_* environment variables, then
// command-line flags. Unknown keys in the file are rejected.
package config
