// Package testutil provides test fixtures and utilities.
//
// This package contains embedded configuration fixtures and a TestEnv that
// points fleet-ctl at a temp dir: settings file, scripts dir, state dir and
// an in-memory parameter store.
//
// # Fixtures
//
//	fixtures/devcontainers.json   three containers, JSON with comments
//	fixtures/devcontainers.yaml   the same fleet in YAML
//	fixtures/duplicate_ids.json   rejected by the loader
//	fixtures/not_a_list.json      rejected by the loader
//	fixtures/missing_source.json  loads, fails validation
//	fixtures/port_conflict.json   two containers on default ports
//	fixtures/settings.toml        aws-cli backend settings
//
// # Usage in Tests
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
//	log := env.RecordingLauncher("devcontainer_up.sh", "PORT")
//	cfg := env.CopyFixture("devcontainers.json")
package testutil
