// Package testutil provides test utilities for command-level tests
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/fleet-ctl/internal/app"
	"github.com/firefly-engineering/fleet-ctl/internal/config"
	"github.com/firefly-engineering/fleet-ctl/internal/secrets"
)

// TestEnv holds the test environment
type TestEnv struct {
	T            *testing.T
	TmpDir       string
	ScriptsDir   string
	StateDir     string
	SettingsPath string
	Store        *secrets.MemoryStore
	App          *app.App
	cleanup      func()
}

// NewTestEnv creates a test environment with an in-memory parameter store
// and real filesystem and process execution rooted in a temp dir. The
// settings file is exported through FLEET_SETTINGS.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &TestEnv{
		T:            t,
		TmpDir:       tmpDir,
		ScriptsDir:   filepath.Join(tmpDir, "scripts"),
		StateDir:     filepath.Join(tmpDir, "state"),
		SettingsPath: filepath.Join(tmpDir, "config.toml"),
		Store:        secrets.NewMemoryStore(nil),
	}

	for _, dir := range []string{env.ScriptsDir, env.StateDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	settings := config.DefaultSettings()
	settings.StateDir = env.StateDir
	settings.ScriptsDir = env.ScriptsDir
	env.WriteSettings(settings)

	// Keep the host's FLEET_* variables out of the test.
	for _, name := range []string{
		"FLEET_POLICY", "FLEET_NAME_PREFIX", "FLEET_PUBLIC_IP", "FLEET_SCRIPTS_DIR",
		"FLEET_CONFIG", "FLEET_STATE_DIR", "FLEET_METRICS_FILE", "FLEET_SECRET_BACKEND",
		"FLEET_AWS_REGION", "FLEET_AWS_PROFILE",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("FLEET_SETTINGS", env.SettingsPath)

	env.App = app.New(app.WithStore(env.Store))

	originalDefault := app.Default
	app.SetDefault(env.App)
	env.cleanup = func() {
		app.SetDefault(originalDefault)
	}

	return env
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// WriteSettings replaces the settings file.
func (e *TestEnv) WriteSettings(settings *config.Settings) {
	e.T.Helper()

	f, err := os.Create(e.SettingsPath)
	if err != nil {
		e.T.Fatalf("Failed to create settings: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(settings); err != nil {
		e.T.Fatalf("Failed to write settings: %v", err)
	}
}

// WriteConfig writes a configuration document and returns its path.
func (e *TestEnv) WriteConfig(name, content string) string {
	e.T.Helper()

	path := filepath.Join(e.TmpDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// CopyFixture writes an embedded fixture into the temp dir and returns its
// path.
func (e *TestEnv) CopyFixture(name string) string {
	e.T.Helper()

	data, err := LoadFixture(name)
	if err != nil {
		e.T.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return e.WriteConfig(name, string(data))
}

// WriteLauncher writes an executable /bin/sh launcher script into the
// scripts dir.
func (e *TestEnv) WriteLauncher(name, body string) string {
	e.T.Helper()

	path := filepath.Join(e.ScriptsDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		e.T.Fatalf("Failed to write launcher: %v", err)
	}
	return path
}

// RecordingLauncher writes a launcher that appends each invocation's
// DEVCONTAINER_ID and the named variables to a log, then exits with the
// code found in the variable FAIL_<id> if set. It returns the log path.
func (e *TestEnv) RecordingLauncher(name string, vars ...string) string {
	e.T.Helper()

	logPath := filepath.Join(e.TmpDir, name+".log")
	line := `"$DEVCONTAINER_ID`
	for _, v := range vars {
		line += ` ` + v + `=${` + v + `-<unset>}`
	}
	line += `"`
	body := `echo ` + line + ` >> '` + logPath + `'
echo "launched $DEVCONTAINER_ID"
eval "code=\${FAIL_$DEVCONTAINER_ID:-0}"
if [ "$code" != 0 ]; then
  echo "launcher failed for $DEVCONTAINER_ID" >&2
  exit "$code"
fi
`
	e.WriteLauncher(name, body)
	return logPath
}

// ReadLog returns the lines a RecordingLauncher wrote.
func (e *TestEnv) ReadLog(path string) []string {
	e.T.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		e.T.Fatalf("Failed to read log: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
