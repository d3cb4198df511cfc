package provision

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/secrets"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

const launcher = "/opt/scripts/devcontainer_up.sh"

func plainSpecs(ids ...string) []fleet.ContainerSpec {
	specs := make([]fleet.ContainerSpec, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, fleet.ContainerSpec{ID: id, Source: "https://x/" + id})
	}
	return specs
}

func launchedIDs(t *testing.T, cmds []system.Command) []string {
	t.Helper()
	ids := make([]string, 0, len(cmds))
	for _, c := range cmds {
		id, ok := system.EnvValue(c.Env, environment.VarDevcontainerID)
		if !ok {
			t.Fatalf("command %s has no %s", c.Path, environment.VarDevcontainerID)
		}
		ids = append(ids, id)
	}
	return ids
}

// recorder captures observer events.
type recorder struct {
	events []string
	envs   map[string]environment.Environment
	result *Result
	err    error
}

func (r *recorder) RunStarted(policy string, total int) {
	r.events = append(r.events, "start")
}

func (r *recorder) ContainerLaunched(id string, _ time.Duration) {
	r.events = append(r.events, "launched:"+id)
}

func (r *recorder) ContainerFailed(id string, _ error) {
	r.events = append(r.events, "failed:"+id)
}

func (r *recorder) RunFinished(result *Result, err error) {
	r.events = append(r.events, "finish")
	r.result, r.err = result, err
}

func (r *recorder) EnvironmentBuilt(id string, env environment.Environment) {
	if r.envs == nil {
		r.envs = make(map[string]environment.Environment)
	}
	r.envs[id] = env
}

func TestOrchestrator_LaunchesInOrder(t *testing.T) {
	exec := system.NewMockExecutor()
	rec := &recorder{}
	o := &Orchestrator{
		Launcher:  launcher,
		Policy:    environment.PlainPolicy{},
		Runner:    exec,
		BaseEnv:   []string{"PATH=/usr/bin", "SCRIPTS=/opt/scripts"},
		Observers: []Observer{rec},
	}

	result, err := o.Run(context.Background(), plainSpecs("c1", "c2", "c3"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"c1", "c2", "c3"}
	if got := launchedIDs(t, exec.Commands); !reflect.DeepEqual(got, want) {
		t.Errorf("launch order = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(result.Launched, want) {
		t.Errorf("Launched = %v, want %v", result.Launched, want)
	}
	if result.Failed != "" {
		t.Errorf("Failed = %q, want empty", result.Failed)
	}
	for _, c := range exec.Commands {
		if c.Path != launcher {
			t.Errorf("Path = %q, want %q", c.Path, launcher)
		}
		if len(c.Args) != 0 {
			t.Errorf("Args = %v, want none", c.Args)
		}
	}

	wantEvents := []string{"start", "launched:c1", "launched:c2", "launched:c3", "finish"}
	if !reflect.DeepEqual(rec.events, wantEvents) {
		t.Errorf("events = %v, want %v", rec.events, wantEvents)
	}
	if rec.result != result || rec.err != nil {
		t.Error("RunFinished should receive the run's result and nil error")
	}
}

func TestOrchestrator_StopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name     string
		failAt   int
		exitCode int
		wantCode int
	}{
		{"first", 1, 3, 3},
		{"middle", 2, 42, 42},
		{"last", 4, 1, 1},
		{"out of range", 2, 300, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := system.NewMockExecutor()
			calls := 0
			exec.RunFunc = func(cmd system.Command) system.MockResponse {
				calls++
				if calls == tt.failAt {
					return system.MockResponse{ExitCode: tt.exitCode, Stderr: []byte("clone failed\n")}
				}
				return system.MockResponse{Stdout: []byte("ok\n")}
			}
			o := &Orchestrator{Launcher: launcher, Policy: environment.PlainPolicy{}, Runner: exec}
			specs := plainSpecs("c1", "c2", "c3", "c4")

			result, err := o.Run(context.Background(), specs)
			if !errors.IsKind(err, errors.KindLauncherExecutionFailed) {
				t.Fatalf("Run() error = %v, want kind %q", err, errors.KindLauncherExecutionFailed)
			}
			if got := errors.GetExitCode(err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
			if got := exec.CallCount(launcher); got != tt.failAt {
				t.Errorf("launcher ran %d times, want %d", got, tt.failAt)
			}
			wantFailed := specs[tt.failAt-1].ID
			if result.Failed != wantFailed {
				t.Errorf("Failed = %q, want %q", result.Failed, wantFailed)
			}
			if errors.ContainerOf(err) != wantFailed {
				t.Errorf("ContainerOf() = %q, want %q", errors.ContainerOf(err), wantFailed)
			}
			if len(result.Launched) != tt.failAt-1 {
				t.Errorf("Launched = %v, want %d ids", result.Launched, tt.failAt-1)
			}
			if !strings.Contains(err.Error(), "clone failed") {
				t.Errorf("error = %q, want captured stderr", err.Error())
			}
		})
	}
}

func TestOrchestrator_RunnerError(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.DefaultResponse = system.MockResponse{Err: os.ErrPermission}
	o := &Orchestrator{Launcher: launcher, Policy: environment.PlainPolicy{}, Runner: exec}

	_, err := o.Run(context.Background(), plainSpecs("c1", "c2"))
	if !errors.IsKind(err, errors.KindLauncherExecutionFailed) {
		t.Fatalf("Run() error = %v, want kind %q", err, errors.KindLauncherExecutionFailed)
	}
	if errors.GetExitCode(err) != errors.ExitGeneralError {
		t.Errorf("GetExitCode() = %d, want %d", errors.GetExitCode(err), errors.ExitGeneralError)
	}
	if exec.CallCount(launcher) != 1 {
		t.Errorf("launcher ran %d times, want 1", exec.CallCount(launcher))
	}
}

func TestOrchestrator_ExampleConfig(t *testing.T) {
	specs, err := fleet.Parse([]byte(`[{"id":"c1","source":"https://x/repo","port":9000}]`), "devcontainers.json")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	exec := system.NewMockExecutor()
	o := &Orchestrator{Launcher: launcher, Policy: environment.PlainPolicy{}, Runner: exec}

	if _, err := o.Run(context.Background(), specs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.Commands) != 1 {
		t.Fatalf("launcher ran %d times, want 1", len(exec.Commands))
	}
	env := exec.Commands[0].Env
	want := []string{"DEVCONTAINER_ID=c1", "PORT=9000", "REPO_URL=https://x/repo"}
	if !reflect.DeepEqual(env, want) {
		t.Errorf("Env = %v, want %v", env, want)
	}
	if _, ok := system.EnvValue(env, environment.VarBranch); ok {
		t.Error("BRANCH should be absent")
	}
}

func webUIOrchestrator(values map[string]string, exec system.CommandExecutor) (*Orchestrator, *secrets.MemoryStore) {
	store := secrets.NewMemoryStore(values)
	return &Orchestrator{
		Launcher: "/opt/scripts/devcontainer_up_with_web_ui.sh",
		Policy: &environment.WebUIPolicy{
			PublicIP: "203.0.113.7",
			Secrets:  secrets.NewResolver(store, "dev"),
		},
		Runner: exec,
	}, store
}

func TestOrchestrator_SSHKeyAndPort(t *testing.T) {
	defer logging.ResetSecrets()
	exec := system.NewMockExecutor()
	o, _ := webUIOrchestrator(map[string]string{
		"/dev/devcontainers/web/openvscode-token": "tok",
		"/dev/devcontainers/web/ssh-public-key":   "ssh-ed25519 AAAA web",
	}, exec)
	specs := []fleet.ContainerSpec{{
		ID:           "web",
		Source:       "https://x/web",
		RemoteAccess: &fleet.RemoteAccessConfig{SSH: &fleet.ServiceConfig{Port: fleet.IntPtr(2200)}},
	}}

	if _, err := o.Run(context.Background(), specs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	env := exec.Commands[0].Env
	if got, _ := system.EnvValue(env, environment.VarSSHPort); got != "2200" {
		t.Errorf("SSH_PORT = %q, want %q", got, "2200")
	}
	if got, _ := system.EnvValue(env, environment.VarSSHPublicKey); got != "ssh-ed25519 AAAA web" {
		t.Errorf("SSH_PUBLIC_KEY = %q, want %q", got, "ssh-ed25519 AAAA web")
	}
}

func TestOrchestrator_NoSSHKeyAbortsBeforeLaunch(t *testing.T) {
	defer logging.ResetSecrets()
	exec := system.NewMockExecutor()
	o, _ := webUIOrchestrator(map[string]string{
		"/dev/devcontainers/a/openvscode-token": "tok-a",
		"/dev/devcontainers/b/openvscode-token": "tok-b",
	}, exec)
	specs := []fleet.ContainerSpec{
		{ID: "a", Source: "https://x/a"},
		{ID: "b", Source: "https://x/b", RemoteAccess: &fleet.RemoteAccessConfig{SSH: &fleet.ServiceConfig{}}},
		{ID: "c", Source: "https://x/c"},
	}

	result, err := o.Run(context.Background(), specs)
	if !errors.IsKind(err, errors.KindNoSSHKeyAvailable) {
		t.Fatalf("Run() error = %v, want kind %q", err, errors.KindNoSSHKeyAvailable)
	}
	if got := launchedIDs(t, exec.Commands); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("launched = %v, want [a]", got)
	}
	if result.Failed != "b" {
		t.Errorf("Failed = %q, want %q", result.Failed, "b")
	}
	if errors.GetExitCode(err) != errors.ExitGeneralError {
		t.Errorf("GetExitCode() = %d, want 1", errors.GetExitCode(err))
	}
}

func TestOrchestrator_IsolatedEnvironments(t *testing.T) {
	exec := system.NewMockExecutor()
	base := []string{"HOME=/root", "SCRIPTS=/opt/scripts"}
	o := &Orchestrator{Launcher: launcher, Policy: environment.PlainPolicy{}, Runner: exec, BaseEnv: base}
	specs := []fleet.ContainerSpec{
		{ID: "a", Source: "https://x/a", Branch: "feature", DevcontainerPath: ".devcontainer/a.json"},
		{ID: "b", Source: "https://x/b"},
	}

	if _, err := o.Run(context.Background(), specs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second := exec.Commands[1].Env
	for _, k := range []string{environment.VarBranch, environment.VarDevcontainerPath} {
		if v, ok := system.EnvValue(second, k); ok {
			t.Errorf("second launch inherited %s=%q from the first", k, v)
		}
	}
	for _, env := range [][]string{exec.Commands[0].Env, second} {
		if v, _ := system.EnvValue(env, environment.VarScripts); v != "/opt/scripts" {
			t.Errorf("SCRIPTS = %q, want %q", v, "/opt/scripts")
		}
		if v, _ := system.EnvValue(env, "HOME"); v != "/root" {
			t.Errorf("HOME = %q, want %q", v, "/root")
		}
	}
	if !reflect.DeepEqual(o.BaseEnv, []string{"HOME=/root", "SCRIPTS=/opt/scripts"}) {
		t.Errorf("BaseEnv modified: %v", o.BaseEnv)
	}
}

func TestOrchestrator_DryRun(t *testing.T) {
	defer logging.ResetSecrets()
	exec := system.NewMockExecutor()
	o, _ := webUIOrchestrator(map[string]string{
		"/dev/devcontainers/web/openvscode-token": "s3cret",
	}, exec)
	var out bytes.Buffer
	o.DryRun = true
	o.Out = &out

	result, err := o.Run(context.Background(), []fleet.ContainerSpec{{ID: "web", Source: "https://x/web repo"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.Commands) != 0 {
		t.Errorf("dry run launched %d commands", len(exec.Commands))
	}
	if !reflect.DeepEqual(result.Launched, []string{"web"}) {
		t.Errorf("Launched = %v, want [web]", result.Launched)
	}

	got := out.String()
	if strings.Contains(got, "s3cret") {
		t.Errorf("dry-run output leaks the token:\n%s", got)
	}
	for _, want := range []string{
		"# web\n",
		"DEVCONTAINER_ID=web\n",
		"REPO_URL='https://x/web repo'\n",
		"OPENVSCODE_SERVER_ENABLED=false\n",
		"OPENVSCODE_TOKEN=" + shellquote.Join(logging.Placeholder) + "\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestOrchestrator_EnvironmentObserverIsRedacted(t *testing.T) {
	defer logging.ResetSecrets()
	rec := &recorder{}
	o, _ := webUIOrchestrator(map[string]string{
		"/dev/devcontainers/web/openvscode-token": "s3cret",
	}, system.NewMockExecutor())
	o.Observers = []Observer{rec}

	if _, err := o.Run(context.Background(), []fleet.ContainerSpec{{ID: "web", Source: "s"}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := rec.envs["web"][environment.VarOpenVSCodeToken]; got != logging.Placeholder {
		t.Errorf("observed token = %q, want %q", got, logging.Placeholder)
	}
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	exec := system.NewMockExecutor()
	o := &Orchestrator{Launcher: launcher, Policy: environment.PlainPolicy{}, Runner: exec}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Run(ctx, plainSpecs("c1")); err == nil {
		t.Fatal("Run() should fail on a cancelled context")
	}
	if len(exec.Commands) != 0 {
		t.Errorf("launcher ran %d times, want 0", len(exec.Commands))
	}
}

func writeLauncher(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "devcontainer_up.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("Failed to write launcher: %v", err)
	}
	return path
}

func TestOrchestrator_RealLauncher(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "launches.log")
	path := writeLauncher(t, dir, `echo "$DEVCONTAINER_ID ${BRANCH:-none} $PORT $SCRIPTS" >> `+logFile+`
if [ "$DEVCONTAINER_ID" = "bad" ]; then
  echo "cannot clone $REPO_URL" >&2
  exit 5
fi
`)
	t.Setenv("BRANCH", "from-parent")

	o := &Orchestrator{
		Launcher: path,
		Policy:   environment.PlainPolicy{},
		Runner:   system.DefaultExecutor(),
		BaseEnv:  BaseEnv(nil, dir),
	}
	specs := []fleet.ContainerSpec{
		{ID: "one", Source: "https://x/one", Branch: "main", Port: fleet.IntPtr(9001)},
		{ID: "two", Source: "https://x/two"},
		{ID: "bad", Source: "https://x/bad"},
		{ID: "never", Source: "https://x/never"},
	}

	_, err := o.Run(context.Background(), specs)
	if got := errors.GetExitCode(err); got != 5 {
		t.Fatalf("GetExitCode() = %d, want 5 (err = %v)", got, err)
	}
	if !strings.Contains(err.Error(), "cannot clone https://x/bad") {
		t.Errorf("error = %q, want captured stderr", err.Error())
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read launch log: %v", err)
	}
	want := "one main 9001 " + dir + "\n" +
		"two none 8000 " + dir + "\n" +
		"bad none 8000 " + dir + "\n"
	if string(data) != want {
		t.Errorf("launch log = %q, want %q", string(data), want)
	}
}
