package provision

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// Orchestrator launches one devcontainer per spec, sequentially.
type Orchestrator struct {
	// Launcher is the absolute path of the launcher script.
	Launcher string

	// Policy builds each container's variables.
	Policy environment.Policy

	// Runner starts the launcher. Defaults to system.DefaultExecutor().
	Runner system.CommandExecutor

	// BaseEnv is layered under every container's variables. It is never
	// modified.
	BaseEnv []string

	// DryRun builds every environment and writes it to Out instead of
	// launching.
	DryRun bool
	Out    io.Writer

	Observers []Observer
}

// Result summarizes a run.
type Result struct {
	Policy string

	// Launched lists the ids whose launcher exited zero, in order. In a dry
	// run it lists the ids whose environment was built.
	Launched []string

	// Failed is the id of the container that stopped the run, if any.
	Failed string

	Started  time.Time
	Finished time.Time
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Run provisions specs in order and stops at the first failure. The
// returned Result is never nil and describes what happened before the
// failure.
func (o *Orchestrator) Run(ctx context.Context, specs []fleet.ContainerSpec) (*Result, error) {
	obs := observers(o.Observers)
	result := &Result{Policy: o.Policy.Name(), Started: time.Now()}
	obs.runStarted(result.Policy, len(specs))

	err := o.run(ctx, specs, result, obs)

	result.Finished = time.Now()
	obs.runFinished(result, err)
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, specs []fleet.ContainerSpec, result *Result, obs observers) error {
	for i := range specs {
		spec := specs[i]
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.KindGeneral, "provisioning interrupted", err)
		}

		env, err := o.Policy.Build(ctx, spec)
		if err != nil {
			result.Failed = spec.ID
			logging.Error("failed to build launcher environment", "id", spec.ID, "error", err)
			obs.containerFailed(spec.ID, err)
			return err
		}
		obs.environmentBuilt(spec.ID, env)

		if o.DryRun {
			if err := o.print(spec.ID, env); err != nil {
				return errors.Wrap(errors.KindGeneral, "failed to write dry-run output", err)
			}
			result.Launched = append(result.Launched, spec.ID)
			continue
		}

		start := time.Now()
		if err := o.launch(ctx, spec.ID, env); err != nil {
			result.Failed = spec.ID
			obs.containerFailed(spec.ID, err)
			return err
		}
		elapsed := time.Since(start)
		result.Launched = append(result.Launched, spec.ID)
		obs.containerLaunched(spec.ID, elapsed)
	}
	return nil
}

func (o *Orchestrator) launch(ctx context.Context, id string, env environment.Environment) error {
	runner := o.Runner
	if runner == nil {
		runner = system.DefaultExecutor()
	}

	logging.Info("launching devcontainer", "id", id, "launcher", o.Launcher)
	out, err := runner.Run(ctx, system.Command{
		Path: o.Launcher,
		Env:  env.Merge(o.BaseEnv),
	})
	if err != nil {
		logging.Error("launcher could not run", "id", id, "error", err)
		return errors.Wrap(errors.KindLauncherExecutionFailed,
			fmt.Sprintf("failed to run launcher for %s", id), err).ForContainer(id)
	}

	if out.ExitCode != 0 {
		logging.Error("launcher failed", "id", id, "exit_code", out.ExitCode, "stderr", string(out.Stderr))
		return errors.LauncherFailed(id, out.ExitCode, string(out.Stderr))
	}

	logging.Info("devcontainer launched", "id", id, "stdout", string(out.Stdout))
	return nil
}

// print writes the redacted environment as sourceable shell assignments.
func (o *Orchestrator) print(id string, env environment.Environment) error {
	if o.Out == nil {
		return nil
	}
	redacted := env.Redacted(environment.SecretVars...)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", id)
	for _, k := range redacted.Keys() {
		fmt.Fprintf(&b, "%s=%s\n", k, shellquote.Join(redacted[k]))
	}
	_, err := io.WriteString(o.Out, b.String())
	return err
}
