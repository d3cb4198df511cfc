package provision

import (
	"time"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
)

// Observer receives orchestrator lifecycle events. Implementations must
// not fail the run; errors are theirs to log.
type Observer interface {
	RunStarted(policy string, total int)
	ContainerLaunched(id string, elapsed time.Duration)
	ContainerFailed(id string, err error)
	RunFinished(result *Result, err error)
}

// EnvironmentObserver is implemented by observers that also want each
// container's redacted environment.
type EnvironmentObserver interface {
	EnvironmentBuilt(id string, env environment.Environment)
}

type observers []Observer

func (o observers) runStarted(policy string, total int) {
	for _, obs := range o {
		obs.RunStarted(policy, total)
	}
}

func (o observers) containerLaunched(id string, elapsed time.Duration) {
	for _, obs := range o {
		obs.ContainerLaunched(id, elapsed)
	}
}

func (o observers) containerFailed(id string, err error) {
	for _, obs := range o {
		obs.ContainerFailed(id, err)
	}
}

func (o observers) runFinished(result *Result, err error) {
	for _, obs := range o {
		obs.RunFinished(result, err)
	}
}

func (o observers) environmentBuilt(id string, env environment.Environment) {
	for _, obs := range o {
		if eo, ok := obs.(EnvironmentObserver); ok {
			eo.EnvironmentBuilt(id, env.Redacted(environment.SecretVars...))
		}
	}
}
