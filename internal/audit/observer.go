package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/provision"
)

// RunLogger records one provisioning run through a Logger. It implements
// provision.Observer and provision.EnvironmentObserver.
type RunLogger struct {
	logger *Logger
	runID  string
}

// NewRunLogger starts a run with a fresh run id.
func NewRunLogger(logger *Logger) *RunLogger {
	return &RunLogger{logger: logger, runID: NewRunID()}
}

// RunID returns the id every event of this run is tagged with.
func (r *RunLogger) RunID() string {
	return r.runID
}

func (r *RunLogger) log(eventType EventType, container, details string) {
	err := r.logger.Log(Event{
		Type:      eventType,
		RunID:     r.runID,
		Container: container,
		Details:   logging.Redact(details),
	})
	if err != nil {
		logging.Warn("failed to write audit event", "type", eventType, "error", err)
	}
}

// RunStarted implements provision.Observer.
func (r *RunLogger) RunStarted(policy string, total int) {
	r.log(EventRunStart, "", fmt.Sprintf("policy=%s containers=%d", policy, total))
}

// EnvironmentBuilt implements provision.EnvironmentObserver. Only variable
// names are recorded.
func (r *RunLogger) EnvironmentBuilt(id string, env environment.Environment) {
	r.log(EventEnvironment, id, strings.Join(env.Keys(), ","))
}

// ContainerLaunched implements provision.Observer.
func (r *RunLogger) ContainerLaunched(id string, elapsed time.Duration) {
	r.log(EventLaunch, id, "elapsed="+elapsed.Round(time.Millisecond).String())
}

// ContainerFailed implements provision.Observer.
func (r *RunLogger) ContainerFailed(id string, err error) {
	r.log(EventFailure, id, err.Error())
}

// RunFinished implements provision.Observer.
func (r *RunLogger) RunFinished(result *provision.Result, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	r.log(EventRunFinish, "", fmt.Sprintf("status=%s launched=%d duration=%s",
		status, len(result.Launched), result.Duration().Round(time.Millisecond)))
}

var (
	_ provision.Observer            = (*RunLogger)(nil)
	_ provision.EnvironmentObserver = (*RunLogger)(nil)
)
