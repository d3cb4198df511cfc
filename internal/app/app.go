// Package app provides the application context for fleet-ctl.
// It allows dependency injection for testing.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/firefly-engineering/fleet-ctl/internal/audit"
	"github.com/firefly-engineering/fleet-ctl/internal/config"
	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/logging"
	"github.com/firefly-engineering/fleet-ctl/internal/secrets"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// App holds the application dependencies
type App struct {
	// Settings holds defaults from the settings file and FLEET_* variables
	Settings *config.Settings

	// FS is used for every file check and read
	FS system.FileSystem

	// Executor runs launchers and the aws CLI
	Executor system.CommandExecutor

	// Store, when set, replaces the backend selected by Settings
	Store secrets.Store
}

// Option is a function that configures the App
type Option func(*App)

// WithSettings sets custom settings
func WithSettings(s *config.Settings) Option {
	return func(a *App) {
		a.Settings = s
	}
}

// WithFS sets a custom filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(e system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = e
	}
}

// WithStore sets a fixed parameter store
func WithStore(s secrets.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// New creates a new App with the given options.
func New(opts ...Option) *App {
	app := &App{
		Settings: config.DefaultSettings(),
		FS:       system.DefaultFS(),
		Executor: system.DefaultExecutor(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// SecretStore returns the parameter store for the configured backend.
func (a *App) SecretStore(ctx context.Context) (secrets.Store, error) {
	if a.Store != nil {
		return a.Store, nil
	}

	s := a.Settings.Secrets
	switch s.Backend {
	case "ssm":
		logging.Debug("using SSM parameter store", "region", s.Region, "profile", s.Profile)
		return secrets.NewSSMStore(ctx, secrets.SSMOptions{Region: s.Region, Profile: s.Profile})
	case "aws-cli":
		logging.Debug("using aws CLI parameter store", "binary", s.AWSCLI)
		store := secrets.NewCLIStore(a.Executor, s.AWSCLI)
		store.Region = s.Region
		store.Profile = s.Profile
		return store, nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", s.Backend)
	}
}

// Policy builds the environment policy named by Settings.Policy. Only the
// web-ui policy touches the parameter store.
func (a *App) Policy(ctx context.Context) (environment.Policy, error) {
	switch a.Settings.Policy {
	case environment.PolicyPlain:
		return environment.PlainPolicy{}, nil
	case environment.PolicyWebUI:
		store, err := a.SecretStore(ctx)
		if err != nil {
			return nil, err
		}
		return &environment.WebUIPolicy{
			PublicIP: a.Settings.PublicIP,
			Secrets:  secrets.NewResolver(store, a.Settings.NamePrefix),
		}, nil
	default:
		_, err := environment.ParsePolicyName(a.Settings.Policy)
		return nil, err
	}
}

// AuditLogger returns the run audit log under the state directory.
func (a *App) AuditLogger() *audit.Logger {
	return audit.NewLogger(a.Settings.StateDir)
}

// ProcessEnv returns the environment launchers inherit.
func (a *App) ProcessEnv() []string {
	return os.Environ()
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
