// Package app holds the dependencies shared by fleet-ctl commands.
//
// Commands read Default instead of constructing their own filesystem,
// executor or parameter store, so tests can swap any of them:
//
//	app.SetDefault(app.New(
//		app.WithFS(system.NewMockFS()),
//		app.WithExecutor(system.NewMockExecutor()),
//		app.WithStore(secrets.NewMemoryStore(nil)),
//	))
//	defer app.ResetDefault()
//
// The root command replaces Default.Settings with the loaded settings file
// before any subcommand runs.
package app
