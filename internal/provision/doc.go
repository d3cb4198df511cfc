// Package provision launches the devcontainer fleet.
//
// An Orchestrator walks the container specs in document order. For each
// spec it asks its environment.Policy for the launcher variables, runs the
// launcher script with those variables layered over a fixed base
// environment, and waits for it to finish before moving on. The first
// failure stops the run; containers already launched are left in place.
//
// Observers receive lifecycle events for the audit log and run metrics.
package provision
