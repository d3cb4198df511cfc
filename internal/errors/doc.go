// Package errors provides typed errors with exit codes for fleet-ctl.
//
// # Error Types
//
// FleetError is the base error type that wraps an error with a kind and an
// exit code:
//
//	type FleetError struct {
//	    Kind        Kind   // Failure category
//	    Code        int    // Exit code
//	    Message     string // User-facing message
//	    ContainerID string // Devcontainer the failure belongs to, if any
//	    Cause       error  // Wrapped error
//	}
//
// # Exit Codes
//
// Every configuration or precondition failure exits with ExitGeneralError.
// A launcher that exits non-zero propagates its own exit code:
//
//	errors.LauncherFailed("web", 3, stderr).ExitCode() == 3
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.ConfigNotFound("/etc/fleet-ctl/devcontainers.json")
//	errors.ShapeError("the devcontainers configuration is not a list")
//	errors.MissingField("web", "source")
//	errors.SecretLookupFailed("web", "/dev/devcontainers/web/openvscode-token", err)
//	errors.NoSSHKeyAvailable("web")
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
