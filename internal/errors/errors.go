package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for fleet-ctl
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
)

// Kind classifies a fleet-ctl failure.
type Kind string

const (
	KindGeneral                 Kind = "general"
	KindUsage                   Kind = "usage"
	KindConfigNotFound          Kind = "config-not-found"
	KindParseError              Kind = "parse-error"
	KindShapeError              Kind = "shape-error"
	KindMissingField            Kind = "missing-field"
	KindSecretLookupFailed      Kind = "secret-lookup-failed"
	KindNoSSHKeyAvailable       Kind = "no-ssh-key-available"
	KindLauncherNotFound        Kind = "launcher-not-found"
	KindLauncherExecutionFailed Kind = "launcher-execution-failed"
)

// FleetError is the base error type for fleet-ctl
type FleetError struct {
	Kind        Kind
	Code        int
	Message     string
	ContainerID string
	Cause       error
}

func (e *FleetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FleetError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *FleetError) ExitCode() int {
	return e.Code
}

// New creates a new FleetError
func New(kind Kind, message string) *FleetError {
	return &FleetError{
		Kind:    kind,
		Code:    ExitGeneralError,
		Message: message,
	}
}

// Wrap wraps an existing error with a FleetError
func Wrap(kind Kind, message string, cause error) *FleetError {
	return &FleetError{
		Kind:    kind,
		Code:    ExitGeneralError,
		Message: message,
		Cause:   cause,
	}
}

// ForContainer tags the error with the devcontainer it belongs to.
func (e *FleetError) ForContainer(id string) *FleetError {
	e.ContainerID = id
	return e
}

// Common error constructors

// ConfigNotFound returns an error for a missing devcontainers configuration file
func ConfigNotFound(path string) *FleetError {
	return New(KindConfigNotFound, fmt.Sprintf("devcontainers configuration file not found at %s", path))
}

// ParseError returns an error for a configuration document that is not valid syntax
func ParseError(path string, cause error) *FleetError {
	return Wrap(KindParseError, fmt.Sprintf("failed to parse %s", path), cause)
}

// ShapeError returns an error for a configuration document with the wrong structure
func ShapeError(message string) *FleetError {
	return New(KindShapeError, message)
}

// MissingField returns an error for a devcontainer entry lacking a required field
func MissingField(id, field string) *FleetError {
	if id == "" {
		return New(KindMissingField, fmt.Sprintf("devcontainer is missing required field %q", field))
	}
	return New(KindMissingField, fmt.Sprintf("devcontainer %s is missing required field %q", id, field)).ForContainer(id)
}

// SecretLookupFailed returns an error for a required secret that could not be read
func SecretLookupFailed(id, name string, cause error) *FleetError {
	return Wrap(KindSecretLookupFailed,
		fmt.Sprintf("failed to retrieve %s for devcontainer %s from the parameter store", name, id), cause).ForContainer(id)
}

// NoSSHKeyAvailable returns an error for an SSH-enabled devcontainer without a public key
func NoSSHKeyAvailable(id string) *FleetError {
	return New(KindNoSSHKeyAvailable, fmt.Sprintf("no SSH key available for %s", id)).ForContainer(id)
}

// LauncherNotFound returns an error for a missing launcher script
func LauncherNotFound(path string, cause error) *FleetError {
	return Wrap(KindLauncherNotFound, fmt.Sprintf("devcontainer script not found at %s", path), cause)
}

// LauncherFailed returns an error for a launcher that exited non-zero.
// The launcher's exit code becomes the error's exit code; codes that cannot
// be propagated (signals report -1) fall back to ExitGeneralError.
func LauncherFailed(id string, exitCode int, stderr string) *FleetError {
	code := exitCode
	if code <= 0 || code > 255 {
		code = ExitGeneralError
	}
	msg := fmt.Sprintf("launcher failed for %s with error code %d", id, exitCode)
	e := &FleetError{
		Kind:        KindLauncherExecutionFailed,
		Code:        code,
		Message:     msg,
		ContainerID: id,
	}
	if s := strings.TrimSpace(stderr); s != "" {
		e.Cause = errors.New(s)
	}
	return e
}

// UsageError returns an error for invalid command-line input
func UsageError(message string) *FleetError {
	return New(KindUsage, message)
}

// ConfigError returns an error for settings file issues
func ConfigError(message string, cause error) *FleetError {
	return Wrap(KindGeneral, message, cause)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.ExitCode()
	}
	return ExitGeneralError
}

// KindOf returns the Kind of the first FleetError in err's chain.
func KindOf(err error) Kind {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.Kind
	}
	return KindGeneral
}

// IsKind reports whether err carries a FleetError of the given kind.
func IsKind(err error, kind Kind) bool {
	var fleetErr *FleetError
	return errors.As(err, &fleetErr) && fleetErr.Kind == kind
}

// ContainerOf returns the devcontainer id attached to err, if any.
func ContainerOf(err error) string {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.ContainerID
	}
	return ""
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
