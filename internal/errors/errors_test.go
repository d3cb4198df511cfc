package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFleetError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *FleetError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(KindGeneral, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(KindGeneral, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestFleetError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(KindGeneral, "wrapped", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := New(KindGeneral, "no cause")
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestConstructors_KindAndCode(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name     string
		err      *FleetError
		wantKind Kind
		wantID   string
	}{
		{"config not found", ConfigNotFound("/tmp/x.json"), KindConfigNotFound, ""},
		{"parse error", ParseError("/tmp/x.json", cause), KindParseError, ""},
		{"shape error", ShapeError("not a list"), KindShapeError, ""},
		{"missing field", MissingField("web", "source"), KindMissingField, "web"},
		{"missing id", MissingField("", "id"), KindMissingField, ""},
		{"secret lookup", SecretLookupFailed("web", "/p/devcontainers/web/openvscode-token", cause), KindSecretLookupFailed, "web"},
		{"no ssh key", NoSSHKeyAvailable("web"), KindNoSSHKeyAvailable, "web"},
		{"launcher not found", LauncherNotFound("/scripts/up.sh", cause), KindLauncherNotFound, ""},
		{"usage", UsageError("missing --config"), KindUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.wantKind)
			}
			if tt.err.Code != ExitGeneralError {
				t.Errorf("Code = %d, want %d", tt.err.Code, ExitGeneralError)
			}
			if tt.err.ContainerID != tt.wantID {
				t.Errorf("ContainerID = %q, want %q", tt.err.ContainerID, tt.wantID)
			}
		})
	}
}

func TestMissingField_Message(t *testing.T) {
	err := MissingField("web", "source")
	want := `devcontainer web is missing required field "source"`
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNoSSHKeyAvailable_Message(t *testing.T) {
	err := NoSSHKeyAvailable("api")
	if err.Message != "no SSH key available for api" {
		t.Errorf("Message = %q, want %q", err.Message, "no SSH key available for api")
	}
}

func TestLauncherFailed(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		stderr   string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "propagates child exit code",
			exitCode: 3,
			stderr:   "docker: not found\n",
			wantCode: 3,
			wantMsg:  "launcher failed for web with error code 3: docker: not found",
		},
		{
			name:     "signal falls back to general error",
			exitCode: -1,
			wantCode: ExitGeneralError,
			wantMsg:  "launcher failed for web with error code -1",
		},
		{
			name:     "empty stderr has no cause",
			exitCode: 42,
			stderr:   "  \n",
			wantCode: 42,
			wantMsg:  "launcher failed for web with error code 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LauncherFailed("web", tt.exitCode, tt.stderr)
			if err.ExitCode() != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), tt.wantCode)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if err.Kind != KindLauncherExecutionFailed {
				t.Errorf("Kind = %q, want %q", err.Kind, KindLauncherExecutionFailed)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "FleetError",
			err:      ShapeError("bad"),
			wantCode: ExitGeneralError,
		},
		{
			name:     "wrapped launcher failure",
			err:      fmt.Errorf("outer: %w", LauncherFailed("web", 7, "")),
			wantCode: 7,
		},
		{
			name:     "regular error",
			err:      fmt.Errorf("some error"),
			wantCode: ExitGeneralError,
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestIsKindAndKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NoSSHKeyAvailable("web"))

	if !IsKind(err, KindNoSSHKeyAvailable) {
		t.Error("IsKind() should find wrapped kind")
	}
	if IsKind(err, KindShapeError) {
		t.Error("IsKind() should not match a different kind")
	}
	if got := KindOf(err); got != KindNoSSHKeyAvailable {
		t.Errorf("KindOf() = %q, want %q", got, KindNoSSHKeyAvailable)
	}
	if got := KindOf(fmt.Errorf("plain")); got != KindGeneral {
		t.Errorf("KindOf() = %q, want %q", got, KindGeneral)
	}
	if got := ContainerOf(err); got != "web" {
		t.Errorf("ContainerOf() = %q, want %q", got, "web")
	}
}

func TestErrorChaining(t *testing.T) {
	root := fmt.Errorf("root cause")
	middle := SecretLookupFailed("web", "/p/devcontainers/web/openvscode-token", root)
	outer := fmt.Errorf("operation failed: %w", middle)

	if !errors.Is(outer, root) {
		t.Error("errors.Is should find root cause")
	}

	var fleetErr *FleetError
	if !As(outer, &fleetErr) {
		t.Fatal("As should find FleetError")
	}
	if fleetErr.Kind != KindSecretLookupFailed {
		t.Errorf("Kind = %q, want %q", fleetErr.Kind, KindSecretLookupFailed)
	}
	if !Is(outer, root) {
		t.Error("Is should find root cause")
	}
}
