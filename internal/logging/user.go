package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with status prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// SetUserOutput redirects user-facing output. Nil writers restore the defaults.
func SetUserOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout = out
	stderr = errOut
}

// UserOut returns the writer used for user-facing stdout messages.
func UserOut() io.Writer {
	return stdout
}

func userf(w io.Writer, style lipgloss.Style, prefix, format string, args ...interface{}) {
	msg := Redact(fmt.Sprintf(format, args...))
	fmt.Fprintf(w, "%s %s\n", style.Render(prefix), msg)
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	userf(stdout, infoStyle, "ℹ", format, args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	userf(stdout, successStyle, "✓", format, args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	userf(stderr, warningStyle, "⚠", format, args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	userf(stderr, errorStyle, "✗", format, args...)
}
