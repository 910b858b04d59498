package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with status prefixes.
// These write to stdout/stderr for CLI output,
// separate from the structured debug logging.

var (
	outMu  sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput replaces the writers used for user output. A nil writer
// restores the corresponding default.
func SetOutput(out, errOut io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout = out
	stderr = errOut
}

// Stdout returns the writer used for user output.
func Stdout() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return stdout
}

// Stderr returns the writer used for user warnings and errors.
func Stderr() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return stderr
}

// ANSI colors: 12 blue, 10 green, 11 yellow, 9 red.
func printUser(w io.Writer, glyph, color, format string, args ...interface{}) {
	prefix := lipgloss.NewRenderer(w).NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render(glyph)
	fmt.Fprintf(w, prefix+" "+format+"\n", args...)
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	printUser(Stdout(), "ℹ", "12", format, args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	printUser(Stdout(), "✓", "10", format, args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	printUser(Stderr(), "⚠", "11", format, args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	printUser(Stderr(), "✗", "9", format, args...)
}

// UserPlain prints an unprefixed line to stdout. Used for diff bodies and
// validation listings where a glyph would get in the way.
func UserPlain(format string, args ...interface{}) {
	fmt.Fprintf(Stdout(), format+"\n", args...)
}
