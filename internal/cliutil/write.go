// Package cliutil provides output helpers shared by the CLI commands.
package cliutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/oascontract/oaserrors"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteError reports err on w. Typed errors are broken into kind,
// location, message and one line per schema diagnostic; anything else is
// written as is.
func WriteError(w io.Writer, err error) {
	var oe *oaserrors.Error
	if !errors.As(err, &oe) {
		Writef(w, "Error: %v\n", err)
		return
	}
	Writef(w, "%s\n", oe.Kind)
	if oe.Location != "" {
		Writef(w, "  location: %s\n", oe.Location)
	}
	if oe.Message != "" {
		Writef(w, "  message:  %s\n", oe.Message)
	}
	for _, d := range oe.Diagnostics {
		Writef(w, "  - %s (%s)\n", d, d.KeywordLocation)
	}
	if oe.Cause != nil {
		Writef(w, "  cause:    %v\n", oe.Cause)
	}
}
