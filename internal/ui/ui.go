package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	apperrors "dwhload/pkg/errors"
)

// UI writes user-facing console messages
type UI struct {
	Out     io.Writer
	Verbose bool
	Quiet   bool
}

// NewUI creates a UI writing to out, stdout when nil
func NewUI(out io.Writer, verbose, quiet bool) *UI {
	if out == nil {
		out = os.Stdout
	}
	return &UI{
		Out:     out,
		Verbose: verbose,
		Quiet:   quiet,
	}
}

// Printf prints formatted output if not in quiet mode
func (u *UI) Printf(format string, args ...interface{}) {
	if !u.Quiet {
		fmt.Fprintf(u.Out, format, args...)
	}
}

// VerbosePrintf prints formatted output only in verbose mode
func (u *UI) VerbosePrintf(format string, args ...interface{}) {
	if u.Verbose && !u.Quiet {
		fmt.Fprintf(u.Out, format, args...)
	}
}

// Section prints a section header
func (u *UI) Section(title string) {
	u.Printf("\n%s %s\n", ColorBold("▶"), ColorBold(title))
}

// Info prints an information message
func (u *UI) Info(message string) {
	u.Printf("%s %s\n", ColorInfo("INFO:"), message)
}

// Success prints a success message
func (u *UI) Success(message string) {
	u.Printf("%s %s\n", ColorSuccess("SUCCESS:"), message)
}

// Warning prints a warning message
func (u *UI) Warning(message string) {
	u.Printf("%s %s\n", ColorWarning("WARNING:"), ColorWarning(message))
}

// ShowError prints err, expanding context and suggestions of an AppError.
// Errors are printed even in quiet mode.
func (u *UI) ShowError(err error) {
	if err == nil {
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(u.Out, "\n%s %s\n", ColorError("ERROR:"), err.Error())
		return
	}

	fmt.Fprintf(u.Out, "\n%s [%s] %s\n", ColorError("ERROR:"), appErr.Code, appErr.Message)
	if appErr.Cause != nil {
		for _, line := range strings.Split(appErr.Cause.Error(), "\n") {
			fmt.Fprintf(u.Out, "  %s\n", ColorDim(line))
		}
	}

	if len(appErr.Context) > 0 {
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(u.Out, "\nContext:")
		for _, k := range keys {
			fmt.Fprintf(u.Out, "  %-18s %v\n", k+":", appErr.Context[k])
		}
	}

	if len(appErr.Suggestions) > 0 {
		fmt.Fprintln(u.Out, "\nSuggestions:")
		for i, s := range appErr.Suggestions {
			fmt.Fprintf(u.Out, "  %d. %s\n", i+1, ColorInfo(s))
		}
	}
}
