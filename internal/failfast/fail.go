// Package failfast turns hard failures into the short message, suggestion
// list and optional cause details the CLI prints before exiting with 1.
package failfast

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// Failure is a user-facing hard failure.
type Failure struct {
	Message     string
	Suggestions []string
	// Details are extra lines printed under the message, e.g. offending paths.
	Details []string
	Cause   error

	caller string
}

// New builds a Failure and records where it was raised.
func New(message string, cause error, suggestions ...string) *Failure {
	f := &Failure{Message: message, Cause: cause, Suggestions: suggestions}
	if pc, file, line, ok := runtime.Caller(1); ok {
		f.caller = fmt.Sprintf("%s:%d (%s)", shortFile(file), line, runtime.FuncForPC(pc).Name())
	}
	return f
}

// WithDetails attaches detail lines.
func (f *Failure) WithDetails(details ...string) *Failure {
	f.Details = append(f.Details, details...)
	return f
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return f.Message + ": " + f.Cause.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// As extracts a *Failure from err.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// Render prints err for a human. Failures get their suggestions and details;
// anything else is printed as a bare error. The cause chain and the raise
// site are only shown when verbose.
func Render(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}

	f, ok := As(err)
	if !ok {
		fmt.Fprintf(w, "\n%s %s\n", red("✖ Error:"), err)
		return
	}

	fmt.Fprintf(w, "\n%s %s\n", red("✖"), f.Message)
	for _, d := range f.Details {
		fmt.Fprintf(w, "  %s\n", d)
	}
	if len(f.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, s := range f.Suggestions {
			fmt.Fprintf(w, "  %s %s\n", yellow("•"), s)
		}
	}
	if verbose {
		if f.Cause != nil {
			fmt.Fprintf(w, "\n%s %v\n", gray("cause:"), f.Cause)
		}
		if f.caller != "" {
			fmt.Fprintf(w, "%s %s\n", gray("at:"), f.caller)
		}
	}
}

// Exit renders err to stderr and terminates the process with status 1.
func Exit(err error, verbose bool) {
	Render(os.Stderr, err, verbose)
	os.Exit(1)
}

func shortFile(file string) string {
	parts := strings.Split(file, "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return file
}
