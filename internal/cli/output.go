package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"storefront-admin/pkg/apiclient"

	"github.com/fatih/color"
)

// Exit codes for CLI commands.
const (
	ExitSuccess         = 0
	ExitFailure         = 1 // the remote API refused or failed the request
	ExitCommandError    = 2 // bad flags or arguments
	ExitUnauthenticated = 3 // no stored session
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// remoteError turns a service failure into the message an operator sees.
func remoteError(action string, err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: action + ": " + apiclient.Message(err), Err: err}
}

// PrintError writes err in red.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		msg = exitErr.Message
	}
	color.New(color.FgRed).Fprintf(w, "Error: %s\n", msg)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for --format json.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Notice string      `json:"notice,omitempty"`
}

func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success prints message in text mode and data in JSON mode.
func (f *OutputFormatter) Success(message string, data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	color.New(color.FgGreen).Fprintln(f.Writer, message)
	return nil
}

// Table prints rows under header in text mode and data in JSON mode.
// notice, when set, is printed above the table in yellow.
func (f *OutputFormatter) Table(header []string, rows [][]string, data interface{}, notice string) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data, Notice: notice})
	}

	if notice != "" {
		color.New(color.FgYellow).Fprintln(f.Writer, notice)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		bold.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// VerboseLog writes to ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
