package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes shared by every command.
const (
	ExitSuccess      = 0 // the command did what was asked
	ExitFailure      = 1 // scenarios failed, modules rejected, setup invalid
	ExitCommandError = 2 // bad flags, missing paths, unreadable journal
)

// ExitError carries the exit code a command wants the process to end
// with.
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

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the code from an error. Errors that are not
// ExitErrors count as plain failures.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// response is the JSON envelope every command emits under --format
// json. Errors holds human-readable problem lines when status is
// "error".
type response struct {
	Status string   `json:"status"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// writeJSON emits the envelope with stable indentation.
func writeJSON(w io.Writer, status string, data any, errs []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(response{Status: status, Data: data, Errors: errs})
}

// newLogger builds the command logger: text on stderr, Debug under
// --verbose. Diagnostics go to stderr so JSON on stdout stays parseable.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
