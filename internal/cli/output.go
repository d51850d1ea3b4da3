package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// Exit codes for marketctl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the request was refused or failed
	ExitCommandError = 2 // bad flags, configuration or connection
)

// ExitError carries an exit code out of a command.
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

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Error codes reported in JSON output.
const (
	CodeInternal        = "E000"
	CodeUnauthenticated = "E001"
	CodeInvalidInput    = "E002"
	CodeForbidden       = "E003"
	CodeNotFound        = "E004"
	CodeConflict        = "E005"
)

// ErrorCode classifies err for JSON output.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, market.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, market.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, market.ErrNotFound), errors.Is(err, errProductNotFound):
		return CodeNotFound
	case errors.Is(err, market.ErrConflict):
		return CodeConflict
	case errors.Is(err, market.ErrInvalidInput),
		errors.Is(err, market.ErrMissingField),
		errors.Is(err, market.ErrInvalidEmailDomain),
		errors.Is(err, market.ErrPasswordTooShort),
		errors.Is(err, market.ErrPasswordMismatch),
		errors.Is(err, market.ErrTooManyImages),
		errors.Is(err, market.ErrInvalidCondition),
		errors.Is(err, market.ErrInvalidStatus),
		errors.Is(err, market.ErrInvalidPrice),
		errors.Is(err, market.ErrEmptyMessage),
		errors.Is(err, market.ErrContactUnavailable):
		return CodeInvalidInput
	}
	return CodeInternal
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // notifications and diagnostics
	Verbose   bool
}

// Response is the JSON envelope.
type Response struct {
	Status string         `json:"status"`
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Print writes data as JSON, or calls text in text mode.
func (f *OutputFormatter) Print(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Error reports err in the configured format.
func (f *OutputFormatter) Error(err error) {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: ErrorCode(err), Message: err.Error()},
		})
		return
	}
	fmt.Fprintf(f.errWriter(), "Error: %v\n", err)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Notifier shows store notifications on the diagnostic stream.
func (f *OutputFormatter) Notifier() market.Notifier {
	return consoleNotifier{w: f.errWriter()}
}

type consoleNotifier struct{ w io.Writer }

func (n consoleNotifier) Success(msg string) { fmt.Fprintln(n.w, "✓", msg) }
func (n consoleNotifier) Error(msg string)   { fmt.Fprintln(n.w, "✗", msg) }
