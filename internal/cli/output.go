package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/network"
	"github.com/roach88/pulsesim/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Unsolvable target, failed scenario, non-deterministic replay
	ExitCommandError = 2 // Bad input: missing file, malformed network, bad config
)

// Error codes used in JSON responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeReadFailed    = "E003" // File read error
	ErrCodeParse         = "E010" // Malformed network configuration
	ErrCodeConfigInvalid = "E011" // Run config failed CUE evaluation
	ErrCodeNoBroadcaster = "E012" // No module to send the button pulse to
	ErrCodeUnsolvable    = "E020" // Target cannot be extrapolated
	ErrCodePulseQuota    = "E021" // A press did not settle within the quota
	ErrCodeOverflow      = "E022" // Extrapolated answer exceeds uint64
	ErrCodeStore         = "E030" // Run log error
	ErrCodeRunNotFound   = "E031" // No such run in the log
	ErrCodeMismatch      = "E040" // Replay differs from the log
)

// ExitError carries an exit code out of a command.
type ExitError struct {
	Code     int    // ExitFailure or ExitCommandError
	Message  string
	Err      error // Optional
	Reported bool  // Already written to the command's output
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// IsReported reports whether err was already written by a formatter.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a domain error to its JSON error code and exit code.
func classify(err error) (string, int) {
	var (
		exitErr  *ExitError
		parseErr *network.ParseError
		loadErr  *LoadError
		rtErr    *engine.RuntimeError
	)
	switch {
	case errors.As(err, &exitErr):
		return ErrCodeGeneric, exitErr.Code
	case errors.As(err, &parseErr):
		return ErrCodeParse, ExitCommandError
	case errors.As(err, &loadErr):
		return loadErr.Code, ExitCommandError
	case engine.IsPulseQuotaError(err):
		return ErrCodePulseQuota, ExitFailure
	case errors.As(err, &rtErr) && rtErr.Code == engine.ErrCodeAnswerOverflow:
		return ErrCodeOverflow, ExitFailure
	case engine.IsUnsolvable(err):
		return ErrCodeUnsolvable, ExitFailure
	case errors.As(err, &rtErr) && rtErr.Code == engine.ErrCodeNoBroadcaster:
		return ErrCodeNoBroadcaster, ExitCommandError
	case errors.Is(err, store.ErrRunNotFound):
		return ErrCodeRunNotFound, ExitCommandError
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E010", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result. In text mode data is printed with
// fmt.Println; commands with a richer text form print it themselves.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	var details any
	var rtErr *engine.RuntimeError
	if errors.As(err, &rtErr) && len(rtErr.Details) > 0 {
		details = rtErr.Details
	}
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	exitErr := WrapExitError(exit, message, err)
	exitErr.Reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Goes to ErrWriter so JSON on Writer stays intact.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
