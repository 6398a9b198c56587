package output

import (
	"context"
	"errors"

	testiderrors "github.com/NicabarNimble/go-testid/internal/errors"
)

// Exit codes:
// 0 = Success
// 1 = User error (bad flags, invalid configuration)
// 2 = Provisioning failed (clone or checkout)
// 3 = Script failed (not found, non-zero exit)
// 130 = Interrupted
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitProvision   = 2
	ExitScript      = 3
	ExitInterrupted = 130
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewUserErrorWithCause creates a user error wrapping an underlying cause.
func NewUserErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message, Cause: cause}
}

// ExitCode maps an error to the process exit status. Explicit ExitErrors
// win; otherwise interruption, provisioning and script failures have their
// own codes and anything else is a user error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case testiderrors.IsProvisionError(err):
		return ExitProvision
	case testiderrors.IsScriptNotFound(err), testiderrors.IsScriptExecutionError(err):
		return ExitScript
	default:
		return ExitUserError
	}
}
