package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Provisioning steps reported in ProvisionError.Step.
const (
	StepPrepare  = "prepare"
	StepClone    = "clone"
	StepCheckout = "checkout"
)

// ProvisionError reports a failed clone or checkout. The partial checkout
// has already been removed by the time a caller sees it.
type ProvisionError struct {
	Step          string
	RepositoryURL string // redacted
	Commit        string
	Output        string // diagnostic output captured from the git client
	Err           error
}

func (e *ProvisionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provision %s", e.Step)
	if e.RepositoryURL != "" {
		fmt.Fprintf(&b, " %s", e.RepositoryURL)
	}
	if e.Commit != "" && e.Step == StepCheckout {
		fmt.Fprintf(&b, " at %s", e.Commit)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// ScriptNotFoundError reports that the generator script does not exist in
// the checkout.
type ScriptNotFoundError struct {
	Path string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script not found at %s", e.Path)
}

// ScriptExecutionError reports a generator script that exited non-zero or
// could not be started.
type ScriptExecutionError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ScriptExecutionError) Error() string {
	msg := fmt.Sprintf("script execution failed with exit code %d", e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = fmt.Sprintf("script execution failed: %v", e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ScriptExecutionError) Unwrap() error {
	return e.Err
}

// ClipboardError reports a failed clipboard write. It is never fatal.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	if e.Err == nil {
		return "clipboard unavailable"
	}
	return fmt.Sprintf("clipboard: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// IsProvisionError checks if err wraps a ProvisionError
func IsProvisionError(err error) bool {
	var pe *ProvisionError
	return errors.As(err, &pe)
}

// IsScriptNotFound checks if err wraps a ScriptNotFoundError
func IsScriptNotFound(err error) bool {
	var se *ScriptNotFoundError
	return errors.As(err, &se)
}

// IsScriptExecutionError checks if err wraps a ScriptExecutionError
func IsScriptExecutionError(err error) bool {
	var se *ScriptExecutionError
	return errors.As(err, &se)
}

// IsClipboardError checks if err wraps a ClipboardError
func IsClipboardError(err error) bool {
	var ce *ClipboardError
	return errors.As(err, &ce)
}
