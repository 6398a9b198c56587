// Package script runs the identifier generator script inside a checkout.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/process"
)

// DefaultInterpreter runs the generator script when none is configured.
const DefaultInterpreter = "python3"

// Runner invokes a script with an interpreter. An empty Interpreter executes
// the script directly.
type Runner struct {
	Interpreter string
}

// NewRunner returns a Runner using interpreter.
func NewRunner(interpreter string) *Runner {
	return &Runner{Interpreter: interpreter}
}

// runScript is a variable so it can be mocked in tests
var runScript = process.Run

// Invoke runs scriptPath, relative to checkoutPath, with the checkout as
// working directory and returns its trimmed standard output.
func (r *Runner) Invoke(ctx context.Context, checkoutPath, scriptPath string, kind Kind) (string, error) {
	abs, err := resolve(checkoutPath, scriptPath)
	if err != nil {
		return "", err
	}

	name, args := abs, kind.Args()
	if r.Interpreter != "" {
		name, args = r.Interpreter, append([]string{abs}, args...)
	}

	log := clog.FromContext(ctx).With("script", scriptPath)
	log.Debugf("Executing %s %s", name, strings.Join(args, " "))

	res, err := runScript(ctx, process.Spec{Name: name, Args: args, Dir: checkoutPath})
	if err != nil {
		log.Errorf("Script did not complete: %v", err)
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		return "", &errors.ScriptExecutionError{ExitCode: -1, Stderr: stderr, Err: err}
	}
	if !res.Success() {
		log.Errorf("Script failed with exit code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		return "", &errors.ScriptExecutionError{
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      fmt.Errorf("exit status %d", res.ExitCode),
		}
	}

	out := strings.TrimSpace(res.Stdout)
	log.Debugf("Script completed: %s", out)
	return out, nil
}

// resolve returns the absolute script path, failing with
// ScriptNotFoundError when it is missing, a directory, or outside the
// checkout.
func resolve(checkoutPath, scriptPath string) (string, error) {
	root, err := filepath.Abs(checkoutPath)
	if err != nil {
		return "", fmt.Errorf("resolving checkout path: %w", err)
	}

	abs := filepath.Join(root, filepath.FromSlash(scriptPath))
	if filepath.IsAbs(scriptPath) {
		abs = filepath.Clean(scriptPath)
	}
	if rel, err := filepath.Rel(root, abs); err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &errors.ScriptNotFoundError{Path: abs}
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", &errors.ScriptNotFoundError{Path: abs}
	}
	return abs, nil
}
