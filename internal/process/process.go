// Package process runs external commands to completion and captures their
// output.
//
// Each command runs in its own process group on Unix so that cancelling the
// context also stops anything the command spawned.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	maxLineSize = 1024 * 1024

	// waitDelay bounds how long Wait waits for the process to exit after
	// the context is cancelled.
	waitDelay = 5 * time.Second
)

// Spec describes one command invocation.
type Spec struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment

	// OnStderrLine, if set, is called for each stderr line as it arrives.
	OnStderrLine func(line string)
}

// Result holds the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Run starts the command and waits for it to exit. A non-zero exit status is
// reported in Result.ExitCode with a nil error. An error is returned when
// the command cannot be started, its output cannot be read, or ctx is done
// before it exits; in the last case the error wraps ctx.Err().
func Run(ctx context.Context, spec Spec) (*Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	setPlatformProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Name, err)
	}

	var stdoutBuf, stderrBuf strings.Builder
	var g errgroup.Group
	g.Go(func() error {
		return collect(stdout, &stdoutBuf, nil)
	})
	g.Go(func() error {
		return collect(stderr, &stderrBuf, spec.OnStderrLine)
	})

	readErr := g.Wait()
	waitErr := cmd.Wait()

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s interrupted: %w", spec.Name, ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("%s: %w", spec.Name, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if readErr != nil {
		return result, fmt.Errorf("failed to read %s output: %w", spec.Name, readErr)
	}

	return result, nil
}

func collect(pipe io.Reader, buf *strings.Builder, onLine func(string)) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if onLine != nil {
			onLine(line)
		}
	}
	return scanner.Err()
}
