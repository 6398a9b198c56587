//go:build windows

package process

import (
	"os/exec"
)

// setPlatformProcessGroup is a no-op; Windows has no Unix-style process groups.
func setPlatformProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup terminates the process via TerminateProcess.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
