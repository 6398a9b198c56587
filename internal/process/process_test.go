package process

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	tests := []struct {
		name       string
		script     string
		env        []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "captures stdout",
			script:     "echo first; echo second",
			wantStdout: "first\nsecond\n",
		},
		{
			name:       "captures stderr and exit code",
			script:     "echo out; echo bad >&2; exit 3",
			wantExit:   3,
			wantStdout: "out\n",
			wantStderr: "bad\n",
		},
		{
			name:       "runs in the requested directory",
			script:     "pwd -P",
			wantStdout: mustEvalSymlinks(t, dir) + "\n",
		},
		{
			name:       "appends environment",
			script:     `printf '%s\n' "$TESTID_PROBE"`,
			env:        []string{"TESTID_PROBE=visible"},
			wantStdout: "visible\n",
		},
		{
			name:       "keeps stream order",
			script:     "for i in 1 2 3 4 5; do echo $i; echo e$i >&2; done",
			wantStdout: "1\n2\n3\n4\n5\n",
			wantStderr: "e1\ne2\ne3\ne4\ne5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), Spec{
				Name: "sh",
				Args: []string{"-c", tt.script},
				Dir:  dir,
				Env:  tt.env,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, res.ExitCode)
			assert.Equal(t, tt.wantExit == 0, res.Success())
			assert.Equal(t, tt.wantStdout, res.Stdout)
			assert.Equal(t, tt.wantStderr, res.Stderr)
		})
	}
}

func TestRun_StderrCallback(t *testing.T) {
	requireShell(t)

	var lines []string
	_, err := Run(context.Background(), Spec{
		Name:         "sh",
		Args:         []string{"-c", "echo one >&2; echo two >&2"},
		OnStderrLine: func(line string) { lines = append(lines, line) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestRun_StartFailure(t *testing.T) {
	res, err := Run(context.Background(), Spec{Name: filepath.Join(t.TempDir(), "missing-binary")})
	require.Error(t, err)
	assert.Nil(t, res)
}

func TestRun_CancelKillsProcessGroup(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := Run(ctx, Spec{
		Name: "sh",
		// The child sleep shares the pipes; only a group kill lets Run return.
		Args: []string{"-c", "sleep 30 & sleep 30; wait"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func mustEvalSymlinks(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return resolved
}
