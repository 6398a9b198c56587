package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-testid/internal/clipboard"
	testiderrors "github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/output"
)

// generatorScript counts its invocations in the checkout and fails on the
// invocation named by FAIL_AT.
const generatorScript = `n=$(cat .count 2>/dev/null || echo 0)
n=$((n+1))
echo "$n" > .count
if [ "$n" = "${FAIL_AT:-0}" ]; then
  echo "generator exploded" >&2
  exit 4
fi
prefix=T
if [ "$1" = "-kind" ]; then
  prefix=$2
fi
printf '%s-%03d\n' "$prefix" "$n"
`

// initScriptRepo creates a repository holding the generator script and
// returns its path.
func initScriptRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "gen.sh"), []byte(generatorScript), 0o755))
	_, err = wt.Add("scripts/gen.sh")
	require.NoError(t, err)
	_, err = wt.Commit("add generator", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

// setupEnv points testid at an in-process provisioner, sh and a private
// work directory, which it returns.
func setupEnv(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	workDir := t.TempDir()
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"TESTID_CONFIG", "TESTID_REPOSITORY", "TESTID_COMMIT", "TESTID_GIT_BINARY",
		"TESTID_CLIPBOARD", "TESTID_LOG_LEVEL", "FAIL_AT",
	} {
		unsetenv(t, key)
	}
	t.Setenv("TESTID_PROVIDER", "go-git")
	t.Setenv("TESTID_INTERPRETER", "sh")
	t.Setenv("TESTID_SCRIPT_PATH", "scripts/gen.sh")
	t.Setenv("TESTID_WORK_DIR", workDir)
	return workDir
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerate_TwoIDs(t *testing.T) {
	workDir := setupEnv(t)
	repo := initScriptRepo(t)

	stdout, _, err := execute(t, "generate", "-r", repo, "-c", "master", "-n", "2", "--no-clipboard")
	require.NoError(t, err)

	assert.Equal(t, "Test ID 1: T-001\nTest ID 2: T-002\n", stdout)
	assert.Equal(t, output.ExitSuccess, output.ExitCode(err))
	assert.Empty(t, readDir(t, workDir), "checkout removed")
}

// recordingSink stands in for the system clipboard.
type recordingSink struct {
	texts []string
	err   error
}

func (s *recordingSink) Copy(_ context.Context, text string) error {
	s.texts = append(s.texts, text)
	return s.err
}

func mockSink(t *testing.T, err error) *recordingSink {
	t.Helper()
	original := newSink
	t.Cleanup(func() { newSink = original })

	sink := &recordingSink{err: err}
	newSink = func() clipboard.Sink { return sink }
	return sink
}

func TestGenerate_CopiesToClipboardByDefault(t *testing.T) {
	workDir := setupEnv(t)
	repo := initScriptRepo(t)
	sink := mockSink(t, nil)

	stdout, stderr, err := execute(t, "generate", "-r", repo, "-c", "master", "-n", "2")
	require.NoError(t, err)

	assert.Equal(t, "Test ID 1: T-001\nTest ID 2: T-002\n", stdout)
	assert.Equal(t, []string{"T-001\nT-002"}, sink.texts)
	assert.Contains(t, stderr, "Test IDs copied to clipboard.")
	assert.Empty(t, readDir(t, workDir))
}

func TestGenerate_ClipboardDisabled(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{name: "flag", args: []string{"--no-clipboard"}},
		{name: "environment", env: "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			repo := initScriptRepo(t)
			sink := mockSink(t, nil)
			if tt.env != "" {
				t.Setenv("TESTID_CLIPBOARD", tt.env)
			}

			args := append([]string{"generate", "-r", repo, "-c", "master"}, tt.args...)
			_, stderr, err := execute(t, args...)
			require.NoError(t, err)
			assert.Empty(t, sink.texts)
			assert.NotContains(t, stderr, "copied to clipboard")
		})
	}
}

func TestGenerate_ClipboardFailureIsAWarning(t *testing.T) {
	setupEnv(t)
	repo := initScriptRepo(t)
	mockSink(t, &testiderrors.ClipboardError{})

	stdout, stderr, err := execute(t, "generate", "-r", repo, "-c", "master")
	require.NoError(t, err)
	assert.Equal(t, "Test ID 1: T-001\n", stdout)
	assert.Contains(t, stderr, "Warning:")
}

func TestGenerate_Kind(t *testing.T) {
	setupEnv(t)
	repo := initScriptRepo(t)

	stdout, _, err := execute(t, "generate", "-r", repo, "-c", "master", "-k", "acceptance", "--no-clipboard")
	require.NoError(t, err)
	assert.Equal(t, "Test ID 1: C-001\n", stdout)
}

func TestGenerate_ScriptFailsOnSecondCall(t *testing.T) {
	workDir := setupEnv(t)
	repo := initScriptRepo(t)
	t.Setenv("FAIL_AT", "2")

	stdout, _, err := execute(t, "generate", "-r", repo, "-c", "master", "-n", "3", "--no-clipboard")
	require.Error(t, err)

	assert.Equal(t, "Test ID 1: T-001\n", stdout)
	assert.NotContains(t, stdout, "Test ID 2")
	assert.Contains(t, err.Error(), "generator exploded")
	assert.Equal(t, output.ExitScript, output.ExitCode(err))
	assert.Empty(t, readDir(t, workDir), "checkout removed")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(repo string) []string
		wantCode int
	}{
		{
			name:     "missing repository",
			args:     func(string) []string { return []string{"generate", "-c", "master"} },
			wantCode: output.ExitUserError,
		},
		{
			name:     "missing commit",
			args:     func(repo string) []string { return []string{"generate", "-r", repo} },
			wantCode: output.ExitUserError,
		},
		{
			name:     "zero count",
			args:     func(repo string) []string { return []string{"generate", "-r", repo, "-c", "master", "-n", "0"} },
			wantCode: output.ExitUserError,
		},
		{
			name:     "bad kind",
			args:     func(repo string) []string { return []string{"generate", "-r", repo, "-c", "master", "-k", "X"} },
			wantCode: output.ExitUserError,
		},
		{
			name:     "unsupported scheme",
			args:     func(string) []string { return []string{"generate", "-r", "ftp://example.com/repo.git", "-c", "master"} },
			wantCode: output.ExitUserError,
		},
		{
			name:     "unknown commit",
			args:     func(repo string) []string { return []string{"generate", "-r", repo, "-c", "no-such-ref", "--no-clipboard"} },
			wantCode: output.ExitProvision,
		},
		{
			name: "missing script",
			args: func(repo string) []string {
				return []string{"generate", "-r", repo, "-c", "master", "--no-clipboard"}
			},
			wantCode: output.ExitScript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workDir := setupEnv(t)
			repo := initScriptRepo(t)
			if tt.name == "missing script" {
				t.Setenv("TESTID_SCRIPT_PATH", "scripts/missing.py")
			}

			stdout, _, err := execute(t, tt.args(repo)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, output.ExitCode(err))
			assert.Empty(t, stdout)
			assert.Empty(t, readDir(t, workDir))
		})
	}
}

func TestGenerate_ConfigFile(t *testing.T) {
	setupEnv(t)
	repo := initScriptRepo(t)

	cfgPath := filepath.Join(t.TempDir(), "testid.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("repository: "+repo+"\ncommit: master\nclipboard: false\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "generate")
	require.NoError(t, err)
	assert.Equal(t, "Test ID 1: T-001\n", stdout)
}

func TestGenerate_CancelledContext(t *testing.T) {
	workDir := setupEnv(t)
	repo := initScriptRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "-r", repo, "-c", "master", "--no-clipboard"})
	err := cmd.ExecuteContext(ctx)

	require.Error(t, err)
	assert.Equal(t, output.ExitInterrupted, output.ExitCode(err))
	assert.Empty(t, readDir(t, workDir))
}

func TestBuildVersion(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	version, commit, date = "1.2.3", "none", "unknown"
	assert.Equal(t, "1.2.3", buildVersion())

	commit, date = "0123456789abcdef", "2026-10-17"
	assert.Equal(t, "1.2.3 (0123456, 2026-10-17)", buildVersion())
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}
