package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"

	"github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/token"
	"github.com/NicabarNimble/go-testid/internal/urlutils"
)

// checkoutPrefix names every directory created by a provisioner.
const checkoutPrefix = "testid_"

// Checkout is a working tree of one repository at one commit.
type Checkout struct {
	Path          string
	RepositoryURL string // redacted
	Commit        string // as requested
	Hash          string // resolved commit, when the backend knows it
}

// Remove deletes the working tree. Removing an already removed checkout
// succeeds.
func (c *Checkout) Remove() error {
	if c == nil || c.Path == "" {
		return nil
	}
	if err := os.RemoveAll(c.Path); err != nil {
		return fmt.Errorf("failed to remove checkout %s: %w", c.Path, err)
	}
	return nil
}

// newCheckoutPath returns a fresh, absolute, not yet existing path under
// base. An empty base means the system temporary directory.
func newCheckoutPath(base string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve work directory: %w", err)
	}

	path := filepath.Join(abs, checkoutPrefix+uuid.NewString())
	if _, err := os.Lstat(path); err == nil {
		return "", fmt.Errorf("checkout path %s already exists", path)
	}
	return path, nil
}

// request is a validated Provision call shared by both backends.
type request struct {
	repo   *urlutils.RepositoryURL
	commit string
	path   string
}

func prepare(repositoryURL, commit, baseDir string) (*request, error) {
	repo, err := urlutils.ParseRepositoryURL(repositoryURL)
	if err != nil {
		return nil, &errors.ProvisionError{
			Step:          errors.StepPrepare,
			RepositoryURL: urlutils.Redact(repositoryURL),
			Commit:        commit,
			Err:           err,
		}
	}

	commit = strings.TrimSpace(commit)
	if commit == "" || strings.HasPrefix(commit, "-") {
		return nil, &errors.ProvisionError{
			Step:          errors.StepPrepare,
			RepositoryURL: repo.String(),
			Commit:        commit,
			Err:           fmt.Errorf("invalid commit reference %q", commit),
		}
	}

	path, err := newCheckoutPath(baseDir)
	if err != nil {
		return nil, &errors.ProvisionError{
			Step:          errors.StepPrepare,
			RepositoryURL: repo.String(),
			Commit:        commit,
			Err:           err,
		}
	}

	return &request{repo: repo, commit: commit, path: path}, nil
}

// fail removes the partial checkout and builds the error the caller sees.
// Removal is attempted even when ctx is already cancelled.
func (r *request) fail(ctx context.Context, step, output string, err error) error {
	if rmErr := os.RemoveAll(r.path); rmErr != nil {
		clog.FromContext(ctx).Errorf("Failed to remove partial checkout %s: %v", r.path, rmErr)
	}
	clog.FromContext(ctx).With("step", step).Errorf("Failed to provision %s: %v", r.repo, err)

	return &errors.ProvisionError{
		Step:          step,
		RepositoryURL: r.repo.String(),
		Commit:        r.commit,
		Output:        output,
		Err:           err,
	}
}

func (r *request) checkout(hash string) *Checkout {
	return &Checkout{
		Path:          r.path,
		RepositoryURL: r.repo.String(),
		Commit:        r.commit,
		Hash:          hash,
	}
}

// credentials returns the token to use for the repository, if any. Lookup
// failures other than a missing token are logged and treated as anonymous.
func credentials(ctx context.Context, tokens token.Storage, repo *urlutils.RepositoryURL) (token.Credentials, bool) {
	if tokens == nil || !repo.IsHTTP() {
		return token.Credentials{}, false
	}
	creds, err := token.ForHost(ctx, tokens, repo.Host)
	if err != nil {
		if !token.IsMissing(err) {
			clog.FromContext(ctx).Warnf("Ignoring token for %s: %v", repo.Host, err)
		}
		return token.Credentials{}, false
	}
	return creds, true
}

// redactToken removes a token from git diagnostic output.
func redactToken(output string, creds token.Credentials) string {
	if creds.Token == "" {
		return output
	}
	return strings.ReplaceAll(output, creds.Token, "***")
}
