package git

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/progress"
	"github.com/NicabarNimble/go-testid/internal/token"
	"github.com/NicabarNimble/go-testid/internal/urlutils"
)

// GoGitProvisioner provisions checkouts in process with go-git.
type GoGitProvisioner struct {
	BaseDir  string           // defaults to os.TempDir()
	Tokens   token.Storage    // optional
	Progress progress.Tracker // optional
}

// Provision clones repositoryURL into a fresh directory and checks out
// commit. The commit may be a full or abbreviated hash, a tag, or a branch
// of the remote.
func (p *GoGitProvisioner) Provision(ctx context.Context, repositoryURL, commit string) (*Checkout, error) {
	req, err := prepare(repositoryURL, commit, p.BaseDir)
	if err != nil {
		return nil, err
	}

	log := clog.FromContext(ctx).With("path", req.path)
	pw := newProgressWriter(ctx, p.Progress)

	log.Infof("Cloning repository %s", req.repo)
	repo, err := gogit.PlainCloneContext(ctx, req.path, false, &gogit.CloneOptions{
		URL:      req.repo.Raw,
		Auth:     p.auth(ctx, req.repo),
		Progress: pw,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, req.fail(ctx, errors.StepClone, "", fmt.Errorf("cloning repository: %w", err))
	}

	log.Infof("Checking out %s", req.commit)
	hash, err := resolveCommit(repo, req.commit)
	if err != nil {
		return nil, req.fail(ctx, errors.StepCheckout, "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, req.fail(ctx, errors.StepCheckout, "", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, req.fail(ctx, errors.StepCheckout, "", fmt.Errorf("opening worktree: %w", err))
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return nil, req.fail(ctx, errors.StepCheckout, "", fmt.Errorf("checking out %s: %w", hash, err))
	}

	log.Infof("Provisioned %s at %s", req.repo, hash)
	return req.checkout(hash.String()), nil
}

// resolveCommit resolves rev locally, then as a remote-tracking branch of
// origin.
func resolveCommit(repo *gogit.Repository, rev string) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err == nil {
		return hash, nil
	}
	if remote, rerr := repo.ResolveRevision(plumbing.Revision("origin/" + rev)); rerr == nil {
		return remote, nil
	}
	return nil, fmt.Errorf("resolving %s: %w", rev, err)
}

func (p *GoGitProvisioner) auth(ctx context.Context, repo *urlutils.RepositoryURL) transport.AuthMethod {
	creds, ok := credentials(ctx, p.Tokens, repo)
	if !ok {
		return nil
	}
	username := creds.Username
	if username == "" {
		username = "git"
	}
	clog.FromContext(ctx).Debugf("Using token for %s", repo.Host)
	return &githttp.BasicAuth{
		Username: username,
		Password: creds.Token,
	}
}
