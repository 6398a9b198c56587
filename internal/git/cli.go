package git

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/process"
	"github.com/NicabarNimble/go-testid/internal/progress"
	"github.com/NicabarNimble/go-testid/internal/token"
	"github.com/NicabarNimble/go-testid/internal/urlutils"
)

// DefaultBinary is the git client used when CLIProvisioner.Binary is empty.
const DefaultBinary = "git"

// CLIProvisioner provisions checkouts with the git command line client.
type CLIProvisioner struct {
	Binary   string           // defaults to DefaultBinary
	BaseDir  string           // defaults to os.TempDir()
	Tokens   token.Storage    // optional
	Progress progress.Tracker // optional
}

// runGitCommand is a variable so it can be mocked in tests
var runGitCommand = func(ctx context.Context, binary, dir string, onLine func(string), args ...string) (*process.Result, error) {
	return process.Run(ctx, process.Spec{
		Name:         binary,
		Args:         args,
		Dir:          dir,
		Env:          []string{"GIT_TERMINAL_PROMPT=0"},
		OnStderrLine: onLine,
	})
}

// Provision clones repositoryURL into a fresh directory and checks out
// commit.
func (p *CLIProvisioner) Provision(ctx context.Context, repositoryURL, commit string) (*Checkout, error) {
	req, err := prepare(repositoryURL, commit, p.BaseDir)
	if err != nil {
		return nil, err
	}

	binary := p.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	log := clog.FromContext(ctx).With("path", req.path)
	cloneURL, creds := p.cloneURL(ctx, req.repo)
	pw := newProgressWriter(ctx, p.Progress)
	onLine := func(line string) { pw.Line(redactToken(line, creds)) }

	log.Infof("Cloning repository %s", req.repo)
	res, err := runGitCommand(ctx, binary, "", onLine, "clone", "--progress", cloneURL, req.path)
	if err := gitFailure("clone", res, err); err != nil {
		return nil, req.fail(ctx, errors.StepClone, redactToken(output(res), creds), err)
	}

	// The clone URL carries the token; the script must not find it in
	// .git/config.
	if creds.Token != "" {
		res, err = runGitCommand(ctx, binary, req.path, nil, "remote", "set-url", "origin", req.repo.String())
		if err := gitFailure("remote set-url", res, err); err != nil {
			return nil, req.fail(ctx, errors.StepClone, redactToken(output(res), creds), err)
		}
	}

	log.Infof("Checking out %s", req.commit)
	res, err = runGitCommand(ctx, binary, req.path, onLine, "checkout", "--quiet", req.commit)
	if err := gitFailure("checkout", res, err); err != nil {
		return nil, req.fail(ctx, errors.StepCheckout, output(res), err)
	}

	log.Infof("Provisioned %s at %s", req.repo, req.commit)
	return req.checkout(""), nil
}

// cloneURL embeds a token in HTTPS remotes when one is configured.
func (p *CLIProvisioner) cloneURL(ctx context.Context, repo *urlutils.RepositoryURL) (string, token.Credentials) {
	creds, ok := credentials(ctx, p.Tokens, repo)
	if !ok {
		return repo.Raw, token.Credentials{}
	}
	parsed, _ := repo.URL()
	tokenURL, err := urlutils.FormatTokenURL(parsed, creds.Username, creds.Token)
	if err != nil {
		clog.FromContext(ctx).Warnf("Cloning %s without token: %v", repo, err)
		return repo.Raw, token.Credentials{}
	}
	clog.FromContext(ctx).Debugf("Using token for %s", repo.Host)
	return tokenURL.String(), creds
}

// gitFailure returns the error for a git invocation that did not succeed.
func gitFailure(subcommand string, res *process.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("git %s exited with status %d", subcommand, res.ExitCode)
	}
	return nil
}

func output(res *process.Result) string {
	if res == nil {
		return ""
	}
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}
