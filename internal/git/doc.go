// Package git provisions isolated checkouts of a repository at one commit.
//
// A Provisioner clones into a fresh directory named testid_<uuid> under its
// base directory and checks out the requested commit. Two backends are
// available:
//
// CLIProvisioner runs the git binary ("clone --progress <url> <path>" followed by
// "checkout <commit>" inside the path).
//
// GoGitProvisioner clones and checks out in process with go-git and does
// not need a git binary.
//
// Example Usage:
//
//	p := &git.CLIProvisioner{Binary: "git", Tokens: token.NewEnvStorage()}
//	co, err := p.Provision(ctx, "https://github.com/org/repo.git", "abc123")
//	if err != nil {
//	    return err
//	}
//	defer co.Remove()
//
// Error Handling:
//
// Provision either returns a complete checkout or a *errors.ProvisionError.
// On failure the partially created directory has already been removed, since
// the caller never receives a handle to it. Cancelling the context kills the
// git process and is reported the same way, wrapping the context error.
//
// HTTPS remotes are authenticated with a token from token.Storage when one
// is configured for the host. Tokens never appear in logs or errors.
package git
