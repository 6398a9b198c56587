package main

import (
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-testid/internal/clipboard"
	"github.com/NicabarNimble/go-testid/internal/config"
	"github.com/NicabarNimble/go-testid/internal/generate"
	"github.com/NicabarNimble/go-testid/internal/git"
	"github.com/NicabarNimble/go-testid/internal/output"
	"github.com/NicabarNimble/go-testid/internal/progress"
	"github.com/NicabarNimble/go-testid/internal/script"
	"github.com/NicabarNimble/go-testid/internal/token"
	"github.com/NicabarNimble/go-testid/internal/urlutils"
)

// newSink is a variable so it can be mocked in tests
var newSink = func() clipboard.Sink {
	return clipboard.NewSystem()
}

type generateOptions struct {
	repository  string
	commit      string
	number      int
	kind        string
	noClipboard bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one or more test IDs",
		Long: `Clone the repository at the given commit into a temporary directory and
run the generator script there once per requested ID. Each ID is printed as
"Test ID <n>: <id>" as soon as it is produced.`,
		Example: `  testid generate -r https://github.com/acme/tests.git -c 4f2a9c1
  testid generate -r https://github.com/acme/tests.git -c v1.2.0 -n 5 -k C
  testid generate -r git@github.com:acme/tests.git -c main --no-clipboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repository, "repository", "r", "", "Repository URL to clone")
	cmd.Flags().StringVarP(&opts.commit, "commit", "c", "", "Commit, tag or branch to check out")
	cmd.Flags().IntVarP(&opts.number, "number", "n", 1, "Number of test IDs to generate")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Kind of test ID: U (unit) or C (acceptance)")
	cmd.Flags().BoolVar(&opts.noClipboard, "no-clipboard", false, "Do not copy the IDs to the clipboard")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, config.ResolvePath(root.configPath))
	if err != nil {
		return err
	}
	if !root.verbose && cfg.LogLevel != "" {
		ctx = withLogger(ctx, cmd.ErrOrStderr(), parseLevel(cfg.LogLevel))
	}
	log := clog.FromContext(ctx)

	kind, err := script.ParseKind(opts.kind)
	if err != nil {
		return output.NewUserErrorWithCause(err.Error(), err)
	}

	req := generate.Request{
		RepositoryURL: cfg.Repository,
		Commit:        cfg.Commit,
		Count:         opts.number,
		Kind:          kind,
	}
	if cmd.Flags().Changed("repository") {
		req.RepositoryURL = opts.repository
	}
	if cmd.Flags().Changed("commit") {
		req.Commit = opts.commit
	}
	if req.RepositoryURL == "" {
		return output.NewUserError("repository is required: pass --repository or set it in the configuration")
	}
	if req.Commit == "" {
		return output.NewUserError("commit is required: pass --commit or set it in the configuration")
	}
	if err := urlutils.ValidateURL(req.RepositoryURL); err != nil {
		return output.NewUserErrorWithCause(fmt.Sprintf("invalid repository %s: %v", urlutils.Redact(req.RepositoryURL), err), err)
	}

	tracker := progress.NewLogTracker(ctx)
	tokens := token.NewEnvStorage()

	var provisioner generate.Provisioner
	switch cfg.Provider {
	case config.ProviderGoGit:
		provisioner = &git.GoGitProvisioner{BaseDir: cfg.WorkDir, Tokens: tokens, Progress: tracker}
	default:
		provisioner = &git.CLIProvisioner{Binary: cfg.GitBinary, BaseDir: cfg.WorkDir, Tokens: tokens, Progress: tracker}
	}

	sink := newSink()
	if opts.noClipboard || !cfg.ClipboardEnabled() {
		sink = clipboard.Nop{}
	}

	orch := &generate.Orchestrator{
		Provisioner: provisioner,
		Invoker:     script.NewRunner(cfg.Interpreter),
		Sink:        sink,
		Printer:     output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.IsTTY(cmd.OutOrStdout())),
		Tracker:     tracker,
		ScriptPath:  cfg.ScriptPath,
	}

	log.With("provider", cfg.Provider, "count", req.Count).Debugf("Generating test IDs")
	res, err := orch.Run(ctx, req)
	if err != nil {
		if res != nil && len(res.IDs) > 0 {
			log.Warnf("Generated %d of %d test IDs before failing", len(res.IDs), req.Count)
		}
		return fmt.Errorf("generate: %w", err)
	}
	log.Debugf("Generated %d test IDs", len(res.IDs))
	return nil
}
