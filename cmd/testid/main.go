// Package main provides the entry point for the testid CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-testid/internal/output"
)

// Build info set via ldflags at build time.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(buildVersion()))
	return output.ExitCode(err)
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "testid",
		Short: "Generate test identifiers from a repository script",
		Long: `testid clones a repository at a given commit, runs its identifier
generator script once per requested ID, prints the results and copies them
to the clipboard. The temporary checkout is always removed.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			cmd.SetContext(withLogger(cmd.Context(), cmd.ErrOrStderr(), level))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file (default ./testid.yaml or $TESTID_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newGenerateCmd(opts))

	return cmd
}

// withLogger installs a text logger writing to w into ctx.
func withLogger(ctx context.Context, w io.Writer, level slog.Level) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return clog.WithLogger(ctx, clog.New(handler))
}

// parseLevel maps a configured log level to slog.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
