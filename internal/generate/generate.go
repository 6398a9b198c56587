// Package generate drives a full identifier run: provision a checkout,
// invoke the generator script once per requested identifier, hand the
// results to the clipboard, and remove the checkout.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/NicabarNimble/go-testid/internal/errors"
	"github.com/NicabarNimble/go-testid/internal/git"
	"github.com/NicabarNimble/go-testid/internal/progress"
	"github.com/NicabarNimble/go-testid/internal/script"
)

// ClipboardNotice is printed after identifiers were copied.
const ClipboardNotice = "Test IDs copied to clipboard."

// Stages of a run, as reported to the tracker.
const (
	StateProvisioning = "provisioning"
	StateInvoking     = "invoking"
	StateSinking      = "sinking"
	StateCleanup      = "cleanup"
)

// Provisioner materializes a repository at a commit.
type Provisioner interface {
	Provision(ctx context.Context, repositoryURL, commit string) (*git.Checkout, error)
}

// Invoker runs the generator script once and returns its output.
type Invoker interface {
	Invoke(ctx context.Context, checkoutPath, scriptPath string, kind script.Kind) (string, error)
}

// Sink receives the collected identifiers.
type Sink interface {
	Copy(ctx context.Context, text string) error
}

// Printer shows identifiers and notices to the user.
type Printer interface {
	IDLine(index int, id string)
	Notice(msg string)
	Warn(format string, args ...any)
}

// Request describes one run.
type Request struct {
	RepositoryURL string
	Commit        string
	Count         int
	Kind          script.Kind
}

// Validate checks the request before anything is provisioned.
func (r Request) Validate() error {
	if strings.TrimSpace(r.RepositoryURL) == "" {
		return errors.New("generate", fmt.Errorf("repository URL is required"))
	}
	if strings.TrimSpace(r.Commit) == "" {
		return errors.New("generate", fmt.Errorf("commit is required"))
	}
	if r.Count < 1 {
		return errors.New("generate", fmt.Errorf("number of test IDs must be at least 1, got %d", r.Count))
	}
	switch r.Kind {
	case script.KindNone, script.KindUnit, script.KindAcceptance:
	default:
		return errors.New("generate", fmt.Errorf("invalid kind %q", r.Kind))
	}
	return nil
}

// Result holds the identifiers produced by a run, in invocation order.
type Result struct {
	IDs []string
}

// Orchestrator sequences provisioning, invocation, sinking and cleanup.
type Orchestrator struct {
	Provisioner Provisioner
	Invoker     Invoker
	Sink        Sink             // optional
	Printer     Printer
	Tracker     progress.Tracker // optional
	ScriptPath  string
}

// Run executes req. On failure the returned error is the one produced by
// the failing stage, unwrapped, and Result holds the identifiers printed
// before it. The checkout is removed on every path once provisioning
// succeeded.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := clog.FromContext(ctx).With("repository", req.RepositoryURL, "commit", req.Commit)
	tracker := o.tracker()

	tracker.Start(StateProvisioning)
	checkout, err := o.Provisioner.Provision(ctx, req.RepositoryURL, req.Commit)
	if err != nil {
		tracker.Error(err)
		return nil, err
	}
	tracker.Complete()
	log.Infof("Repository ready at %s", checkout.Path)

	defer o.cleanup(ctx, checkout)

	result := &Result{IDs: make([]string, 0, req.Count)}
	for i := 1; i <= req.Count; i++ {
		tracker.Start(fmt.Sprintf("%s %d/%d", StateInvoking, i, req.Count))
		id, err := o.Invoker.Invoke(ctx, checkout.Path, o.ScriptPath, req.Kind)
		if err != nil {
			tracker.Error(err)
			log.Errorf("Generating test ID %d of %d failed: %v", i, req.Count, err)
			return result, err
		}
		tracker.Complete()

		result.IDs = append(result.IDs, id)
		o.Printer.IDLine(i, id)
	}

	if len(result.IDs) > 0 {
		o.sink(ctx, result.IDs)
	}
	return result, nil
}

// sink copies ids to the clipboard. Failures are reported and ignored.
func (o *Orchestrator) sink(ctx context.Context, ids []string) {
	if o.Sink == nil {
		return
	}
	tracker := o.tracker()
	tracker.Start(StateSinking)
	if err := o.Sink.Copy(ctx, strings.Join(ids, "\n")); err != nil {
		tracker.Error(err)
		clog.FromContext(ctx).Warnf("Could not copy test IDs to clipboard: %v", err)
		o.Printer.Warn("could not copy test IDs to clipboard: %v", err)
		return
	}
	tracker.Complete()
	o.Printer.Notice(ClipboardNotice)
}

// cleanup removes the checkout. It runs even after ctx is cancelled and
// never changes the outcome of the run.
func (o *Orchestrator) cleanup(ctx context.Context, checkout *git.Checkout) {
	tracker := o.tracker()
	tracker.Start(StateCleanup)
	if err := checkout.Remove(); err != nil {
		tracker.Error(err)
		clog.FromContext(ctx).Warnf("Failed to clean up %s: %v", checkout.Path, err)
		o.Printer.Warn("failed to clean up temporary directory %s: %v", checkout.Path, err)
		return
	}
	tracker.Complete()
	clog.FromContext(ctx).Debugf("Removed %s", checkout.Path)
}

func (o *Orchestrator) tracker() progress.Tracker {
	if o.Tracker == nil {
		return nopTracker{}
	}
	return o.Tracker
}

type nopTracker struct{}

func (nopTracker) Start(name string) *progress.Operation { return &progress.Operation{Name: name} }
func (nopTracker) Update(int64, int64)                   {}
func (nopTracker) Complete()                             {}
func (nopTracker) Error(error)                           {}
