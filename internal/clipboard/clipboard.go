// Package clipboard places generated identifiers on the system clipboard.
// Copying is best effort: callers log a failed copy and carry on.
package clipboard

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/NicabarNimble/go-testid/internal/errors"
)

// Sink accepts text for the clipboard.
type Sink interface {
	Copy(ctx context.Context, text string) error
}

// System writes to the operating system clipboard. On Linux it needs
// xclip, xsel, wl-copy or termux-clipboard-set on PATH.
type System struct {
	write func(string) error
}

// NewSystem returns a Sink backed by the system clipboard.
func NewSystem() *System {
	return &System{write: clipboard.WriteAll}
}

// Copy places text on the clipboard. Failures are returned as
// *errors.ClipboardError.
func (s *System) Copy(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return &errors.ClipboardError{}
	}
	if err := ctx.Err(); err != nil {
		return &errors.ClipboardError{Err: err}
	}
	if err := s.write(text); err != nil {
		return &errors.ClipboardError{Err: err}
	}
	return nil
}

// Nop discards everything. It is used when clipboard output is disabled.
type Nop struct{}

// Copy implements Sink.
func (Nop) Copy(context.Context, string) error { return nil }
