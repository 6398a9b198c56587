package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer handles formatted output to a writer.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	styles *Styles
}

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
}

// NewPrinter creates a Printer writing identifiers to w and everything else
// to errW. Colors are used only when isTTY is true.
func NewPrinter(w, errW io.Writer, isTTY bool) *Printer {
	styles := &Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // Green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // Yellow
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),  // Gray
		Value:   lipgloss.NewStyle().Bold(true),
	}

	if !isTTY {
		styles.Success = lipgloss.NewStyle()
		styles.Warning = lipgloss.NewStyle()
		styles.Label = lipgloss.NewStyle()
		styles.Value = lipgloss.NewStyle()
	}

	return &Printer{w: w, errW: errW, styles: styles}
}

// IDLine prints "Test ID {index}: {id}".
func (p *Printer) IDLine(index int, id string) {
	label := p.styles.Label.Render(fmt.Sprintf("Test ID %d:", index))
	discardWriteErr(fmt.Fprintf(p.w, "%s %s\n", label, p.styles.Value.Render(id)))
}

// Notice prints an informational message to stderr.
func (p *Printer) Notice(msg string) {
	discardWriteErr(fmt.Fprintln(p.errW, p.styles.Success.Render(msg)))
}

// Warn prints a warning to stderr.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	discardWriteErr(fmt.Fprintln(p.errW, p.styles.Warning.Render("Warning: "+msg)))
}

// IsTTY checks if a writer is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// discardWriteErr drops write errors on terminal output; there is nowhere left
// to report them.
func discardWriteErr(_ int, _ error) {}
