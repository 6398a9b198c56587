package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
)

// Matches lines like:
// Receiving objects:  67% (35484/52960), 236.76 MiB | 78.92 MiB/s
// Resolving deltas: 100% (120/120), done.
var progressRegex = regexp.MustCompile(`(Counting objects|Compressing objects|Receiving objects|Resolving deltas|Updating files):\s*\d+%\s*\((\d+)/(\d+)\)`)

// updater is the part of progress.Tracker fed by transfer output.
type updater interface {
	Update(current, total int64)
}

// progressWriter turns git transfer output into tracker updates and debug
// log lines. Both git and go-git separate progress updates with '\r'.
type progressWriter struct {
	ctx     context.Context
	tracker updater

	mu      sync.Mutex
	pending string
	phase   string
}

func newProgressWriter(ctx context.Context, tracker updater) *progressWriter {
	return &progressWriter{ctx: ctx, tracker: tracker}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	data := pw.pending + string(p)
	parts := strings.FieldsFunc(data, func(r rune) bool { return r == '\r' || r == '\n' })
	pw.pending = ""
	if n := len(data); n > 0 && data[n-1] != '\r' && data[n-1] != '\n' && len(parts) > 0 {
		pw.pending = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	for _, line := range parts {
		pw.line(line)
	}
	return len(p), nil
}

// Line handles one complete line, such as a stderr line from the git CLI.
func (pw *progressWriter) Line(line string) {
	for _, part := range strings.FieldsFunc(line, func(r rune) bool { return r == '\r' }) {
		pw.mu.Lock()
		pw.line(part)
		pw.mu.Unlock()
	}
}

func (pw *progressWriter) line(line string) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "remote: "))
	if line == "" || strings.HasPrefix(line, "Cloning into") {
		return
	}

	m := progressRegex.FindStringSubmatch(line)
	if m == nil {
		clog.FromContext(pw.ctx).Debugf("git: %s", line)
		return
	}

	if m[1] != pw.phase {
		pw.phase = m[1]
		clog.FromContext(pw.ctx).Debugf("git: %s", m[1])
	}
	if pw.tracker == nil {
		return
	}
	current, err1 := strconv.ParseInt(m[2], 10, 64)
	total, err2 := strconv.ParseInt(m[3], 10, 64)
	if err1 == nil && err2 == nil && total > 0 {
		pw.tracker.Update(current, total)
	}
}
