// Package progress reports the stages of a generate run.
//
// The orchestrator starts one operation per stage (provisioning, each
// invocation, sinking, cleanup); provisioners feed transfer counts into the
// running operation through Update.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
)

// Tracker interface defines methods for tracking operation progress
type Tracker interface {
	Start(operation string) *Operation
	Update(current, total int64)
	Complete()
	Error(err error)
}

// Operation statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Operation represents a tracked operation
type Operation struct {
	Name         string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	Err          error
	LastUpdate   time.Time
	LastCurrent  int64
	LastTotal    int64
	ProgressRate float64 // items per second
	RateHistory  []float64
	EstimatedETA time.Time
}

const (
	rateHistorySize = 10 // Keep last 10 rate measurements for averaging
)

func newOperation(name string) *Operation {
	now := time.Now()
	return &Operation{
		Name:        name,
		StartTime:   now,
		LastUpdate:  now,
		Status:      StatusInProgress,
		RateHistory: make([]float64, 0, rateHistorySize),
	}
}

// Duration returns how long the operation ran, or has been running.
func (o *Operation) Duration() time.Duration {
	if o.EndTime.IsZero() {
		return time.Since(o.StartTime)
	}
	return o.EndTime.Sub(o.StartTime)
}

// update records a progress sample and refreshes the averaged rate and ETA.
func (o *Operation) update(current, total int64) {
	now := time.Now()

	if o.LastCurrent > 0 {
		timeDiff := now.Sub(o.LastUpdate).Seconds()
		if timeDiff > 0 {
			currentRate := float64(current-o.LastCurrent) / timeDiff

			if len(o.RateHistory) >= rateHistorySize {
				o.RateHistory = o.RateHistory[1:]
			}
			o.RateHistory = append(o.RateHistory, currentRate)

			var totalRate float64
			for _, rate := range o.RateHistory {
				totalRate += rate
			}
			o.ProgressRate = totalRate / float64(len(o.RateHistory))

			if o.ProgressRate > 0 {
				remainingSeconds := float64(total-current) / o.ProgressRate
				o.EstimatedETA = now.Add(time.Duration(remainingSeconds * float64(time.Second)))
			}
		}
	}

	o.LastUpdate = now
	o.LastCurrent = current
	o.LastTotal = total
}

func (o *Operation) finish(status string, err error) {
	o.Status = status
	o.Err = err
	o.EndTime = time.Now()
}

// DefaultTracker records operations in memory.
type DefaultTracker struct {
	mu               sync.Mutex
	CurrentOperation *Operation
	History          []*Operation
}

// Start begins tracking a new operation
func (t *DefaultTracker) Start(operation string) *Operation {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.CurrentOperation = newOperation(operation)
	t.History = append(t.History, t.CurrentOperation)
	return t.CurrentOperation
}

// Update updates the progress of the current operation
func (t *DefaultTracker) Update(current, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.CurrentOperation != nil {
		t.CurrentOperation.update(current, total)
	}
}

// Complete marks the operation as completed
func (t *DefaultTracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.CurrentOperation != nil {
		t.CurrentOperation.finish(StatusCompleted, nil)
	}
}

// Error marks the operation as failed with an error
func (t *DefaultTracker) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.CurrentOperation != nil {
		t.CurrentOperation.finish(StatusFailed, err)
	}
}

// Names returns the names of all started operations in order.
func (t *DefaultTracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.History))
	for _, op := range t.History {
		names = append(names, op.Name)
	}
	return names
}

// LogTracker reports operations through the context logger. Progress
// updates are logged at debug level at most once per percent.
type LogTracker struct {
	ctx context.Context

	mu               sync.Mutex
	currentOperation *Operation
	lastPercent      int64
}

// NewLogTracker creates a tracker that logs with clog.FromContext(ctx).
func NewLogTracker(ctx context.Context) *LogTracker {
	return &LogTracker{ctx: ctx}
}

// Start begins tracking a new operation
func (t *LogTracker) Start(operation string) *Operation {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentOperation = newOperation(operation)
	t.lastPercent = -1
	clog.FromContext(t.ctx).Debugf("Starting: %s", operation)
	return t.currentOperation
}

// Update updates the progress of the current operation
func (t *LogTracker) Update(current, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op := t.currentOperation
	if op == nil || total <= 0 {
		return
	}
	op.update(current, total)

	percent := current * 100 / total
	if percent == t.lastPercent {
		return
	}
	t.lastPercent = percent

	eta := "calculating..."
	if !op.EstimatedETA.IsZero() {
		if remaining := time.Until(op.EstimatedETA).Round(time.Second); remaining > 0 {
			eta = remaining.String()
		} else {
			eta = "almost done"
		}
	}
	clog.FromContext(t.ctx).Debugf("%s: %d%% (%.1f items/sec, ETA: %s)", op.Name, percent, op.ProgressRate, eta)
}

// Complete marks the current operation as completed
func (t *LogTracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.currentOperation == nil {
		return
	}
	t.currentOperation.finish(StatusCompleted, nil)
	clog.FromContext(t.ctx).Debugf("Completed: %s (took %v)", t.currentOperation.Name, t.currentOperation.Duration().Round(time.Millisecond))
	t.currentOperation = nil
}

// Error marks the current operation as failed
func (t *LogTracker) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.currentOperation == nil {
		return
	}
	t.currentOperation.finish(StatusFailed, err)
	clog.FromContext(t.ctx).Debugf("Failed: %s - %v", t.currentOperation.Name, err)
	t.currentOperation = nil
}
