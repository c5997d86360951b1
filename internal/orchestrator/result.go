package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/AnBasement/linux-maintenance/internal/task"
)

// ErrNotElevated marks a task whose sudo precondition was not met.
var ErrNotElevated = errors.New("orchestrator: elevated privileges required")

// PreconditionError reports a task that was not executed because a
// precondition failed. It is never an execution failure.
type PreconditionError struct {
	Task string
	Err  error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("task %q not run: %v", e.Task, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Status is the outcome of a single executed task.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result records one executed task. Results are appended as tasks finish
// and never modified afterwards.
type Result struct {
	Task     string
	Command  string
	Status   Status
	ExitCode int
	// Summary is the family-specific reduction of stdout.
	Summary string
	// Error carries stderr for failed tasks and is empty on success.
	Error    string
	Duration time.Duration
}

// Succeeded reports whether the task exited with status 0.
func (r Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Skip records a batch task skipped on a failed precondition.
type Skip struct {
	Task   string
	Reason string
}

// Outcome is the terminal state of a batch run.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeHalted       Outcome = "halted"
	OutcomeNothingToRun Outcome = "nothing-to-run"
)

// Report is handed to presentation once a batch run ends.
type Report struct {
	RunID      string
	Outcome    Outcome
	Planned    []task.Task
	Results    []Result
	Skipped    []Skip
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the result that halted the batch, if any.
func (r Report) Failed() (Result, bool) {
	if r.Outcome != OutcomeHalted || len(r.Results) == 0 {
		return Result{}, false
	}
	return r.Results[len(r.Results)-1], true
}

// NotRun lists planned tasks that were neither executed nor skipped.
func (r Report) NotRun() []string {
	done := map[string]int{}
	for _, res := range r.Results {
		done[res.Task]++
	}
	for _, skip := range r.Skipped {
		done[skip.Task]++
	}
	var names []string
	for _, t := range r.Planned {
		if done[t.Name] > 0 {
			done[t.Name]--
			continue
		}
		names = append(names, t.Name)
	}
	return names
}

// Duration is the wall time of the batch.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
