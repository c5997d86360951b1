// Package orchestrator runs maintenance tasks one at a time: a single
// selected task, or the auto-safe batch with halt-on-first-failure. It owns
// the results of a run until the run ends.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnBasement/linux-maintenance/internal/catalog"
	"github.com/AnBasement/linux-maintenance/internal/executor"
	"github.com/AnBasement/linux-maintenance/internal/notify"
	"github.com/AnBasement/linux-maintenance/internal/privilege"
	"github.com/AnBasement/linux-maintenance/internal/summary"
	"github.com/AnBasement/linux-maintenance/internal/task"
)

// Runner executes one command.
type Runner interface {
	Run(ctx context.Context, argv []string) executor.Outcome
}

// Journal records run history.
type Journal interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Progress describes the task a batch is about to run.
type Progress struct {
	Index int // 1-based
	Total int
	Task  task.Task
}

// ProgressFunc observes batch progress. It is called on the orchestrator's
// goroutine and must not block for long.
type ProgressFunc func(Progress)

// Options wires the orchestrator's collaborators. Runner is required.
type Options struct {
	Runner     Runner
	Notifier   notify.Notifier
	Privileges privilege.Checker
	Journal    Journal
	Logger     *zap.Logger

	now      func() time.Time
	newRunID func() string
}

// Orchestrator drives task execution.
type Orchestrator struct {
	runner     Runner
	notifier   notify.Notifier
	privileges privilege.Checker
	journal    Journal
	logger     *zap.Logger
	now        func() time.Time
	newRunID   func() string
}

// New creates an orchestrator. Missing optional collaborators fall back to
// no-op implementations and the process privilege check.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		runner:     opts.Runner,
		notifier:   opts.Notifier,
		privileges: opts.Privileges,
		journal:    opts.Journal,
		logger:     opts.Logger,
		now:        opts.now,
		newRunID:   opts.newRunID,
	}
	if o.notifier == nil {
		o.notifier = notify.Nop{}
	}
	if o.privileges == nil {
		o.privileges = privilege.Process{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newRunID == nil {
		o.newRunID = uuid.NewString
	}
	return o
}

// Elevated reports whether sudo-requiring tasks can run.
func (o *Orchestrator) Elevated() bool {
	return o.privileges.Elevated()
}

// RunTask executes a single selected task. A failed sudo precondition
// returns a *PreconditionError and executes nothing.
func (o *Orchestrator) RunTask(ctx context.Context, t task.Task) (Result, error) {
	if err := o.checkPreconditions(t); err != nil {
		o.logger.Warn("task not run", zap.String("task", t.Name), zap.Error(err))
		o.journalWarn("task %q not run: requires elevated privileges", t.Name)
		return Result{}, err
	}

	result := o.execute(ctx, t)
	if result.Succeeded() {
		o.notify(ctx, notify.Notification{
			Title:   "Task Completed",
			Message: fmt.Sprintf("Command '%s' completed successfully.", t.CommandLine()),
		})
		o.journalInfo("task %q succeeded: %s", t.Name, result.Summary)
	} else {
		o.notify(ctx, notify.Notification{
			Title:    "Task Error",
			Message:  fmt.Sprintf("Command '%s' encountered an error.", t.CommandLine()),
			Severity: notify.Critical,
		})
		o.journalError("task %q failed (exit %d): %s", t.Name, result.ExitCode, result.Error)
	}
	return result, nil
}

// RunBatch runs the auto-safe subset of tasks in order. Tasks whose sudo
// precondition fails are skipped; the first execution failure halts the
// batch. Start and end notifications are sent once per batch that has
// anything to run.
func (o *Orchestrator) RunBatch(ctx context.Context, tasks []task.Task, progress ProgressFunc) Report {
	planned := catalog.FilterAutoSafe(tasks)
	report := Report{
		RunID:     o.newRunID(),
		Planned:   planned,
		StartedAt: o.now(),
	}
	log := o.logger.With(zap.String("run_id", report.RunID))

	if len(planned) == 0 {
		report.Outcome = OutcomeNothingToRun
		report.FinishedAt = report.StartedAt
		log.Info("no auto-safe tasks to run")
		return report
	}

	o.notify(ctx, notify.Notification{
		Title:   "Maintenance Started",
		Message: fmt.Sprintf("Running %d maintenance tasks.", len(planned)),
	})
	log.Info("maintenance started", zap.Int("tasks", len(planned)))

	report.Outcome = OutcomeCompleted
	for i, t := range planned {
		if progress != nil {
			progress(Progress{Index: i + 1, Total: len(planned), Task: t})
		}
		log.Info(fmt.Sprintf("running task %d/%d: %s", i+1, len(planned), t.Name))

		if err := o.checkPreconditions(t); err != nil {
			log.Warn("task skipped", zap.String("task", t.Name), zap.Error(err))
			report.Skipped = append(report.Skipped, Skip{Task: t.Name, Reason: "requires elevated privileges"})
			continue
		}

		result := o.execute(ctx, t)
		report.Results = append(report.Results, result)
		if !result.Succeeded() {
			log.Error("task failed, halting batch",
				zap.String("task", t.Name),
				zap.Int("exit_code", result.ExitCode),
				zap.String("error", result.Error),
			)
			o.notify(ctx, notify.Notification{
				Title:    "Maintenance Error",
				Message:  fmt.Sprintf("Task '%s' encountered an error.", t.Name),
				Severity: notify.Critical,
			})
			report.Outcome = OutcomeHalted
			break
		}
	}
	report.FinishedAt = o.now()

	end := notify.Notification{
		Title:   "Maintenance Complete",
		Message: fmt.Sprintf("%d tasks have been processed.", len(report.Results)),
	}
	if report.Outcome == OutcomeHalted {
		end.Severity = notify.Critical
	}
	o.notify(ctx, end)
	log.Info("maintenance finished",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("executed", len(report.Results)),
		zap.Int("skipped", len(report.Skipped)),
	)
	o.recordReport(report)
	return report
}

// SelfTest runs commands with known outcomes (exit 0, exit 1 and a missing
// executable) to check command execution and notifications on this host.
func (o *Orchestrator) SelfTest(ctx context.Context) []Result {
	probes := []struct {
		task    task.Task
		message string
	}{
		{task.Task{Name: "Success (exit 0)", Command: []string{"true"}, Family: task.FamilyGeneric}, "Test command 'true' completed successfully."},
		{task.Task{Name: "Failure (exit 1)", Command: []string{"false"}, Family: task.FamilyGeneric}, "Test command 'false' failed."},
		{task.Task{Name: "Missing executable (exit 127)", Command: []string{"this-does-not-exist"}, Family: task.FamilyGeneric}, "Test command 'this-does-not-exist' failed."},
	}
	results := make([]Result, 0, len(probes))
	for _, probe := range probes {
		result := o.execute(ctx, probe.task)
		severity := notify.Normal
		if !result.Succeeded() {
			severity = notify.Critical
		}
		o.notify(ctx, notify.Notification{Title: "Test Completed", Message: probe.message, Severity: severity})
		results = append(results, result)
	}
	o.logger.Info("self test finished", zap.Int("probes", len(results)))
	return results
}

func (o *Orchestrator) checkPreconditions(t task.Task) error {
	if t.RequiresSudo && !o.privileges.Elevated() {
		return &PreconditionError{Task: t.Name, Err: ErrNotElevated}
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, t task.Task) Result {
	outcome := o.runner.Run(ctx, t.Command)
	result := Result{
		Task:     t.Name,
		Command:  t.CommandLine(),
		ExitCode: outcome.ExitCode,
		Summary:  summary.Summarize(t.Family, outcome.Stdout),
		Duration: outcome.Duration,
	}
	if outcome.Succeeded() {
		result.Status = StatusSucceeded
		return result
	}
	result.Status = StatusFailed
	result.Error = outcome.Stderr
	if result.Error == "" {
		result.Error = fmt.Sprintf("exit code %d", outcome.ExitCode)
	}
	return result
}

// notify detaches from cancellation so an interrupted batch still reports
// its end; the notifier applies its own timeout.
func (o *Orchestrator) notify(ctx context.Context, n notify.Notification) {
	notify.BestEffort(context.WithoutCancel(ctx), o.notifier, o.logger, n)
}

func (o *Orchestrator) recordReport(report Report) {
	header := fmt.Sprintf("run %s batch %s (%d executed, %d skipped)",
		shortID(report.RunID), report.Outcome, len(report.Results), len(report.Skipped))
	if report.Outcome == OutcomeHalted {
		o.journalError("%s", header)
	} else {
		o.journalInfo("%s", header)
	}
	for _, res := range report.Results {
		if res.Succeeded() {
			o.journalInfo("  ✓ %s: %s", res.Task, res.Summary)
		} else {
			o.journalError("  ✗ %s (exit %d): %s", res.Task, res.ExitCode, res.Error)
		}
	}
	for _, skip := range report.Skipped {
		o.journalWarn("  - %s skipped: %s", skip.Task, skip.Reason)
	}
}

func (o *Orchestrator) journalInfo(format string, args ...any) {
	if o.journal != nil {
		o.journal.Info(format, args...)
	}
}

func (o *Orchestrator) journalWarn(format string, args ...any) {
	if o.journal != nil {
		o.journal.Warn(format, args...)
	}
}

func (o *Orchestrator) journalError(format string, args ...any) {
	if o.journal != nil {
		o.journal.Error(format, args...)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
