// Package executor runs a single external command and reports the exit
// code and captured output streams. Missing executables and start failures
// are mapped onto synthetic exit codes so callers always get an Outcome.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// ExitNotFound is reported when argv[0] cannot be resolved.
	ExitNotFound = 127
	// ExitNotExecutable is reported when the executable exists but cannot start.
	ExitNotExecutable = 126
	// ExitTimedOut is reported when the context deadline kills the process.
	ExitTimedOut = -1
)

// benignAdvisories lists stderr fragments package managers print on every
// run that do not indicate a problem.
var benignAdvisories = []string{
	"apt does not have a stable CLI interface",
}

// Outcome is the result of one invocation.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Succeeded reports whether the command exited with status 0.
func (o Outcome) Succeeded() bool {
	return o.ExitCode == 0
}

// Executor runs commands synchronously on the caller's goroutine.
type Executor struct {
	logger *zap.Logger
}

// New creates an executor that logs every invocation to logger.
func New(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger}
}

// Run executes argv and blocks until it exits. Cancelling ctx kills the
// process; only an expired deadline is reported as ExitTimedOut.
func (e *Executor) Run(ctx context.Context, argv []string) Outcome {
	if len(argv) == 0 {
		e.logger.Error("refusing to run empty command")
		return Outcome{ExitCode: ExitNotFound, Stderr: "Command not found: "}
	}
	line := strings.Join(argv, " ")
	e.logger.Info("executing", zap.String("command", line))

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
			outcome.ExitCode = ExitTimedOut
			outcome.Stderr = fmt.Sprintf("Command timed out: %s", argv[0])
			e.logger.Warn("command timed out", zap.String("command", line), zap.Duration("after", outcome.Duration))
			return outcome
		case errors.As(err, &exitErr):
			outcome.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			message := fmt.Sprintf("Command not found: %s", argv[0])
			e.logger.Error(message)
			return Outcome{ExitCode: ExitNotFound, Stderr: message, Duration: outcome.Duration}
		default:
			message := fmt.Sprintf("Command could not be started: %s: %v", argv[0], err)
			e.logger.Error(message)
			return Outcome{ExitCode: ExitNotExecutable, Stderr: message, Duration: outcome.Duration}
		}
	}

	if outcome.Stdout != "" {
		e.logger.Info("command output", zap.String("command", line), zap.String("stdout", outcome.Stdout))
	}
	if outcome.Stderr != "" {
		if isBenign(outcome.Stderr) {
			e.logger.Info("command error output", zap.String("command", line), zap.String("stderr", outcome.Stderr))
		} else {
			e.logger.Warn("command error output", zap.String("command", line), zap.String("stderr", outcome.Stderr))
		}
	}

	if outcome.ExitCode != 0 {
		e.logger.Error("command failed",
			zap.String("command", line),
			zap.Int("exit_code", outcome.ExitCode),
			zap.String("stderr", outcome.Stderr),
		)
		return outcome
	}
	e.logger.Info("command succeeded", zap.String("command", line), zap.Duration("duration", outcome.Duration))
	return outcome
}

func isBenign(stderr string) bool {
	for _, advisory := range benignAdvisories {
		if strings.Contains(stderr, advisory) {
			return true
		}
	}
	return false
}
