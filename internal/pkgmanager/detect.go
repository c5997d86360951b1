// Package pkgmanager probes the host for a supported package manager.
package pkgmanager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AnBasement/linux-maintenance/internal/executor"
)

// Manager identifies a package manager. Its value doubles as the name of
// the manager-specific task source.
type Manager string

const (
	None   Manager = ""
	Apt    Manager = "apt"
	Dnf    Manager = "dnf"
	Pacman Manager = "pacman"
	Zypper Manager = "zypper"
)

// DefaultProbeTimeout bounds a single candidate probe.
const DefaultProbeTimeout = 5 * time.Second

// Candidates is the fixed detection order. The first candidate whose probe
// succeeds wins.
var Candidates = []Manager{Apt, Dnf, Pacman, Zypper}

// Detected reports whether a manager was found.
func (m Manager) Detected() bool {
	return m != None
}

// String returns a display name.
func (m Manager) String() string {
	if m == None {
		return "none"
	}
	return string(m)
}

// ProbeCommand returns the version-check invocation for m.
func (m Manager) ProbeCommand() []string {
	return []string{string(m), "--version"}
}

// Runner executes a probe command.
type Runner interface {
	Run(ctx context.Context, argv []string) executor.Outcome
}

// Detector probes candidates sequentially.
type Detector struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

// NewDetector creates a detector. A zero timeout uses DefaultProbeTimeout.
func NewDetector(runner Runner, timeout time.Duration, logger *zap.Logger) *Detector {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{runner: runner, timeout: timeout, logger: logger}
}

// Detect returns the first available candidate, or None. Non-zero exits,
// timeouts and missing executables all just mean "not this one".
func (d *Detector) Detect(ctx context.Context) Manager {
	for _, candidate := range Candidates {
		if d.probe(ctx, candidate) {
			d.logger.Info("detected package manager", zap.String("manager", candidate.String()))
			return candidate
		}
	}
	d.logger.Warn("no supported package manager detected")
	return None
}

func (d *Detector) probe(ctx context.Context, candidate Manager) bool {
	probeCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	outcome := d.runner.Run(probeCtx, candidate.ProbeCommand())
	if outcome.Succeeded() {
		return true
	}
	d.logger.Debug("package manager probe failed",
		zap.String("manager", candidate.String()),
		zap.Int("exit_code", outcome.ExitCode),
	)
	return false
}
