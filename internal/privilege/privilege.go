// Package privilege reports whether the process runs with elevated rights.
package privilege

import "golang.org/x/sys/unix"

// Checker answers the elevation question for the runner.
type Checker interface {
	Elevated() bool
}

// Process checks the effective user of the running process.
type Process struct{}

// Elevated reports whether the effective uid is root.
func (Process) Elevated() bool {
	return unix.Geteuid() == 0
}

// Static always returns the same answer. Useful for tests and dry runs.
type Static bool

// Elevated implements Checker.
func (s Static) Elevated() bool {
	return bool(s)
}
