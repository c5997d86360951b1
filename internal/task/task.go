// Package task defines the declarative maintenance operations loaded from
// task sources and the validator that guards them.
package task

import (
	"strings"
)

// RiskLevel is informational metadata attached to a task.
type RiskLevel string

const (
	RiskUnset  RiskLevel = ""
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Family selects how a task's output is reduced into a summary.
type Family string

const (
	FamilyUpdate  Family = "update"
	FamilyUpgrade Family = "upgrade"
	FamilyRemove  Family = "remove"
	FamilyGeneric Family = "generic"
)

var families = []Family{FamilyUpdate, FamilyUpgrade, FamilyRemove, FamilyGeneric}

// InferFamily maps a task name onto a family using case-insensitive keyword
// matching. Keywords are checked in a fixed order so "update" wins over
// "upgrade" when both appear.
func InferFamily(name string) Family {
	lower := strings.ToLower(name)
	for _, family := range []Family{FamilyUpdate, FamilyUpgrade, FamilyRemove} {
		if strings.Contains(lower, string(family)) {
			return family
		}
	}
	return FamilyGeneric
}

// Task is a single declarative maintenance operation.
type Task struct {
	Name         string
	Description  string
	Command      []string
	AutoSafe     bool
	RequiresSudo bool
	Risk         RiskLevel
	// CheckCommand is a read-only probe reserved for dry runs. It is never
	// executed by the runner.
	CheckCommand []string
	Family       Family
	// Source names the task source the record was loaded from.
	Source string
}

// CommandLine returns the argv joined for display.
func (t Task) CommandLine() string {
	return strings.Join(t.Command, " ")
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	clone := t
	clone.Command = cloneStrings(t.Command)
	clone.CheckCommand = cloneStrings(t.CheckCommand)
	return clone
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
