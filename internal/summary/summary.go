// Package summary reduces raw command output into a short, human readable
// line (or a few lines) per task family. The rules are heuristics over
// package manager phrasing and degrade to the last line or a placeholder
// when nothing matches.
package summary

import (
	"strings"

	"github.com/AnBasement/linux-maintenance/internal/task"
)

// Placeholder is returned when there is nothing worth showing.
const Placeholder = "-"

// Summarize picks the reduction rule for family and applies it to stdout.
func Summarize(family task.Family, stdout string) string {
	switch family {
	case task.FamilyUpdate:
		return Update(stdout)
	case task.FamilyUpgrade:
		return Upgrade(stdout)
	case task.FamilyRemove:
		return Remove(stdout)
	default:
		return Generic(stdout)
	}
}

// Update returns the "N packages can be upgraded" / "All packages are up to
// date" line from a package list refresh.
func Update(stdout string) string {
	lines := splitLines(stdout)
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "packages can be upgraded") ||
			strings.Contains(lower, "all packages are up to date") {
			return strings.TrimSpace(line)
		}
	}
	return lastLine(lines)
}

// Upgrade returns the "X upgraded, Y newly installed, ..." tally line.
func Upgrade(stdout string) string {
	lines := splitLines(stdout)
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "upgraded,") && strings.Contains(lower, "newly installed") {
			return strings.TrimSpace(line)
		}
		if strings.Contains(lower, "no packages will be upgraded") {
			return strings.TrimSpace(line)
		}
	}
	return lastLine(lines)
}

// Remove collects every line that mentions a removal.
func Remove(stdout string) string {
	var relevant []string
	for _, line := range splitLines(stdout) {
		if strings.Contains(strings.ToLower(line), "removed") {
			relevant = append(relevant, strings.TrimSpace(line))
		}
	}
	if len(relevant) == 0 {
		return Placeholder
	}
	return strings.Join(relevant, "\n")
}

// Generic returns the trimmed output unchanged.
func Generic(stdout string) string {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return Placeholder
	}
	return trimmed
}

func splitLines(stdout string) []string {
	if strings.TrimSpace(stdout) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(stdout, "\r\n", "\n"), "\n")
}

func lastLine(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return Placeholder
}
