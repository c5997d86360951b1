// internal/report/report.go
//
// Rendering of the task catalog and run results for the terminal. Both the
// interactive view and the non-interactive --auto/--list modes print through
// here, so the output looks the same either way.

package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AnBasement/linux-maintenance/internal/orchestrator"
	"github.com/AnBasement/linux-maintenance/internal/task"
)

// Kind selects a panel's color.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

var (
	colorAccent  = lipgloss.Color("#5B8DEF")
	colorSuccess = lipgloss.Color("#4CAF50")
	colorWarning = lipgloss.Color("#F7B801")
	colorError   = lipgloss.Color("#FF6B6B")
	colorMuted   = lipgloss.Color("#888888")
	colorBorder  = lipgloss.Color("#444444")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

// maxErrorWidth bounds the Error column; full stderr lives in the log.
const maxErrorWidth = 60

// Header renders the title line with the host description and detected
// package manager.
func Header(host, manager string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorError).Render("⚙ LINUX MAINTENANCE")
	details := mutedStyle.Render(fmt.Sprintf("%s · package manager: %s", host, manager))
	return title + "\n" + details
}

// Catalog renders the numbered task table.
func Catalog(tasks []task.Task) string {
	if len(tasks) == 0 {
		return Panel(KindWarning, "No tasks", "No maintenance tasks are available on this system.")
	}
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Name,
			t.Description,
			t.CommandLine(),
			flags(t),
		})
	}
	return newTable("No.", "Task", "Description", "Command", "Flags").Rows(rows...).String()
}

func flags(t task.Task) string {
	var parts []string
	if t.AutoSafe {
		parts = append(parts, "auto")
	}
	if t.RequiresSudo {
		parts = append(parts, "sudo")
	}
	if t.Risk != task.RiskUnset {
		parts = append(parts, string(t.Risk))
	}
	return strings.Join(parts, " ")
}

// Results renders the summary table of a batch: executed tasks, skipped
// tasks and tasks never reached after a halt.
func Results(rep orchestrator.Report) string {
	if rep.Outcome == orchestrator.OutcomeNothingToRun {
		return Panel(KindInfo, "Nothing to run", "No auto-safe tasks are available for this system.")
	}
	// Rows follow the planned order. Names can repeat, so each name keeps a
	// queue of its rows.
	byName := make(map[string][][]string, len(rep.Planned))
	for _, res := range rep.Results {
		byName[res.Task] = append(byName[res.Task], resultRow(res))
	}
	for _, skip := range rep.Skipped {
		byName[skip.Task] = append(byName[skip.Task], []string{skip.Task, "skipped", skip.Reason, ""})
	}
	rows := make([][]string, 0, len(rep.Planned))
	for _, t := range rep.Planned {
		queue := byName[t.Name]
		if len(queue) == 0 {
			rows = append(rows, []string{t.Name, "not run", "batch halted", ""})
			continue
		}
		rows = append(rows, queue[0])
		byName[t.Name] = queue[1:]
	}
	tbl := newTable("Task", "Status", "Details", "Error").Rows(rows...)
	return tbl.String() + "\n" + Footer(rep)
}

// Result renders a single task run.
func Result(res orchestrator.Result) string {
	return newTable("Task", "Status", "Details", "Error").Row(resultRow(res)...).String()
}

// SelfTest renders the probe results of a self test. Failing probes are
// expected, so there is no outcome footer.
func SelfTest(results []orchestrator.Result) string {
	tbl := newTable("Probe", "Status", "Details", "Error")
	for _, res := range results {
		tbl.Row(resultRow(res)...)
	}
	return tbl.String()
}

func resultRow(res orchestrator.Result) []string {
	status := "✓"
	if !res.Succeeded() {
		status = fmt.Sprintf("✗ (%d)", res.ExitCode)
	}
	return []string{res.Task, status, res.Summary, truncate(firstLine(res.Error), maxErrorWidth)}
}

// Footer renders the one-line outcome under a results table.
func Footer(rep orchestrator.Report) string {
	line := fmt.Sprintf("%d executed · %d skipped · %s", len(rep.Results), len(rep.Skipped), rep.Duration().Round(time.Second))
	switch rep.Outcome {
	case orchestrator.OutcomeHalted:
		failed, _ := rep.Failed()
		return lipgloss.NewStyle().Foreground(colorError).Render(fmt.Sprintf("Halted on %q · %s", failed.Task, line))
	default:
		return lipgloss.NewStyle().Foreground(colorSuccess).Render("Completed · " + line)
	}
}

// Panel renders a bordered message box.
func Panel(kind Kind, title, body string) string {
	color := colorAccent
	switch kind {
	case KindSuccess:
		color = colorSuccess
	case KindWarning:
		color = colorWarning
	case KindError:
		color = colorError
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(color).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
