// internal/tui/app.go
//
// This is the interactive menu for the maintenance runner. It uses
// bubbletea, which follows The Elm Architecture:
//
// 1. Model: the catalog, the current screen and the last results
// 2. Update: key presses and finished runs become state changes
// 3. View: renders the current screen to a string
//
// Task execution never happens inside Update. It runs in a tea.Cmd and
// reports back with a message, so the spinner keeps moving while apt works.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AnBasement/linux-maintenance/internal/catalog"
	"github.com/AnBasement/linux-maintenance/internal/journal"
	"github.com/AnBasement/linux-maintenance/internal/orchestrator"
	"github.com/AnBasement/linux-maintenance/internal/report"
	"github.com/AnBasement/linux-maintenance/internal/task"
)

// appState represents which screen we're on
type appState int

const (
	stateMenu    appState = iota // Task table
	stateRunning                 // A task, batch or self test is executing
	stateResults                 // Results of the last run
)

const logPanelLines = 5

// Options carries everything the App needs. Catalog and Orchestrator are
// required.
type Options struct {
	Catalog      *catalog.Catalog
	Orchestrator *orchestrator.Orchestrator
	Journal      *journal.Journal
	// Host is shown in the header, e.g. "ubuntu 24.04 (kernel 6.8.0)".
	Host string
}

// App is the main application model.
type App struct {
	state   appState
	catalog *catalog.Catalog
	orch    *orchestrator.Orchestrator
	journal *journal.Journal
	host    string

	ctx    context.Context
	cancel context.CancelFunc

	menu     table.Model
	spinner  spinner.Model
	updates  <-chan tea.Msg
	running  string // status line while busy
	elevated bool

	// Results of the last run; only one of these is set at a time.
	lastReport   *orchestrator.Report
	lastResult   *orchestrator.Result
	lastSelfTest []orchestrator.Result
	lastErr      error

	// logLines caches the journal tail; View must not touch the file.
	logLines []string

	statusMsg string
	width     int
	height    int
}

type taskFinishedMsg struct {
	result orchestrator.Result
	err    error
}

type batchProgressMsg orchestrator.Progress

type batchFinishedMsg struct {
	report orchestrator.Report
}

type selfTestFinishedMsg struct {
	results []orchestrator.Result
}

// NewApp creates a new App.
func NewApp(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		state:    stateMenu,
		catalog:  opts.Catalog,
		orch:     opts.Orchestrator,
		journal:  opts.Journal,
		host:     opts.Host,
		ctx:      ctx,
		cancel:   cancel,
		menu:     newMenu(opts.Catalog.Tasks()),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		elevated: opts.Orchestrator.Elevated(),
	}
	app.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	app.statusMsg = defaultStatus
	app.logInfo("Session opened · %d tasks for %s", opts.Catalog.Len(), opts.Catalog.Manager())
	app.refreshLog()
	return app
}

const defaultStatus = "enter → run task    a → run auto-safe tasks    t → self test    q → quit"

func newMenu(tasks []task.Task) table.Model {
	columns := []table.Column{
		{Title: "No.", Width: 4},
		{Title: "Task", Width: 28},
		{Title: "Description", Width: 36},
		{Title: "Command", Width: 30},
		{Title: "Flags", Width: 10},
	}
	rows := make([]table.Row, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), t.Name, t.Description, t.CommandLine(), taskFlags(t)})
	}
	menu := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF")).
		Bold(true)
	menu.SetStyles(styles)
	return menu
}

func taskFlags(t task.Task) string {
	var parts []string
	if t.AutoSafe {
		parts = append(parts, "auto")
	}
	if t.RequiresSudo {
		parts = append(parts, "sudo")
	}
	return strings.Join(parts, " ")
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.menu.SetHeight(max(3, min(a.catalog.Len()+1, msg.Height-14)))
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if a.state != stateRunning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case batchProgressMsg:
		a.running = fmt.Sprintf("Task %d of %d: %s", msg.Index, msg.Total, msg.Task.Name)
		return a, waitForUpdate(a.updates)

	case batchFinishedMsg:
		a.updates = nil
		a.showResults()
		a.refreshLog()
		a.lastReport = &msg.report
		switch msg.report.Outcome {
		case orchestrator.OutcomeHalted:
			failed, _ := msg.report.Failed()
			a.statusMsg = fmt.Sprintf("Batch halted on %q · esc → back", failed.Task)
		case orchestrator.OutcomeNothingToRun:
			a.statusMsg = "No auto-safe tasks to run · esc → back"
		default:
			a.statusMsg = "All auto-safe tasks completed · esc → back"
		}
		return a, nil

	case taskFinishedMsg:
		a.showResults()
		a.refreshLog()
		if msg.err != nil {
			a.lastErr = msg.err
			a.statusMsg = "Task not run · esc → back"
			return a, nil
		}
		a.lastResult = &msg.result
		if msg.result.Succeeded() {
			a.statusMsg = fmt.Sprintf("%s completed · esc → back", msg.result.Task)
		} else {
			a.statusMsg = fmt.Sprintf("%s failed with exit code %d · esc → back", msg.result.Task, msg.result.ExitCode)
		}
		return a, nil

	case selfTestFinishedMsg:
		a.showResults()
		a.refreshLog()
		a.lastSelfTest = msg.results
		a.statusMsg = "Self test finished · esc → back"
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.cancel()
		return a, tea.Quit
	}
	switch a.state {
	case stateRunning:
		return a, nil
	case stateResults:
		switch msg.String() {
		case "esc", "enter", "backspace":
			a.state = stateMenu
			a.statusMsg = defaultStatus
		case "q":
			a.cancel()
			return a, tea.Quit
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		a.cancel()
		return a, tea.Quit
	case "enter":
		t, ok := a.catalog.Task(a.menu.Cursor())
		if !ok {
			return a, nil
		}
		return a, a.startTask(t)
	case "a":
		return a, a.startBatch()
	case "t":
		return a, a.startSelfTest()
	}
	var cmd tea.Cmd
	a.menu, cmd = a.menu.Update(msg)
	return a, cmd
}

func (a *App) startTask(t task.Task) tea.Cmd {
	a.beginRun(fmt.Sprintf("Running %s…", t.Name))
	a.logInfo("Running task %q", t.Name)
	orch, ctx := a.orch, a.ctx
	run := func() tea.Msg {
		result, err := orch.RunTask(ctx, t)
		return taskFinishedMsg{result: result, err: err}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) startBatch() tea.Cmd {
	tasks := a.catalog.AutoSafe()
	a.beginRun(fmt.Sprintf("Preparing %d auto-safe tasks…", len(tasks)))
	updates := make(chan tea.Msg)
	a.updates = updates
	orch, ctx := a.orch, a.ctx
	go func() {
		defer close(updates)
		rep := orch.RunBatch(ctx, tasks, func(p orchestrator.Progress) {
			send(ctx, updates, batchProgressMsg(p))
		})
		send(ctx, updates, batchFinishedMsg{report: rep})
	}()
	return tea.Batch(waitForUpdate(updates), a.spinner.Tick)
}

func (a *App) startSelfTest() tea.Cmd {
	a.beginRun("Running self test…")
	orch, ctx := a.orch, a.ctx
	run := func() tea.Msg {
		return selfTestFinishedMsg{results: orch.SelfTest(ctx)}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) beginRun(status string) {
	a.state = stateRunning
	a.running = status
	a.statusMsg = "Working… ctrl+c aborts"
	a.lastReport, a.lastResult, a.lastSelfTest, a.lastErr = nil, nil, nil, nil
}

func (a *App) showResults() {
	a.state = stateResults
	a.running = ""
}

// send delivers msg unless the session has been closed.
func send(ctx context.Context, updates chan<- tea.Msg, msg tea.Msg) {
	select {
	case updates <- msg:
	case <-ctx.Done():
	}
}

// waitForUpdate relays the next message from a running batch.
func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

// View renders the UI.
func (a *App) View() string {
	sections := []string{report.Header(a.host, a.catalog.Manager().String())}
	if !a.elevated {
		sections = append(sections, report.Panel(report.KindWarning, "Not running as root",
			"Most maintenance tasks require sudo. Restart with sudo to run them."))
	}
	switch a.state {
	case stateRunning:
		sections = append(sections, fmt.Sprintf("%s %s", a.spinner.View(), a.running))
	case stateResults:
		sections = append(sections, a.renderResults())
	default:
		sections = append(sections, a.menu.View())
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderResults() string {
	switch {
	case a.lastErr != nil:
		return report.Panel(report.KindError, "Task not run", a.lastErr.Error())
	case a.lastResult != nil:
		return report.Result(*a.lastResult)
	case a.lastReport != nil:
		return report.Results(*a.lastReport)
	case a.lastSelfTest != nil:
		return report.SelfTest(a.lastSelfTest)
	}
	return ""
}

func (a *App) renderLogPanel() string {
	if len(a.logLines) == 0 {
		return ""
	}
	lines := a.logLines
	fileName := filepath.Base(a.journal.Path())
	if fileName == "." || fileName == "" {
		fileName = "journal"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) refreshLog() {
	if a.journal == nil {
		return
	}
	a.logLines, _ = a.journal.Tail(logPanelLines)
}

func (a *App) logInfo(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Info(format, args...)
}
