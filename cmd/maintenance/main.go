// cmd/maintenance/main.go
//
// This is the entry point for the maintenance runner.
//
// Flow:
// 1. Load config.yaml (or defaults) and open the log and journal
// 2. Detect the package manager and build the task catalog
// 3. Either run the auto-safe batch (--auto), print the catalog (--list),
//    run the self test (--self-test) or start the interactive menu

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/AnBasement/linux-maintenance/internal/catalog"
	"github.com/AnBasement/linux-maintenance/internal/config"
	"github.com/AnBasement/linux-maintenance/internal/executor"
	"github.com/AnBasement/linux-maintenance/internal/hostinfo"
	"github.com/AnBasement/linux-maintenance/internal/journal"
	"github.com/AnBasement/linux-maintenance/internal/logging"
	"github.com/AnBasement/linux-maintenance/internal/notify"
	"github.com/AnBasement/linux-maintenance/internal/orchestrator"
	"github.com/AnBasement/linux-maintenance/internal/pkgmanager"
	"github.com/AnBasement/linux-maintenance/internal/privilege"
	"github.com/AnBasement/linux-maintenance/internal/report"
	"github.com/AnBasement/linux-maintenance/internal/tui"
	"github.com/AnBasement/linux-maintenance/internal/version"
	"github.com/AnBasement/linux-maintenance/tasks"
)

// exitCode carries a process exit status without an error message.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitCode) ExitCode() int { return int(e) }

const exitBatchHalted exitCode = 2

func main() {
	if err := run(os.Args[1:]); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	auto       bool
	list       bool
	selfTest   bool
	verbose    bool
	initConfig bool
	version    bool
	configPath string
	tasksDir   string
}

func parseFlags(args []string) (*flags, *pflag.FlagSet, error) {
	var f flags
	flagSet := pflag.NewFlagSet("maintenance", pflag.ContinueOnError)
	flagSet.BoolVarP(&f.auto, "auto", "a", false, "run every auto-safe task without prompting, halting on the first failure")
	flagSet.BoolVarP(&f.list, "list", "l", false, "print the task catalog and exit")
	flagSet.BoolVar(&f.selfTest, "self-test", false, "run commands with known outcomes to check execution and notifications")
	flagSet.BoolVar(&f.verbose, "verbose", false, "mirror log entries to stderr")
	flagSet.BoolVar(&f.initConfig, "init-config", false, "write a commented default config file and exit")
	flagSet.BoolVarP(&f.version, "version", "v", false, "print version information and exit")
	flagSet.StringVarP(&f.configPath, "config", "c", "", "path to config.yaml (default: search XDG config dir, then /etc)")
	flagSet.StringVar(&f.tasksDir, "tasks-dir", "", "directory holding task sources (overrides tasks_dir)")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetOutput(os.Stderr)

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return &f, flagSet, nil
}

func run(args []string) error {
	f, flagSet, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if f.version {
		fmt.Println(version.Full())
		return nil
	}
	if f.initConfig {
		return writeConfig(f.configPath)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.tasksDir != "" {
		cfg.TasksDir = f.tasksDir
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger, err := openLogger(cfg, f.verbose)
	if err != nil {
		return err
	}
	defer logger.Close()

	lb, err := journal.New(cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := hostinfo.Collect()
	logger.Info("maintenance runner started",
		zap.String("version", version.Version),
		zap.String("host", host.Describe()),
		zap.String("disk", host.DiskSummary()),
		zap.String("config", cfg.Path),
	)

	exec := executor.New(logger.Named("executor"))
	orch := orchestrator.New(orchestrator.Options{
		Runner:     exec,
		Notifier:   newNotifier(cfg),
		Privileges: privilege.Process{},
		Journal:    lb,
		Logger:     logger.Named("orchestrator"),
	})

	if f.selfTest {
		fmt.Println(report.SelfTest(orch.SelfTest(ctx)))
		return nil
	}

	detector := pkgmanager.NewDetector(exec, cfg.Detection.ProbeTimeout, logger.Named("detect"))
	manager := detector.Detect(ctx)

	cat, err := catalog.NewLoader(taskSources(cfg), logger.Named("catalog")).LoadAll(manager)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			fmt.Println(report.Panel(report.KindError, "No tasks", "No maintenance tasks are available on this system. Check the task sources and the log file."))
			logger.Error("no tasks loaded", zap.String("manager", manager.String()))
			return exitCode(1)
		}
		return err
	}

	header := report.Header(host.Describe(), manager.String())
	switch {
	case f.list:
		fmt.Println(header)
		fmt.Println(report.Catalog(cat.Tasks()))
		return nil

	case f.auto:
		fmt.Println(header)
		rep := orch.RunBatch(ctx, cat.Tasks(), func(p orchestrator.Progress) {
			fmt.Printf("→ Task %d of %d: %s\n", p.Index, p.Total, p.Task.Name)
		})
		fmt.Println(report.Results(rep))
		if rep.Outcome == orchestrator.OutcomeHalted {
			return exitBatchHalted
		}
		return nil
	}

	if !interactive {
		return fmt.Errorf("interactive mode requires a terminal; use --auto or --list")
	}
	program := tea.NewProgram(
		tui.NewApp(tui.Options{
			Catalog:      cat,
			Orchestrator: orch,
			Journal:      lb,
			Host:         host.Describe(),
		}),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func openLogger(cfg *config.Config, verbose bool) (*logging.Logger, error) {
	opts := logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level}
	if verbose {
		opts.Console = os.Stderr
		opts.ConsoleLevel = "debug"
	}
	logger, err := logging.New(opts)
	if err == nil {
		return logger, nil
	}
	// An unwritable log file should not stop maintenance; fall back to stderr.
	fmt.Fprintf(os.Stderr, "warning: %v; logging to stderr\n", err)
	return logging.New(logging.Options{Console: os.Stderr, ConsoleLevel: "warn"})
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.NotificationsEnabled() {
		return notify.Nop{}
	}
	return notify.NewDesktop(cfg.Notifications.AppName, cfg.Notifications.Timeout)
}

func taskSources(cfg *config.Config) fs.FS {
	if cfg.UsesBuiltinTasks() {
		return tasks.FS
	}
	return os.DirFS(cfg.TasksDir)
}

func writeConfig(path string) error {
	if path == "" {
		path = config.SearchPaths()[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `maintenance: run routine maintenance tasks for this Linux system.

Tasks come from base.json, the detected package manager's source
(apt.json, dnf.json, pacman.json or zypper.json) and optional.json.
Without flags an interactive menu opens; --auto runs every auto-safe
task in order and stops at the first failure.

Usage:
  maintenance [flags]

Exit status:
  0  success
  1  fatal error or no tasks available
  2  an auto-safe batch halted on a failing task

Flags:
`)
	flagSet.PrintDefaults()
}
