// Package catalog assembles the ordered list of valid tasks for this host
// from the base, package-manager-specific and optional task sources.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"

	"github.com/AnBasement/linux-maintenance/internal/pkgmanager"
	"github.com/AnBasement/linux-maintenance/internal/task"
)

const (
	// SourceBase is always loaded first.
	SourceBase = "base"
	// SourceOptional is always loaded last.
	SourceOptional = "optional"

	sourceExt = ".json"
)

// ErrEmptyCatalog is returned when no source contributed a valid task.
var ErrEmptyCatalog = errors.New("catalog: no valid tasks loaded")

// Loader reads task sources named <source>.json from a filesystem.
type Loader struct {
	fsys   fs.FS
	logger *zap.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fsys: fsys, logger: logger}
}

// LoadSource returns the valid tasks from one source in declaration order.
// Missing, unreadable and malformed sources contribute nothing; the reason
// is logged and loading continues.
func (l *Loader) LoadSource(source string) []task.Task {
	path := source + sourceExt
	log := l.logger.With(zap.String("source", path))

	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("task source not found")
			return nil
		}
		log.Error("task source unreadable", zap.Error(err))
		return nil
	}

	records, err := parseSource(data)
	if err != nil {
		log.Error("task source malformed", zap.Error(err))
		return nil
	}

	var tasks []task.Task
	for index, record := range records {
		t, err := task.FromRecord(record)
		if err != nil {
			log.Warn("invalid task skipped", zap.Int("index", index), zap.String("reason", err.Error()))
			continue
		}
		t.Source = source
		tasks = append(tasks, t)
	}
	log.Info(fmt.Sprintf("loaded %d/%d tasks", len(tasks), len(records)),
		zap.Int("valid", len(tasks)),
		zap.Int("total", len(records)),
	)
	return tasks
}

// LoadAll concatenates base, the manager-specific source (when a manager
// was detected) and optional. It returns ErrEmptyCatalog alongside an empty
// catalog when nothing valid was found.
func (l *Loader) LoadAll(manager pkgmanager.Manager) (*Catalog, error) {
	var tasks []task.Task
	tasks = append(tasks, l.LoadSource(SourceBase)...)
	if manager.Detected() {
		tasks = append(tasks, l.LoadSource(string(manager))...)
	} else {
		l.logger.Warn("skipping manager-specific tasks, no package manager detected")
	}
	tasks = append(tasks, l.LoadSource(SourceOptional)...)

	l.flagDuplicates(tasks)
	l.logger.Info(fmt.Sprintf("total tasks loaded: %d", len(tasks)),
		zap.Int("total", len(tasks)),
		zap.String("manager", manager.String()),
	)

	cat := New(manager, tasks)
	if cat.Len() == 0 {
		return cat, ErrEmptyCatalog
	}
	return cat, nil
}

func (l *Loader) flagDuplicates(tasks []task.Task) {
	seen := map[string]string{}
	for _, t := range tasks {
		if first, ok := seen[t.Name]; ok {
			l.logger.Warn("duplicate task name",
				zap.String("name", t.Name),
				zap.String("first_source", first),
				zap.String("source", t.Source),
			)
			continue
		}
		seen[t.Name] = t.Source
	}
}

// parseSource decodes a JSONC document of the form {"tasks": [...]}.
func parseSource(data []byte) ([]any, error) {
	var doc any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	object, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level must be an object")
	}
	raw, present := object["tasks"]
	if !present || raw == nil {
		return nil, nil
	}
	records, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("tasks must be a list")
	}
	return records, nil
}
