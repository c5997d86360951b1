package catalog

import (
	"github.com/AnBasement/linux-maintenance/internal/pkgmanager"
	"github.com/AnBasement/linux-maintenance/internal/task"
)

// Catalog is the immutable, ordered set of tasks for one run. Its order
// defines menu numbering and the default execution order.
type Catalog struct {
	manager pkgmanager.Manager
	tasks   []task.Task
}

// New builds a catalog from tasks, copying them.
func New(manager pkgmanager.Manager, tasks []task.Task) *Catalog {
	return &Catalog{manager: manager, tasks: cloneTasks(tasks)}
}

// Manager returns the package manager the catalog was assembled for.
func (c *Catalog) Manager() pkgmanager.Manager {
	return c.manager
}

// Len returns the number of tasks.
func (c *Catalog) Len() int {
	return len(c.tasks)
}

// Task returns the task at index i and whether it exists.
func (c *Catalog) Task(i int) (task.Task, bool) {
	if i < 0 || i >= len(c.tasks) {
		return task.Task{}, false
	}
	return c.tasks[i].Clone(), true
}

// Tasks returns a copy of every task in catalog order.
func (c *Catalog) Tasks() []task.Task {
	return cloneTasks(c.tasks)
}

// AutoSafe returns the tasks flagged for unattended runs, in catalog order.
func (c *Catalog) AutoSafe() []task.Task {
	return FilterAutoSafe(c.tasks)
}

// FilterAutoSafe keeps the auto-safe tasks of tasks, preserving order.
func FilterAutoSafe(tasks []task.Task) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.AutoSafe {
			out = append(out, t.Clone())
		}
	}
	return out
}

func cloneTasks(tasks []task.Task) []task.Task {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
