package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "journal.log")
	j, err := New(path)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	for i := 0; i < 5; i++ {
		j.Info("entry-%d", i)
	}
	lines, total := j.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestAppendFoldsMultilineMessages(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	j.Error("Remove unused packages: %s", "foo removed\nbar removed")
	lines, total := j.Tail(10)
	if total != 1 {
		t.Fatalf("expected one line, got %d: %v", total, lines)
	}
	if !strings.Contains(lines[0], "ERROR") || !strings.Contains(lines[0], "foo removed ⏎ bar removed") {
		t.Fatalf("unexpected entry %q", lines[0])
	}
}

func TestNilJournalIsSafe(t *testing.T) {
	var j *Journal
	j.Info("ignored")
	if lines, total := j.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil journal returned data")
	}
	if j.Path() != "" {
		t.Fatalf("nil journal path should be empty")
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestTailSurvivesLongStderr(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	j.Info("run 1 batch completed")
	j.Error("Upgrade packages failed: %s", strings.Repeat("E: dpkg error line\n", 4000))
	j.Info("run 2 batch completed")

	lines, total := j.Tail(5)
	if total != 3 || len(lines) != 3 {
		t.Fatalf("total = %d, lines = %d, want 3/3", total, len(lines))
	}
	if !strings.Contains(lines[2], "run 2 batch completed") {
		t.Fatalf("last entry = %q", lines[2])
	}
	if len(lines[1]) > maxMessageBytes+100 || !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("long entry should be capped, got %d bytes", len(lines[1]))
	}
}

func TestTailCutsOversizedLinesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	data := "first\n" + strings.Repeat("x", 200<<10) + "\nlast\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	j, err := New(path)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	lines, total := j.Tail(10)
	if total != 3 || lines[2] != "last" {
		t.Fatalf("total = %d, lines = %q", total, lines[len(lines)-1])
	}
	if len(lines[1]) > maxLineBytes+len("…") {
		t.Fatalf("oversized line kept %d bytes", len(lines[1]))
	}
}
