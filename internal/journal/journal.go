// Package journal keeps a human readable history of maintenance runs next
// to the structured log, so the last results survive the terminal session.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

const (
	// maxMessageBytes caps a folded entry so one noisy stderr cannot bloat
	// the file.
	maxMessageBytes = 4 << 10
	// maxLineBytes bounds how much of one line is kept when reading.
	// Longer lines are cut, not skipped.
	maxLineBytes = 8 << 10
)

// Journal appends run history to a plain text file.
type Journal struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a journal that writes to path, creating parent directories.
func New(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: ensure dir: %w", err)
	}
	return &Journal{path: path, now: time.Now}, nil
}

// Path returns the file backing this journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Append writes a single entry. Multi-line messages are folded onto one
// line so Tail stays line oriented.
func (j *Journal) Append(level Level, message string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	message = capMessage(strings.Join(strings.Fields(strings.ReplaceAll(message, "\n", " ⏎ ")), " "))
	line := fmt.Sprintf("%s %-5s %s\n",
		j.now().UTC().Format(time.RFC3339),
		string(level),
		message,
	)
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent entries and the total
// number of entries in the journal.
func (j *Journal) Tail(maxLines int) ([]string, int) {
	if j == nil || maxLines <= 0 {
		return nil, 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	file, err := os.Open(j.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	lines, err := readLines(file)
	if err != nil {
		lines = append(lines, fmt.Sprintf("(journal unreadable past this point: %v)", err))
	}
	total := len(lines)
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}

// Info appends an informational entry.
func (j *Journal) Info(format string, args ...any) {
	j.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (j *Journal) Warn(format string, args ...any) {
	j.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (j *Journal) Error(format string, args ...any) {
	j.Append(LevelError, fmt.Sprintf(format, args...))
}

func capMessage(message string) string {
	if len(message) <= maxMessageBytes {
		return message
	}
	return cutAtRune(message, maxMessageBytes) + "…"
}

// cutAtRune shortens s to at most n bytes without splitting a rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// readLines splits r into lines of any length, keeping at most
// maxLineBytes of each.
func readLines(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	var lines []string
	var current []byte
	cut := false
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, err
		}
		if room := maxLineBytes - len(current); room > 0 {
			if len(chunk) > room {
				chunk, cut = chunk[:room], true
			}
			current = append(current, chunk...)
		} else {
			cut = true
		}
		if isPrefix {
			continue
		}
		line := string(current)
		if cut {
			line = cutAtRune(line, len(line)-utf8.UTFMax) + "…"
		}
		lines = append(lines, line)
		current, cut = current[:0], false
	}
}
