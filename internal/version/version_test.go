package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })
	Version, GitCommit = "1.2.3", "abc1234"

	if got := Info(); !strings.HasPrefix(got, "linux-maintenance 1.2.3 (abc1234,") {
		t.Fatalf("Info() = %q", got)
	}
	if full := Full(); !strings.Contains(full, "Platform:") {
		t.Fatalf("Full() = %q", full)
	}
}
