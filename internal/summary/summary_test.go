package summary

import (
	"testing"

	"github.com/AnBasement/linux-maintenance/internal/task"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		family task.Family
		stdout string
		want   string
	}{
		{
			name:   "update known phrasing is unchanged",
			family: task.FamilyUpdate,
			stdout: "3 packages can be upgraded.",
			want:   "3 packages can be upgraded.",
		},
		{
			name:   "update empty output",
			family: task.FamilyUpdate,
			stdout: "",
			want:   Placeholder,
		},
		{
			name:   "update picks matching line",
			family: task.FamilyUpdate,
			stdout: "Hit:1 http://archive.ubuntu.com noble InRelease\nReading package lists...\n  All packages are up to date.  \nDone",
			want:   "All packages are up to date.",
		},
		{
			name:   "update falls back to last non-empty line",
			family: task.FamilyUpdate,
			stdout: "Get:1 http://example\nFetched 2 MB in 1s\n\n",
			want:   "Fetched 2 MB in 1s",
		},
		{
			name:   "upgrade tally line",
			family: task.FamilyUpgrade,
			stdout: "Calculating upgrade...\n2 upgraded, 1 newly installed, 0 to remove and 0 not upgraded.\nSetting up foo",
			want:   "2 upgraded, 1 newly installed, 0 to remove and 0 not upgraded.",
		},
		{
			name:   "upgrade nothing to do",
			family: task.FamilyUpgrade,
			stdout: "Reading state information...\nNo packages will be upgraded.",
			want:   "No packages will be upgraded.",
		},
		{
			name:   "upgrade fallback",
			family: task.FamilyUpgrade,
			stdout: "Nothing to do.\nComplete!",
			want:   "Complete!",
		},
		{
			name:   "upgrade empty",
			family: task.FamilyUpgrade,
			stdout: "   ",
			want:   Placeholder,
		},
		{
			name:   "remove collects lines",
			family: task.FamilyRemove,
			stdout: "Removing foo\nfoo removed\nbar\nbaz REMOVED",
			want:   "foo removed\nbaz REMOVED",
		},
		{
			name:   "remove without matches",
			family: task.FamilyRemove,
			stdout: "0 upgraded, 0 newly installed, 0 to remove",
			want:   Placeholder,
		},
		{
			name:   "generic returns trimmed output",
			family: task.FamilyGeneric,
			stdout: "\nListing...\nfoo/noble 1.2 amd64\n",
			want:   "Listing...\nfoo/noble 1.2 amd64",
		},
		{
			name:   "generic empty",
			family: task.FamilyGeneric,
			stdout: "",
			want:   Placeholder,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Summarize(test.family, test.stdout); got != test.want {
				t.Fatalf("Summarize() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestSummarizeUnknownFamilyIsGeneric(t *testing.T) {
	if got := Summarize(task.Family("other"), " ok "); got != "ok" {
		t.Fatalf("got %q, want %q", got, "ok")
	}
}
