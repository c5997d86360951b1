package task

import (
	"errors"
	"strings"
	"testing"
)

func validRecord() map[string]any {
	return map[string]any{
		"name":        "Update package lists",
		"description": "Fetches the latest package information.",
		"command":     []any{"apt", "update"},
	}
}

func TestValidateAcceptsMinimalRecord(t *testing.T) {
	if err := Validate(validRecord()); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestValidateNamesMissingRequiredField(t *testing.T) {
	for _, key := range []string{"name", "description", "command"} {
		t.Run(key, func(t *testing.T) {
			record := validRecord()
			delete(record, key)
			err := Validate(record)
			if err == nil {
				t.Fatalf("expected rejection when %s is missing", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("reason %q does not name %s", err.Error(), key)
			}
		})
	}
}

func TestValidateRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   []string
	}{
		{
			name:   "whitespace-name",
			mutate: func(r map[string]any) { r["name"] = "   " },
			want:   []string{"name must not be empty"},
		},
		{
			name:   "numeric-description",
			mutate: func(r map[string]any) { r["description"] = 12.0 },
			want:   []string{"description must be a string", "number"},
		},
		{
			name:   "empty-command",
			mutate: func(r map[string]any) { r["command"] = []any{} },
			want:   []string{"command must not be empty"},
		},
		{
			name:   "string-command",
			mutate: func(r map[string]any) { r["command"] = "apt update" },
			want:   []string{"command must be a list", "string"},
		},
		{
			name:   "mixed-command",
			mutate: func(r map[string]any) { r["command"] = []any{"apt", 5.0} },
			want:   []string{"command[1]", "number"},
		},
		{
			name:   "string-auto-safe",
			mutate: func(r map[string]any) { r["auto_safe"] = "yes" },
			want:   []string{"auto_safe must be a boolean", "string"},
		},
		{
			name:   "numeric-requires-sudo",
			mutate: func(r map[string]any) { r["requires_sudo"] = 1.0 },
			want:   []string{"requires_sudo must be a boolean"},
		},
		{
			name:   "unknown-risk",
			mutate: func(r map[string]any) { r["risk_level"] = "extreme" },
			want:   []string{"risk_level", "{low, medium, high}"},
		},
		{
			name:   "scalar-check-command",
			mutate: func(r map[string]any) { r["check_command"] = "apt list" },
			want:   []string{"check_command must be a list"},
		},
		{
			name:   "unknown-family",
			mutate: func(r map[string]any) { r["family"] = "install" },
			want:   []string{"family must be one of"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			record := validRecord()
			test.mutate(record)
			err := Validate(record)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("expected *RejectedError, got %T", err)
			}
			for _, fragment := range test.want {
				if !strings.Contains(rejected.Reason, fragment) {
					t.Fatalf("reason %q missing %q", rejected.Reason, fragment)
				}
			}
		})
	}
}

func TestValidateChecksInOrder(t *testing.T) {
	record := validRecord()
	record["name"] = ""
	record["command"] = []any{1.0}
	err := Validate(record)
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected name failure to short-circuit, got %v", err)
	}
}

func TestFromRecordAppliesDefaults(t *testing.T) {
	got, err := FromRecord(validRecord())
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if got.AutoSafe || got.RequiresSudo {
		t.Fatalf("optional flags should default to false: %+v", got)
	}
	if got.Risk != RiskUnset {
		t.Fatalf("risk = %q, want unset", got.Risk)
	}
	if got.Family != FamilyUpdate {
		t.Fatalf("family = %q, want %q", got.Family, FamilyUpdate)
	}
	if got.CommandLine() != "apt update" {
		t.Fatalf("command line = %q", got.CommandLine())
	}
}

func TestFromRecordReadsOptionalFields(t *testing.T) {
	record := validRecord()
	record["name"] = "  List available updates  "
	record["auto_safe"] = true
	record["requires_sudo"] = true
	record["risk_level"] = "medium"
	record["check_command"] = []any{"apt", 3.0, "--simulate"}
	record["family"] = "generic"

	got, err := FromRecord(record)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if got.Name != "List available updates" {
		t.Fatalf("name should be trimmed, got %q", got.Name)
	}
	if !got.AutoSafe || !got.RequiresSudo {
		t.Fatalf("flags not read: %+v", got)
	}
	if got.Risk != RiskMedium {
		t.Fatalf("risk = %q", got.Risk)
	}
	if len(got.CheckCommand) != 2 || got.CheckCommand[1] != "--simulate" {
		t.Fatalf("check command = %v", got.CheckCommand)
	}
	if got.Family != FamilyGeneric {
		t.Fatalf("explicit family should win over inference, got %q", got.Family)
	}
}

func TestFromRecordRejectsNonObject(t *testing.T) {
	_, err := FromRecord([]any{"apt"})
	if err == nil || !strings.Contains(err.Error(), "must be an object") {
		t.Fatalf("expected object rejection, got %v", err)
	}
}

func TestInferFamily(t *testing.T) {
	cases := map[string]Family{
		"Update package lists":   FamilyUpdate,
		"UPGRADE packages":       FamilyUpgrade,
		"Remove unused packages": FamilyRemove,
		"Clean apt cache":        FamilyGeneric,
	}
	for name, want := range cases {
		if got := InferFamily(name); got != want {
			t.Fatalf("InferFamily(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := Task{Name: "x", Command: []string{"a", "b"}}
	clone := original.Clone()
	clone.Command[0] = "z"
	if original.Command[0] != "a" {
		t.Fatalf("clone shares command slice")
	}
}
