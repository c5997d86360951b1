package privilege

import (
	"os"
	"testing"
)

func TestProcessMatchesEffectiveUID(t *testing.T) {
	want := os.Geteuid() == 0
	if got := (Process{}).Elevated(); got != want {
		t.Fatalf("Elevated() = %v, want %v", got, want)
	}
}

func TestStatic(t *testing.T) {
	if !Static(true).Elevated() || Static(false).Elevated() {
		t.Fatalf("static checker returned the wrong answer")
	}
}
