package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	if got := String(); !strings.HasPrefix(got, Version) || !strings.Contains(got, Commit) {
		t.Fatalf("String() = %q", got)
	}
	if got := UserAgent(); got != "fngtracker/"+Version {
		t.Fatalf("UserAgent() = %q", got)
	}
}
