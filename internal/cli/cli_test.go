package cli

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	got, err := parseDay("2024-03-02")
	if err != nil || !got.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("parseDay(date) = %v, %v", got, err)
	}
	got, err = parseDay("2024-03-02T12:00:00Z")
	if err != nil || got.Hour() != 12 {
		t.Fatalf("parseDay(rfc3339) = %v, %v", got, err)
	}
	if _, err := parseDay("yesterday"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"run": false, "show": false, "export": false, "backfill": false, "simulate-alert": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
	if f := exportCmd.Flags().Lookup("source"); f == nil || f.DefValue != "live" {
		t.Fatalf("export --source default = %v", f)
	}
}
