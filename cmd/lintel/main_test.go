package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	dirty := filepath.Join(dir, "dirty.rb")
	clean := filepath.Join(dir, "clean.rb")
	if err := os.WriteFile(dirty, []byte("module M\n  LIMIT = 3.days.ago\nend\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(clean, []byte("module M\n  def self.limit\n    3.days.ago\n  end\nend\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"offense", []string{"check", "--format", "short", "--ui", "off", dirty}, 1},
		{"clean", []string{"check", "--format", "short", "--ui", "off", clean}, 0},
		{"missing file", []string{"check", "--format", "short", "--ui", "off", filepath.Join(dir, "gone.rb")}, 2},
		{"unknown cop", []string{"check", "--format", "short", "--ui", "off", "--only", "Rails/Nope", clean}, 2},
	}
	for _, tt := range tests {
		if got := run(tt.args); got != tt.want {
			t.Errorf("%s: run(%v) = %d, want %d", tt.name, tt.args, got, tt.want)
		}
		// cobra keeps flag values between executions
		if err := checkCmd.Flags().Set("only", ""); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExitCodeError(t *testing.T) {
	var err error = &exitCodeError{code: 1}
	var exit *exitCodeError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("errors.As(%v) = %v", err, exit)
	}
	if err.Error() != "exit status 1" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRunCheckStdin(t *testing.T) {
	cmd := rootCmd
	cmd.SetIn(strings.NewReader("class Stdin\n  AT = Time.now\nend\n"))
	defer cmd.SetIn(nil)

	path := filepath.Join(t.TempDir(), "stdin.rb")
	args := []string{"check", "--format", "short", "--ui", "off", "--stdin", path}
	if got := run(args); got != 1 {
		t.Errorf("run(%v) = %d, want 1", args, got)
	}
	if err := checkCmd.Flags().Set("stdin", ""); err != nil {
		t.Fatal(err)
	}
}
