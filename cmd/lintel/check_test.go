package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"lintel/internal/config"
	"lintel/internal/cop"
	"lintel/internal/cops"
	"lintel/internal/diag"
	"lintel/internal/driver"
	"lintel/internal/source"
)

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("readUIMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Error("explicit ui modes must not depend on the terminal")
	}
}

func TestParseCopList(t *testing.T) {
	reg := cops.Default()

	got, err := parseCopList(reg, " Rails/ModuleLevelRelativeDate, Lint ,,Rails/ModuleLevelRelativeDate")
	if err != nil {
		t.Fatalf("parseCopList: %v", err)
	}
	if diff := cmp.Diff([]string{"Rails/ModuleLevelRelativeDate", "Lint"}, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if got, err := parseCopList(reg, "  "); err != nil || got != nil {
		t.Errorf("empty list = %v, %v; want nil, nil", got, err)
	}
	for _, bad := range []string{"Rails/Nope", "Style"} {
		if _, err := parseCopList(reg, bad); err == nil {
			t.Errorf("parseCopList(%q) succeeded, want error", bad)
		}
	}
}

func TestNewSelector(t *testing.T) {
	reg := cops.Default()
	date := cop.Meta{Department: "Rails", Name: "ModuleLevelRelativeDate"}
	directive := cop.Meta{Department: "Lint", Name: "Directive"}

	tests := []struct {
		only, except  string
		date, lintDir bool
	}{
		{"", "", true, true},
		{"Rails", "", true, false},
		{"", "Lint/Directive", true, false},
		{"Rails,Lint", "Rails/ModuleLevelRelativeDate", false, true},
	}
	for _, tt := range tests {
		sel, err := newSelector(reg, tt.only, tt.except)
		if err != nil {
			t.Fatalf("newSelector(%q, %q): %v", tt.only, tt.except, err)
		}
		if sel(date) != tt.date || sel(directive) != tt.lintDir {
			t.Errorf("only=%q except=%q: date=%v directive=%v, want %v %v",
				tt.only, tt.except, sel(date), sel(directive), tt.date, tt.lintDir)
		}
	}

	if _, err := newSelector(reg, "", "Rails/Missing"); err == nil || !strings.Contains(err.Error(), "--except") {
		t.Errorf("unknown --except cop: err = %v", err)
	}
}

func TestExitCodeFor(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, "Rails/ModuleLevelRelativeDate", source.Span{}, "x"))

	tests := []struct {
		name       string
		bag        *diag.Bag
		loadErrors int
		failLevel  diag.Severity
		want       int
	}{
		{"clean", diag.NewBag(0), 0, diag.SevRefactor, 0},
		{"at level", bag, 0, diag.SevWarning, 1},
		{"below level", bag, 0, diag.SevError, 0},
		{"load errors win", bag, 1, diag.SevRefactor, 2},
	}
	for _, tt := range tests {
		if got := exitCodeFor(tt.bag, tt.loadErrors, tt.failLevel); got != tt.want {
			t.Errorf("%s: exitCodeFor = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCopEntriesApplyConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	off := false
	sev := diag.SevError
	cfg.Settings.Cops["Rails/ModuleLevelRelativeDate"] = config.CopConfig{Enabled: &off, Severity: &sev}

	entries := copEntries(append(cops.Default().Metas(), cops.Internal()...), cfg)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if e := entries[0]; e.ID != "Rails/ModuleLevelRelativeDate" || e.Enabled || e.Severity != diag.SevError {
		t.Errorf("rails entry = %+v", e)
	}
	if e := entries[1]; e.ID != "Lint/Syntax" || !e.Enabled || e.Severity != diag.SevFatal {
		t.Errorf("syntax entry = %+v", e)
	}

	var buf bytes.Buffer
	if err := renderCopsTable(&buf, entries, false); err != nil {
		t.Fatalf("renderCopsTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"COP", "Rails/ModuleLevelRelativeDate", "Lint/Directive", "error"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTableStyleHeaderRow(t *testing.T) {
	style := tableStyle(lipgloss.NewStyle().Bold(true), lipgloss.NewStyle())
	if !style(0, 0).GetBold() {
		t.Error("row 0 must get the header style")
	}
	if style(1, 0).GetBold() {
		t.Error("data rows must get the cell style")
	}
}

func checkedFixture(t *testing.T) (*driver.Result, []string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	if err := os.WriteFile(path, []byte("class A\n  X = Time.now\nend\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	files := []string{path}
	res, err := driver.Check(context.Background(), files, driver.Options{Config: config.Default(dir)})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return res, files
}

func TestRenderFormats(t *testing.T) {
	res, files := checkedFixture(t)

	var short bytes.Buffer
	if err := render(&short, res, files, checkFlags{format: "short"}, false); err != nil {
		t.Fatalf("render short: %v", err)
	}
	if !strings.HasPrefix(short.String(), "warning Rails/ModuleLevelRelativeDate ") ||
		!strings.Contains(short.String(), "a.rb:2:7 ") {
		t.Errorf("short output = %q", short.String())
	}

	var pretty bytes.Buffer
	if err := render(&pretty, res, files, checkFlags{format: "pretty"}, false); err != nil {
		t.Fatalf("render pretty: %v", err)
	}
	if !strings.Contains(pretty.String(), "1 file inspected, 1 offense detected") {
		t.Errorf("pretty output missing summary:\n%s", pretty.String())
	}

	var js bytes.Buffer
	if err := render(&js, res, files, checkFlags{format: "json"}, false); err != nil {
		t.Fatalf("render json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("json output is invalid: %v\n%s", err, js.String())
	}

	var sarif bytes.Buffer
	if err := render(&sarif, res, files, checkFlags{format: "sarif"}, false); err != nil {
		t.Fatalf("render sarif: %v", err)
	}
	if !strings.Contains(sarif.String(), `"version": "2.1.0"`) {
		t.Errorf("sarif output missing version:\n%s", sarif.String())
	}
}

func TestReadCheckFlagsRejectsBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"--format", "xml"},
		{"--fail-level", "loud"},
		{"--ui", "sometimes"},
	} {
		cmd := &cobra.Command{Use: "check"}
		registerCheckFlags(cmd)
		root := &cobra.Command{Use: "lintel"}
		registerRootFlags(root)
		root.AddCommand(cmd)
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatalf("parse %v: %v", args, err)
		}
		if _, err := readCheckFlags(cmd); err == nil {
			t.Errorf("readCheckFlags(%v) succeeded, want error", args)
		}
	}
}
