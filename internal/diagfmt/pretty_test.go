package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"lintel/internal/diag"
	"lintel/internal/source"
)

const copID = "Rails/ModuleLevelRelativeDate"

func fixture(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase("/work/project")
	id := fs.AddVirtual("/work/project/app/models/a.rb", []byte("class A\n  X = Time.now\nend\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, copID, source.Span{File: id, Start: 14, End: 22},
		"Do not use `Time.now` at the module level as it will be evaluated only once."))
	return fs, bag
}

func TestPrettyPlain(t *testing.T) {
	fs, bag := fixture(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative}); err != nil {
		t.Fatal(err)
	}
	want := "app/models/a.rb:2:7: W: Rails/ModuleLevelRelativeDate: Do not use `Time.now` at the module level as it will be evaluated only once.\n" +
		"  X = Time.now\n" +
		"      ^^^^^^^^\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("plain output contains escape codes")
	}
}

func TestPrettyPathModes(t *testing.T) {
	fs, bag := fixture(t)
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/work/project/app/models/a.rb:2:7:"},
		{PathModeRelative, "app/models/a.rb:2:7:"},
		{PathModeBasename, "a.rb:2:7:"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode}); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(buf.String(), tt.want) {
			t.Errorf("mode %d: output %q does not start with %q", tt.mode, buf.String(), tt.want)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs, bag := fixture(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Color: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", buf.String())
	}
}

func TestPrettyContextAndWidth(t *testing.T) {
	fs, bag := fixture(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	want := "1 | class A\n2 |   X = Time.now\n  |       ^^^^^^^^\n"
	if got := buf.String(); !strings.HasSuffix(got, want) {
		t.Errorf("context output:\n%s\nwant suffix:\n%s", got, want)
	}

	buf.Reset()
	if err := Pretty(&buf, bag, fs, PrettyOpts{Width: 8, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	if want := "  X = T…\n      ^^\n"; !strings.HasSuffix(buf.String(), want) {
		t.Errorf("clipped output:\n%q\nwant suffix %q", buf.String(), want)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("w.rb", []byte("# 日本\nY = '日本' + Time.now\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, copID, source.Span{File: id, Start: 24, End: 32}, "m"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	want := "Y = '日本' + Time.now\n" + strings.Repeat(" ", 13) + "^^^^^^^^\n"
	if !strings.HasSuffix(buf.String(), want) {
		t.Errorf("underline misaligned:\n%s\nwant suffix:\n%s", buf.String(), want)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs, bag := fixture(t)
	first := bag.Items()[0]
	o := first.WithNote(source.Span{File: first.Primary.File, Start: 0, End: 5}, "enclosing class")
	noted := diag.NewBag(0)
	noted.Add(o)

	var buf bytes.Buffer
	if err := Pretty(&buf, noted, fs, PrettyOpts{ShowNotes: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "  note: a.rb:1:1: enclosing class\n") {
		t.Errorf("note missing:\n%s", buf.String())
	}

	buf.Reset()
	if err := Pretty(&buf, noted, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "note:") {
		t.Error("notes printed without ShowNotes")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		files, offenses int
		want            string
	}{
		{3, 0, "\n3 files inspected, no offenses detected\n"},
		{1, 1, "\n1 file inspected, 1 offense detected\n"},
		{2, 5, "\n2 files inspected, 5 offenses detected\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Summary(&buf, tt.files, tt.offenses, false); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("Summary(%d, %d) = %q, want %q", tt.files, tt.offenses, buf.String(), tt.want)
		}
	}
}

func TestShort(t *testing.T) {
	fs, bag := fixture(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, false); err != nil {
		t.Fatal(err)
	}
	want := "warning Rails/ModuleLevelRelativeDate app/models/a.rb:2:7 Do not use `Time.now` at the module level as it will be evaluated only once.\n"
	if buf.String() != want {
		t.Errorf("Short = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Short(&buf, diag.NewBag(0), fs, false); err != nil || buf.Len() != 0 {
		t.Errorf("empty bag printed %q (err %v)", buf.String(), err)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "full": PathModeAbsolute, "relative": PathModeRelative, "basename": PathModeBasename} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePathMode(%q) = %d, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("tilde"); err == nil {
		t.Error("expected error")
	}
}
