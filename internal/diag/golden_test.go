package diag

import (
	"testing"

	"lintel/internal/source"
)

func TestFormatGoldenOffenses(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	model := fs.Add("/workspace/app/models/user.rb", []byte("a\nb\n"), 0)
	other := fs.Add("/workspace/app/models/account.rb", []byte("x\n"), 0)

	offs := []Offense{
		{
			Severity: SevWarning,
			Cop:      "Rails/ModuleLevelRelativeDate",
			Message:  "first line\nsecond",
			Primary:  source.Span{File: model, Start: 2, End: 3},
			Notes: []Note{
				{Span: source.Span{File: model, Start: 0, End: 1}, Msg: "note line"},
			},
		},
		{
			Severity: SevFatal,
			Cop:      "Lint/Syntax",
			Message:  "unexpected end",
			Primary:  source.Span{File: other, Start: 0, End: 1},
		},
	}

	expected := "fatal Lint/Syntax app/models/account.rb:1:1 unexpected end\n" +
		"note Rails/ModuleLevelRelativeDate app/models/user.rb:1:1 note line\n" +
		"warning Rails/ModuleLevelRelativeDate app/models/user.rb:2:1 first line second"

	if got := FormatGoldenOffenses(offs, fs, true); got != expected {
		t.Fatalf("unexpected golden offenses:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}

	short := "warning Rails/ModuleLevelRelativeDate app/models/user.rb:2:1 first line second\n" +
		"fatal Lint/Syntax app/models/account.rb:1:1 unexpected end"
	if got := FormatShortOffenses(offs, fs, false); got != short {
		t.Fatalf("unexpected short offenses:\nwant:\n%s\n\ngot:\n%s", short, got)
	}
}
