package rails

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintel/internal/cop"
	"lintel/internal/diag"
	"lintel/internal/engine"
	"lintel/internal/frontend/ruby"
	"lintel/internal/source"
)

type found struct {
	Line, Col uint32
	Text      string
	Message   string
}

func run(t *testing.T, src string) []found {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("some_class.rb", []byte(src)))
	parsed, err := ruby.Parse(t.Context(), file)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.HasErrors() {
		t.Fatalf("unexpected syntax errors: %+v", parsed.Errors)
	}

	reg := cop.NewRegistry()
	reg.MustRegister(ModuleLevelRelativeDate{})
	reg.Freeze()
	res, err := engine.Analyze(t.Context(), parsed.Tree, reg, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var out []found
	for _, o := range res.Offenses() {
		if o.Severity != diag.SevWarning {
			t.Errorf("severity = %s, want warning", o.Severity)
		}
		start, _ := fs.Resolve(o.Primary)
		out = append(out, found{Line: start.Line, Col: start.Col, Text: fs.Text(o.Primary), Message: o.Message})
	}
	return out
}

const msgNow = "Do not use `Time.zone.now` at the module level as it will be evaluated only once."

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []found
	}{
		{
			name: "passed to a dsl method",
			src:  "class SomeClass\n  validates_comparison_of :published_at, less_than: Time.zone.now\nend\n",
			want: []found{{Line: 2, Col: 53, Text: "Time.zone.now", Message: msgNow}},
		},
		{
			name: "assigned to a constant",
			src:  "class SomeClass\n  TODAY = Time.zone.now\nend\n",
			want: []found{{Line: 2, Col: 11, Text: "Time.zone.now", Message: msgNow}},
		},
		{
			name: "assigned to a class variable",
			src:  "class SomeClass\n  @@today = Time.zone.now\nend\n",
			want: []found{{Line: 2, Col: 13, Text: "Time.zone.now", Message: msgNow}},
		},
		{
			name: "within a method",
			src:  "class SomeClass\n  def legal_method\n    Time.zone.now\n  end\nend\n",
		},
		{
			name: "lambda assigned to a class variable",
			src:  "class SomeClass\n  @@today = -> { Time.zone.now }\nend\n",
		},
		{
			name: "lambda passed to a dsl method",
			src:  "class SomeClass\n  validates_comparison_of :published_at, less_than: -> { Time.zone.now }\nend\n",
		},
		{
			name: "lambda in a module",
			src:  "module SomeModule\n  validates_comparison_of :published_at, less_than: -> { Time.zone.now }\nend\n",
		},
		{
			name: "block in class body",
			src:  "class SomeClass\n  scope :recent, lambda { where(created_at: 1.day.ago) }\n  before_save { self.stamped_at = Time.current.since(1) }\nend\n",
		},
		{
			name: "class nested in a method",
			src:  "def build\n  Class.new do\n  end\n  class Inner\n    STAMP = 2.days.ago\n  end\nend\n",
			want: []found{{Line: 5, Col: 13, Text: "2.days.ago", Message: "Do not use `2.days.ago` at the module level as it will be evaluated only once."}},
		},
		{
			name: "singleton method",
			src:  "class SomeClass\n  def self.today\n    Date.yesterday\n  end\nend\n",
		},
		{
			name: "singleton class body",
			src:  "class SomeClass\n  class << self\n    START = Date.tomorrow\n  end\nend\n",
			want: []found{{Line: 3, Col: 13, Text: "Date.tomorrow", Message: "Do not use `Date.tomorrow` at the module level as it will be evaluated only once."}},
		},
		{
			name: "top level",
			src:  "STARTED_AT = Time.zone.now\n",
		},
		{
			name: "chain split with leading dots",
			src:  "class SomeClass\n  TODAY = Time\n    .zone\n    .now\nend\n",
			want: []found{{Line: 2, Col: 11, Text: "Time\n    .zone\n    .now", Message: msgNow}},
		},
		{
			name: "chain split with trailing dots",
			src:  "class SomeClass\n  TODAY = Time.\n    zone.\n    now\nend\n",
			want: []found{{Line: 2, Col: 11, Text: "Time.\n    zone.\n    now", Message: msgNow}},
		},
		{
			name: "safe navigation in module",
			src:  "module Clock\n  NOW = config&.now\nend\n",
			want: []found{{Line: 2, Col: 9, Text: "config&.now", Message: "Do not use `config&.now` at the module level as it will be evaluated only once."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, tt.src)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("offenses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeTwiceGivesSameOffenses(t *testing.T) {
	src := "class A\n  X = Time.now\n  Y = 1.day.ago\n  def z; Time.now; end\nend\n"
	first := run(t, src)
	if len(first) != 2 {
		t.Fatalf("expected 2 offenses, got %d", len(first))
	}
	if diff := cmp.Diff(first, run(t, src)); diff != "" {
		t.Errorf("second run differs:\n%s", diff)
	}
}
