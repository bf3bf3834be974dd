package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lintel/internal/cop"
	"lintel/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const sample = `
[all_cops]
exclude = ["vendor/**", "db/schema.rb"]

[cops."Rails/ModuleLevelRelativeDate"]
severity = "error"
exclude = ["spec/**"]

[cops."Style/Off"]
enabled = false
`

var relDate = cop.Meta{Department: "Rails", Name: "ModuleLevelRelativeDate", EnabledByDefault: true, Severity: diag.SevWarning}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), sample)
	nested := filepath.Join(root, "app", "models")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: %v %v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("Find = %q", path)
	}
}

func TestDiscoverDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Root == "" {
		t.Errorf("unexpected default config %+v", cfg)
	}
	if !cfg.Enabled(relDate) {
		t.Error("cop enabled by default must stay enabled")
	}
	if !cfg.Include(filepath.Join(cfg.Root, "app", "models", "user.rb")) {
		t.Error("ruby files are included by default")
	}
	if cfg.Include(filepath.Join(cfg.Root, "vendor", "gems", "x.rb")) {
		t.Error("vendor is excluded by default")
	}
	if cfg.Include(filepath.Join(cfg.Root, "README.md")) {
		t.Error("non-ruby files are not included")
	}
	if !cfg.Include(filepath.Join(cfg.Root, "Gemfile")) {
		t.Error("Gemfile is included")
	}
}

func TestLoadSample(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, FileName)
	writeFile(t, path, sample)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Severities()["Rails/ModuleLevelRelativeDate"]; got != diag.SevError {
		t.Errorf("severity = %s, want error", got)
	}
	if cfg.Enabled(cop.Meta{Department: "Style", Name: "Off", EnabledByDefault: true}) {
		t.Error("Style/Off must be disabled")
	}
	if cfg.Include(filepath.Join(root, "db", "schema.rb")) {
		t.Error("db/schema.rb is excluded")
	}
	if !cfg.AppliesTo("Rails/ModuleLevelRelativeDate", filepath.Join(root, "app", "a.rb")) {
		t.Error("cop applies outside spec/")
	}
	if cfg.AppliesTo("Rails/ModuleLevelRelativeDate", filepath.Join(root, "spec", "a_spec.rb")) {
		t.Error("cop is excluded under spec/")
	}
	if !cfg.HasCopPatterns() {
		t.Error("HasCopPatterns() = false")
	}

	err = cfg.Validate(func(id string) bool { return id == "Rails/ModuleLevelRelativeDate" })
	if err == nil || !strings.Contains(err.Error(), "Style/Off") {
		t.Errorf("Validate must reject Style/Off, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad severity", "[cops.\"Rails/A\"]\nseverity = \"loud\"\n", "loud"},
		{"unknown key", "[all_cops]\nincludes = [\"**/*.rb\"]\n", "unknown keys"},
		{"bad glob", "[all_cops]\nexclude = [\"[\"]\n", "invalid glob"},
		{"broken toml", "[all_cops\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDisabledByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[all_cops]\ndisabled_by_default = true\n[cops.\"Rails/ModuleLevelRelativeDate\"]\nenabled = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Enabled(relDate) {
		t.Error("explicitly enabled cop must run")
	}
	if cfg.Enabled(cop.Meta{Department: "Lint", Name: "Other", EnabledByDefault: true}) {
		t.Error("other cops are disabled")
	}
}

func TestFingerprintChangesWithSettings(t *testing.T) {
	a := Default("/x")
	b := Default("/x")
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal settings must give equal fingerprints")
	}
	sev := diag.SevError
	b.Settings.Cops["Rails/ModuleLevelRelativeDate"] = CopConfig{Severity: &sev}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("fingerprint must change with settings")
	}
}
