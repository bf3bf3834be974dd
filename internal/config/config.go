// Package config loads .lintel.toml: which files are analysed, which cops are
// enabled and at what severity.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"lintel/internal/cop"
	"lintel/internal/diag"
)

// FileName is the name looked up by Find.
const FileName = ".lintel.toml"

var (
	defaultInclude = []string{"**/*.rb", "**/*.rake", "**/*.gemspec", "**/Gemfile", "**/Rakefile", "**/config.ru"}
	defaultExclude = []string{".git/**", "node_modules/**", "vendor/**", "tmp/**"}
)

// AllCops holds the settings shared by every cop.
type AllCops struct {
	Include           []string `toml:"include"`
	Exclude           []string `toml:"exclude"`
	DisabledByDefault bool     `toml:"disabled_by_default"`
}

// CopConfig holds the settings of one cop. Nil fields keep the cop's default.
type CopConfig struct {
	Enabled  *bool          `toml:"enabled"`
	Severity *diag.Severity `toml:"severity"`
	Include  []string       `toml:"include"`
	Exclude  []string       `toml:"exclude"`
}

// Settings mirrors the file layout.
type Settings struct {
	AllCops AllCops              `toml:"all_cops"`
	Cops    map[string]CopConfig `toml:"cops"`
}

// Config is a loaded configuration. Root is the directory patterns are
// relative to.
type Config struct {
	Path     string
	Root     string
	Settings Settings
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	return &Config{Root: root, Settings: Settings{Cops: map[string]CopConfig{}}}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest configuration above startDir, or the default
// rooted at startDir when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			root = filepath.Dir(root)
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load reads and validates the file at path. Cop names are checked
// separately by Validate because they depend on the registry.
func Load(path string) (*Config, error) {
	var s Settings
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if s.Cops == nil {
		s.Cops = map[string]CopConfig{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg := &Config{Path: abs, Root: filepath.Dir(abs), Settings: s}
	if err := cfg.checkPatterns(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) checkPatterns() error {
	check := func(where string, patterns []string) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("%s: invalid glob %q", where, p)
			}
		}
		return nil
	}
	if err := check("[all_cops].include", c.Settings.AllCops.Include); err != nil {
		return err
	}
	if err := check("[all_cops].exclude", c.Settings.AllCops.Exclude); err != nil {
		return err
	}
	for _, id := range c.copIDs() {
		cc := c.Settings.Cops[id]
		if err := check(fmt.Sprintf("[cops.%q].include", id), cc.Include); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("[cops.%q].exclude", id), cc.Exclude); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) copIDs() []string {
	ids := make([]string, 0, len(c.Settings.Cops))
	for id := range c.Settings.Cops {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Validate rejects cop sections that name no known cop.
func (c *Config) Validate(known func(id string) bool) error {
	var unknown []string
	for _, id := range c.copIDs() {
		if !known(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	where := c.Path
	if where == "" {
		where = "config"
	}
	return fmt.Errorf("%s: unknown cops: %s", where, strings.Join(unknown, ", "))
}

// Enabled reports whether the cop described by meta runs.
func (c *Config) Enabled(meta cop.Meta) bool {
	if cc, ok := c.Settings.Cops[meta.ID()]; ok && cc.Enabled != nil {
		return *cc.Enabled
	}
	if c.Settings.AllCops.DisabledByDefault {
		return false
	}
	return meta.EnabledByDefault
}

// Severities returns the configured severity overrides by cop ID.
func (c *Config) Severities() map[string]diag.Severity {
	out := make(map[string]diag.Severity)
	for id, cc := range c.Settings.Cops {
		if cc.Severity != nil {
			out[id] = *cc.Severity
		}
	}
	return out
}

// rel makes path relative to Root with forward slashes. Paths outside Root
// are returned cleaned and slash-separated.
func (c *Config) rel(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		if r, err := filepath.Rel(c.Root, abs); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r)
		}
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Include reports whether a file found during directory discovery should be
// analysed.
func (c *Config) Include(path string) bool {
	rel := c.rel(path)
	include := c.Settings.AllCops.Include
	if len(include) == 0 {
		include = defaultInclude
	}
	if !matchAny(include, rel) {
		return false
	}
	return !c.Excluded(path)
}

// Excluded reports whether path matches an [all_cops] exclude pattern. Files
// named explicitly on the command line are only subject to this check.
func (c *Config) Excluded(path string) bool {
	rel := c.rel(path)
	exclude := c.Settings.AllCops.Exclude
	if len(exclude) == 0 {
		exclude = defaultExclude
	}
	return matchAny(exclude, rel)
}

// AppliesTo reports whether cop id runs on path given its own include and
// exclude patterns.
func (c *Config) AppliesTo(id, path string) bool {
	cc, ok := c.Settings.Cops[id]
	if !ok {
		return true
	}
	rel := c.rel(path)
	if len(cc.Include) > 0 && !matchAny(cc.Include, rel) {
		return false
	}
	return !matchAny(cc.Exclude, rel)
}

// HasCopPatterns reports whether any cop restricts its files, in which case
// the registry must be narrowed per file.
func (c *Config) HasCopPatterns() bool {
	for _, cc := range c.Settings.Cops {
		if len(cc.Include) > 0 || len(cc.Exclude) > 0 {
			return true
		}
	}
	return false
}

// Fingerprint is a stable digest of the effective settings, used as part of
// the result cache key.
func (c *Config) Fingerprint() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.Settings); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
