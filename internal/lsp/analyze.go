package lsp

import (
	"context"
	"path/filepath"

	"lintel/internal/config"
	"lintel/internal/cops"
	"lintel/internal/driver"
)

// AnalyzeFunc lints one open document. text is the editor buffer and
// replaces the file content on disk. A nil result publishes no offenses.
type AnalyzeFunc func(ctx context.Context, path, text string) (*driver.Result, error)

// Analyze is the default AnalyzeFunc: it discovers the configuration next to
// path and runs every enabled cop over the buffer. Files excluded by the
// configuration get no offenses.
func Analyze(ctx context.Context, path, text string) (*driver.Result, error) {
	cfg, err := config.Discover(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	reg := cops.Default()
	if err := cfg.Validate(func(id string) bool { return cops.Known(reg, id) }); err != nil {
		return nil, err
	}
	if cfg.Excluded(path) {
		return nil, nil
	}
	return driver.Check(ctx, []string{path}, driver.Options{
		Config:   cfg,
		Registry: reg,
		Jobs:     1,
		Overlay:  map[string][]byte{path: []byte(text)},
	})
}
