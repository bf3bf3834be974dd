// Package driver runs a lint over a set of Ruby files: discovery, loading,
// parallel parse and analysis, inline directives and the result cache.
package driver

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"lintel/internal/config"
	"lintel/internal/cop"
	"lintel/internal/cops"
	"lintel/internal/diag"
	"lintel/internal/observ"
	"lintel/internal/source"
	"lintel/internal/trace"
)

// Options configure a Check run.
type Options struct {
	// Config supplies enabled state, severities and file patterns. Nil means
	// the defaults rooted at the working directory.
	Config *config.Config
	// Registry holds every known cop. Nil means cops.Default().
	Registry *cop.Registry
	// Select further narrows the cops, e.g. from --only/--except.
	Select func(cop.Meta) bool
	// Jobs bounds the number of files processed at once; 0 means GOMAXPROCS.
	Jobs int
	// MaxOffenses caps the offenses kept per file; 0 means no limit.
	MaxOffenses int
	// Cache, when set, stores and reuses per-file results.
	Cache *ResultCache
	// Overlay replaces the disk content of the named paths, e.g. unsaved
	// editor buffers or stdin.
	Overlay map[string][]byte
	// Version is mixed into cache keys.
	Version  string
	Progress ProgressSink
	Timer    *observ.Timer
	Logger   *log.Logger
}

// FileResult is the outcome for one input path.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Bag holds the offenses of the file in report order.
	Bag *diag.Bag
	// Err is set when the file could not be read.
	Err error
	// Cached is true when the result came from the result cache.
	Cached bool
	// Syntax is true when the file had syntax errors and no cop ran.
	Syntax bool
	// Suppressed counts offenses removed by inline directives.
	Suppressed int
}

// Result is the outcome of a Check run, in input order.
type Result struct {
	FileSet  *source.FileSet
	Files    []FileResult
	Registry *cop.Registry // the cops that ran
}

// Offenses returns the offenses of every file in input order.
func (r *Result) Offenses() []diag.Offense {
	var out []diag.Offense
	for i := range r.Files {
		if r.Files[i].Bag != nil {
			out = append(out, r.Files[i].Bag.Items()...)
		}
	}
	return out
}

// Bag merges the per-file bags.
func (r *Result) Bag() *diag.Bag {
	bag := diag.NewBag(0)
	for i := range r.Files {
		if r.Files[i].Bag != nil {
			bag.Merge(r.Files[i].Bag)
		}
	}
	return bag
}

// LoadErrors returns the read errors of the run.
func (r *Result) LoadErrors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Truncated reports whether any file hit the offense limit.
func (r *Result) Truncated() bool {
	for _, f := range r.Files {
		if f.Bag != nil && f.Bag.Truncated() {
			return true
		}
	}
	return false
}

// Check loads and analyses files. Unreadable files are recorded in their
// FileResult; a failing cop aborts the run with an *engine.RuleError.
func Check(ctx context.Context, files []string, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check")
	defer span.End(strconv.Itoa(len(files)) + " files")

	reg := opts.Registry.Subset(func(m cop.Meta) bool {
		return opts.Config.Enabled(m) && opts.Select(m)
	})
	r := newRunner(opts, reg)

	fs := source.NewFileSetWithBase(opts.Config.Root)
	res := &Result{
		FileSet:  fs,
		Files:    make([]FileResult, len(files)),
		Registry: reg,
	}

	// Файлы загружаем последовательно: FileSet не потокобезопасен на запись
	loadIdx := opts.Timer.Begin("load")
	for i, path := range files {
		res.Files[i].Path = path
		opts.Progress.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
		var (
			id  source.FileID
			err error
		)
		if content, ok := opts.Overlay[path]; ok {
			id = fs.AddVirtual(path, content)
		} else {
			id, err = fs.Load(path)
		}
		if err != nil {
			res.Files[i].Err = fmt.Errorf("failed to read %s: %w", path, err)
			opts.Progress.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}
		res.Files[i].FileID = id
	}
	opts.Timer.End(loadIdx, strconv.Itoa(fs.Len())+" files")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	limit := max(1, min(jobs, len(files)))
	pool := newParserPool(limit)
	defer pool.close()

	analyzeIdx := opts.Timer.Begin("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	for i := range res.Files {
		if res.Files[i].Err != nil {
			continue
		}
		g.Go(func() error {
			return r.file(trace.WithLane(gctx, uint64(i)+1), pool, fs, &res.Files[i])
		})
	}
	err := g.Wait()
	opts.Timer.End(analyzeIdx, strconv.Itoa(reg.Len())+" cops")
	if err != nil {
		return nil, err
	}
	span.WithExtra("offenses", strconv.Itoa(len(res.Offenses())))
	return res, nil
}

func withDefaults(opts Options) Options {
	if opts.Config == nil {
		opts.Config = config.Default(".")
	}
	if opts.Registry == nil {
		opts.Registry = cops.Default()
	}
	if opts.Select == nil {
		opts.Select = func(cop.Meta) bool { return true }
	}
	if opts.Progress == nil {
		opts.Progress = nopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
