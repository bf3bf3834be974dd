package driver

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"lintel/internal/cop"
	"lintel/internal/cops"
	"lintel/internal/diag"
	"lintel/internal/directive"
	"lintel/internal/engine"
	"lintel/internal/frontend/ruby"
	"lintel/internal/source"
	"lintel/internal/trace"
)

// runner holds what every file of a run shares. It is read-only once built.
type runner struct {
	opts        Options
	reg         *cop.Registry
	severities  map[string]diag.Severity
	ids         []string
	fingerprint string
	directive   cop.Meta
	directives  bool // Lint/Directive is enabled
}

func newRunner(opts Options, reg *cop.Registry) *runner {
	r := &runner{
		opts:        opts,
		reg:         reg,
		severities:  opts.Config.Severities(),
		fingerprint: opts.Config.Fingerprint(),
	}
	for _, m := range reg.Metas() {
		r.ids = append(r.ids, m.ID())
	}
	for _, m := range cops.Internal() {
		if m.ID() == cops.DirectiveID {
			r.directive = m
			r.directives = opts.Config.Enabled(m) && opts.Select(m)
		}
	}
	if r.directives {
		r.ids = append(r.ids, cops.DirectiveID)
	}
	return r
}

func (r *runner) severity(meta cop.Meta) diag.Severity {
	if s, ok := r.severities[meta.ID()]; ok {
		return s
	}
	return meta.Severity
}

// registryFor narrows the registry to the cops whose own patterns accept path.
func (r *runner) registryFor(path string) *cop.Registry {
	if !r.opts.Config.HasCopPatterns() {
		return r.reg
	}
	return r.reg.Subset(func(m cop.Meta) bool {
		return r.opts.Config.AppliesTo(m.ID(), path)
	})
}

func (r *runner) file(ctx context.Context, pool *parserPool, fs *source.FileSet, fr *FileResult) error {
	file := fs.Get(fr.FileID)
	started := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeFile, file.Path)

	reg := r.registryFor(file.Path)
	key := r.key(file, reg)

	if r.opts.Cache != nil {
		var payload CachePayload
		hit, err := r.opts.Cache.Get(key, &payload)
		if err != nil {
			r.opts.Logger.Warn("ignoring unreadable cache entry", "file", file.Path, "err", err)
		}
		if hit {
			rebind(payload.Offenses, file.ID)
			fr.Bag = diag.NewBag(r.opts.MaxOffenses)
			for _, o := range payload.Offenses {
				fr.Bag.Add(o)
			}
			if payload.Truncated {
				fr.Bag.MarkTruncated()
			}
			fr.Cached, fr.Syntax, fr.Suppressed = true, payload.Syntax, payload.Suppressed
			r.opts.Logger.Debug("cache hit", "file", file.Path, "key", key.String()[:12])
			r.opts.Progress.OnEvent(Event{File: file.Path, Stage: StageAnalyze, Status: StatusCached, Elapsed: time.Since(started), Offenses: fr.Bag.Len()})
			span.WithExtra("cached", "true").End(file.Path)
			return nil
		}
	}

	if err := r.analyze(ctx, pool, fs, file, reg, fr); err != nil {
		r.opts.Progress.OnEvent(Event{File: file.Path, Stage: StageAnalyze, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		span.End(file.Path)
		return err
	}

	if r.opts.Cache != nil {
		payload := &CachePayload{
			Offenses:   fr.Bag.Items(),
			Truncated:  fr.Bag.Truncated(),
			Suppressed: fr.Suppressed,
			Syntax:     fr.Syntax,
		}
		if err := r.opts.Cache.Put(key, payload); err != nil {
			r.opts.Logger.Warn("failed to write cache entry", "file", file.Path, "err", err)
		}
	}

	r.opts.Progress.OnEvent(Event{File: file.Path, Stage: StageAnalyze, Status: StatusDone, Elapsed: time.Since(started), Offenses: fr.Bag.Len()})
	span.WithExtra("offenses", strconv.Itoa(fr.Bag.Len())).End(file.Path)
	return nil
}

func (r *runner) key(file *source.File, reg *cop.Registry) Key {
	ids := r.ids
	if reg != r.reg {
		ids = ids[:0:0]
		for _, m := range reg.Metas() {
			ids = append(ids, m.ID())
		}
		if r.directives {
			ids = append(ids, cops.DirectiveID)
		}
	}
	return KeyInput{
		Content:     file.Hash,
		Config:      r.fingerprint,
		Cops:        ids,
		Version:     r.opts.Version,
		MaxOffenses: r.opts.MaxOffenses,
	}.Key()
}

func (r *runner) analyze(ctx context.Context, pool *parserPool, fs *source.FileSet, file *source.File, reg *cop.Registry, fr *FileResult) error {
	r.opts.Progress.OnEvent(Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	parsed := time.Now()
	p, err := pool.get()
	if err != nil {
		return err
	}
	parse, err := p.Parse(ctx, file)
	pool.put(p)
	if err != nil {
		return err
	}
	r.opts.Timer.Record("parse", time.Since(parsed))

	if parse.HasErrors() {
		// По аналогии с RuboCop: файл с синтаксическими ошибками cop'ами не проверяем
		fr.Syntax = true
		fr.Bag = diag.NewBag(r.opts.MaxOffenses)
		reporter := diag.BagReporter{Bag: fr.Bag}
		for _, se := range parse.Errors {
			diag.ReportFatal(reporter, cops.SyntaxID, se.Span, se.Message).Emit()
		}
		r.opts.Logger.Debug("skipping cops on file with syntax errors", "file", file.Path, "errors", len(parse.Errors))
		return nil
	}

	r.opts.Progress.OnEvent(Event{File: file.Path, Stage: StageAnalyze, Status: StatusWorking})
	analyzed := time.Now()
	// лимит применяется после директив
	res, err := engine.Analyze(ctx, parse.Tree, reg, engine.Options{
		Severities: r.severities,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", file.Path, err)
	}
	fr.Bag = res.Bag

	comments := make([]source.Span, len(parse.Comments))
	for i, c := range parse.Comments {
		comments[i] = c.Span
	}
	dirs := directive.Scan(file, fs, comments)
	fr.Suppressed = dirs.Apply(fr.Bag, fs)
	if r.directives {
		reporter := diag.BagReporter{Bag: fr.Bag}
		for _, u := range dirs.Unknown(func(id string) bool { return cops.Known(r.opts.Registry, id) || cops.KnownDepartment(r.opts.Registry, id) }) {
			msg := fmt.Sprintf(r.directive.Message, u.Name)
			diag.NewReportBuilder(reporter, r.severity(r.directive), cops.DirectiveID, u.Span, msg).
				Safe(r.directive.Safe).
				Emit()
		}
	}
	fr.Bag.Truncate(r.opts.MaxOffenses)
	r.opts.Timer.Record("cops", time.Since(analyzed))
	return nil
}

// parserPool hands out at most one tree-sitter parser per worker. Parsers are
// created lazily and closed together at the end of the run.
type parserPool struct {
	mu   sync.Mutex
	free []*ruby.Parser
	all  []*ruby.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{free: make([]*ruby.Parser, 0, size)}
}

func (p *parserPool) get() (*ruby.Parser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		ps := p.free[n-1]
		p.free = p.free[:n-1]
		return ps, nil
	}
	ps, err := ruby.NewParser()
	if err != nil {
		return nil, err
	}
	p.all = append(p.all, ps)
	return ps, nil
}

func (p *parserPool) put(ps *ruby.Parser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, ps)
}

func (p *parserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ps := range p.all {
		ps.Close()
	}
	p.all, p.free = nil, nil
}
