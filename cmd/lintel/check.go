package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lintel/internal/config"
	"lintel/internal/cop"
	"lintel/internal/cops"
	"lintel/internal/diag"
	"lintel/internal/diagfmt"
	"lintel/internal/driver"
	"lintel/internal/observ"
	"lintel/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.rb|directory]...",
	Short: "Inspect Ruby source files and report offenses",
	Long:  `Inspect the given Ruby files, or every Ruby file below the given directories, and report offenses found by the enabled cops`,
	Args:  cobra.ArbitraryArgs,
	RunE:  runCheck,
}

func init() {
	registerCheckFlags(checkCmd)
}

// registerCheckFlags adds the flags read by readCheckFlags to cmd.
func registerCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("only", "", "comma-separated cops or departments to run exclusively")
	cmd.Flags().String("except", "", "comma-separated cops or departments to skip")
	cmd.Flags().String("fail-level", "refactor", "minimum severity that makes the exit status non-zero")
	cmd.Flags().String("config", "", "path to "+config.FileName+" (default: discovered from the first path)")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged files between runs")
	cmd.Flags().Bool("no-gitignore", false, "do not honour .gitignore files during discovery")
	cmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("with-notes", false, "include offense notes in output")
	cmd.Flags().String("stdin", "", "read source from stdin and report it as the given path")
}

// checkFlags holds the parsed flags of one check invocation.
type checkFlags struct {
	format      string
	jobs        int
	only        string
	except      string
	failLevel   diag.Severity
	configPath  string
	cache       bool
	noGitignore bool
	ui          uiMode
	fullPath    bool
	withNotes   bool
	stdinPath   string
	maxOffenses int
	quiet       bool
	timings     bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var (
		f   checkFlags
		err error
	)
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "short", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.only, err = cmd.Flags().GetString("only"); err != nil {
		return f, fmt.Errorf("failed to get only flag: %w", err)
	}
	if f.except, err = cmd.Flags().GetString("except"); err != nil {
		return f, fmt.Errorf("failed to get except flag: %w", err)
	}
	levelStr, err := cmd.Flags().GetString("fail-level")
	if err != nil {
		return f, fmt.Errorf("failed to get fail-level flag: %w", err)
	}
	if f.failLevel, err = diag.ParseSeverity(levelStr); err != nil {
		return f, fmt.Errorf("invalid --fail-level: %w", err)
	}
	if f.configPath, err = cmd.Flags().GetString("config"); err != nil {
		return f, fmt.Errorf("failed to get config flag: %w", err)
	}
	if f.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.noGitignore, err = cmd.Flags().GetBool("no-gitignore"); err != nil {
		return f, fmt.Errorf("failed to get no-gitignore flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiStr); err != nil {
		return f, err
	}
	if f.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.stdinPath, err = cmd.Flags().GetString("stdin"); err != nil {
		return f, fmt.Errorf("failed to get stdin flag: %w", err)
	}
	if f.maxOffenses, err = cmd.Root().PersistentFlags().GetInt("max-offenses"); err != nil {
		return f, fmt.Errorf("failed to get max-offenses flag: %w", err)
	}
	if f.maxOffenses < 0 {
		return f, fmt.Errorf("--max-offenses must not be negative")
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return f, nil
}

// runCheck executes the "check" command: it loads configuration, discovers
// files, runs the cops and renders the offenses in the chosen format.
// The returned *exitCodeError carries status 1 when an offense reaches the
// fail level and 2 when files could not be read.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	colors, err := useColor(cmd)
	if err != nil {
		return err
	}
	if flags.stdinPath != "" {
		if len(args) > 0 {
			return fmt.Errorf("--stdin does not take path arguments")
		}
		args = []string{filepath.Dir(flags.stdinPath)}
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	timer := observ.NewTimer()
	reg := cops.Default()

	cfgIdx := timer.Begin("config")
	cfg, err := loadConfig(flags.configPath, args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(func(id string) bool { return cops.Known(reg, id) }); err != nil {
		return err
	}
	timer.End(cfgIdx, cfg.Path)
	if cfg.Path != "" {
		logger.Debug("using configuration", "path", cfg.Path)
	} else {
		logger.Debug("no configuration found, using defaults", "root", cfg.Root)
	}

	sel, err := newSelector(reg, flags.only, flags.except)
	if err != nil {
		return err
	}

	var (
		files   []string
		overlay map[string][]byte
	)
	if flags.stdinPath != "" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		path := filepath.Clean(flags.stdinPath)
		files = []string{path}
		overlay = map[string][]byte{path: content}
	} else {
		discoverIdx := timer.Begin("discover")
		files, err = driver.Discover(args, cfg, driver.DiscoverOptions{NoGitignore: flags.noGitignore})
		if err != nil {
			return err
		}
		timer.End(discoverIdx, fmt.Sprintf("%d files", len(files)))
		logger.Debug("discovered files", "count", len(files))
	}

	opts := driver.Options{
		Config:      cfg,
		Registry:    reg,
		Select:      sel,
		Jobs:        flags.jobs,
		MaxOffenses: flags.maxOffenses,
		Overlay:     overlay,
		Version:     version.Version,
		Timer:       timer,
		Logger:      logger,
	}
	if flags.cache {
		rc, err := driver.OpenResultCache("lintel")
		if err != nil {
			logger.Warn("result cache disabled", "err", err)
		} else {
			logger.Debug("result cache", "dir", rc.Dir())
			opts.Cache = rc
		}
	}

	ctx := cmd.Context()
	var res *driver.Result
	if flags.format == "pretty" && !flags.quiet && flags.stdinPath == "" && shouldUseTUI(flags.ui) && hasDirectory(args) {
		res, err = runCheckWithUI(ctx, "Inspecting", files, opts)
	} else {
		res, err = driver.Check(ctx, files, opts)
	}
	if err != nil {
		dumpTrace("check failed")
		return err
	}

	for _, lerr := range res.LoadErrors() {
		logger.Error(lerr.Error())
	}

	bag := res.Bag()
	formatIdx := timer.Begin("format")
	if err := render(os.Stdout, res, files, flags, colors); err != nil {
		return err
	}
	timer.End(formatIdx, flags.format)

	if flags.timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if res.Truncated() && !flags.quiet {
		logger.Warn("offense limit reached, some offenses were not reported", "max", flags.maxOffenses)
	}

	if code := exitCodeFor(bag, len(res.LoadErrors()), flags.failLevel); code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// loadConfig reads --config when given, otherwise discovers the nearest
// configuration above start.
func loadConfig(path, start string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(start)
}

func render(w io.Writer, res *driver.Result, files []string, flags checkFlags, colors bool) error {
	bag := res.Bag()
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch flags.format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:     colors,
			PathMode:  pathMode,
			Width:     terminalWidth(os.Stdout),
			ShowNotes: flags.withNotes,
		}
		if err := diagfmt.Pretty(w, bag, res.FileSet, opts); err != nil {
			return err
		}
		if flags.quiet {
			return nil
		}
		return diagfmt.Summary(w, len(files), bag.Len(), colors)
	case "short":
		return diagfmt.Short(w, bag, res.FileSet, flags.withNotes)
	case "json":
		return diagfmt.JSON(w, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     flags.withNotes,
			Files:            files,
			Version:          version.Version,
		})
	case "sarif":
		rules := append(res.Registry.Metas(), cops.Internal()...)
		return diagfmt.Sarif(w, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "lintel",
			ToolVersion:    version.Version,
			InformationURI: "https://docs.rubocop.org/rubocop-rails/cops_rails.html",
			InvocationArgs: os.Args,
			Rules:          rules,
			PathMode:       pathMode,
		})
	default:
		return fmt.Errorf("unknown format: %s", flags.format)
	}
}

// exitCodeFor maps a finished run to the process exit status.
func exitCodeFor(bag *diag.Bag, loadErrors int, failLevel diag.Severity) int {
	switch {
	case loadErrors > 0:
		return 2
	case bag.HasAtLeast(failLevel):
		return 1
	default:
		return 0
	}
}

// newSelector builds the --only/--except filter. Entries are qualified cop
// names or department names; anything else is an error.
func newSelector(reg *cop.Registry, only, except string) (func(cop.Meta) bool, error) {
	onlyList, err := parseCopList(reg, only)
	if err != nil {
		return nil, fmt.Errorf("--only: %w", err)
	}
	exceptList, err := parseCopList(reg, except)
	if err != nil {
		return nil, fmt.Errorf("--except: %w", err)
	}
	return func(m cop.Meta) bool {
		if len(onlyList) > 0 && !matchesCop(onlyList, m) {
			return false
		}
		return !matchesCop(exceptList, m)
	}, nil
}

func parseCopList(reg *cop.Registry, value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if strings.Contains(name, "/") {
			if !cops.Known(reg, name) {
				return nil, fmt.Errorf("unknown cop %q", name)
			}
		} else if !cops.KnownDepartment(reg, name) {
			return nil, fmt.Errorf("unknown cop or department %q", name)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func matchesCop(list []string, m cop.Meta) bool {
	return slices.Contains(list, m.ID()) || slices.Contains(list, m.Department)
}

func hasDirectory(paths []string) bool {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func terminalWidth(f *os.File) uint16 {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	width, err := safecast.Conv[uint16](w)
	if err != nil {
		return 0
	}
	return width
}
