package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lintel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "lintel",
	Short:         "Static analysis for Ruby and Rails code",
	Long:          `lintel walks Ruby source files and reports offenses found by its cops`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if err := setupProfiling(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
		stopProfiling()
	},
}

// exitCodeError carries a process exit code through cobra without printing.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// main registers subcommands and persistent flags and executes the root
// command. Exit status: 0 clean, 1 offenses at or above the fail level,
// 2 usage, configuration or runtime errors.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	// PersistentPostRun is skipped when RunE fails
	runTraceCleanup()
	stopProfiling()
	if err == nil {
		return 0
	}
	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(os.Stderr, "lintel: %v\n", err)
	return 2
}

func init() {
	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(copsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lspCmd)

	registerRootFlags(rootCmd)
}

// registerRootFlags adds the global flags shared by every command.
func registerRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().Bool("timings", false, "show timing information")
	cmd.PersistentFlags().Int("max-offenses", 0, "maximum number of offenses to show (0=unlimited)")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	cmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	cmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	cmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	cmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	cmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for ring mode")
	cmd.PersistentFlags().Duration("trace-heartbeat", time.Duration(0), "heartbeat interval (0 disables)")

	cmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	cmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag against the terminal state of stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}
