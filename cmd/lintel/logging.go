package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "lintel"})

// setupLogging applies --log-level and --quiet to the CLI logger.
func setupLogging(cmd *cobra.Command) error {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var level log.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn", "warning":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	default:
		return fmt.Errorf("invalid --log-level value %q (expected debug|info|warn|error)", levelStr)
	}
	if quiet && level < log.ErrorLevel {
		level = log.ErrorLevel
	}
	logger.SetLevel(level)
	return nil
}
