package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lintel/internal/lsp"
	"lintel/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Serve offenses to editors over the Language Server Protocol (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, err := cmd.Flags().GetDuration("debounce")
		if err != nil {
			return err
		}
		maxOffenses, err := cmd.Root().PersistentFlags().GetInt("max-offenses")
		if err != nil {
			return err
		}
		server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
			Debounce:       debounce,
			MaxDiagnostics: maxOffenses,
			Version:        version.Version,
			Logger:         logger.WithPrefix("lintel lsp"),
		})
		err = server.Run(cmd.Context())
		switch {
		case err == nil, errors.Is(err, lsp.ErrExit):
			return nil
		case errors.Is(err, lsp.ErrExitWithoutShutdown):
			return &exitCodeError{code: 1}
		default:
			return err
		}
	},
}

func init() {
	lspCmd.Flags().Duration("debounce", 300*time.Millisecond, "delay before re-linting an edited buffer")
}
