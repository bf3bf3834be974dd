package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"lintel/internal/config"
	"lintel/internal/cop"
	"lintel/internal/cops"
	"lintel/internal/diag"
)

var copsCmd = &cobra.Command{
	Use:   "cops [directory]",
	Short: "List the available cops",
	Long:  `List every built-in cop with its metadata and whether the configuration found for directory enables it`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCops,
}

func init() {
	copsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	copsCmd.Flags().String("config", "", "path to "+config.FileName+" (default: discovered from directory)")
}

// copEntry is one row of the cops listing.
type copEntry struct {
	ID           string        `json:"id"`
	Department   string        `json:"department"`
	Description  string        `json:"description"`
	Severity     diag.Severity `json:"severity"`
	Enabled      bool          `json:"enabled"`
	Safe         bool          `json:"safe"`
	VersionAdded string        `json:"version_added"`
}

func runCops(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	start := "."
	if len(args) > 0 {
		start = args[0]
	}

	reg := cops.Default()
	cfg, err := loadConfig(configPath, start)
	if err != nil {
		return err
	}
	if err := cfg.Validate(func(id string) bool { return cops.Known(reg, id) }); err != nil {
		return err
	}
	entries := copEntries(append(reg.Metas(), cops.Internal()...), cfg)

	switch strings.ToLower(format) {
	case "pretty":
		colors, err := useColor(cmd)
		if err != nil {
			return err
		}
		return renderCopsTable(cmd.OutOrStdout(), entries, colors)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

// copEntries resolves the effective state of each cop under cfg.
func copEntries(metas []cop.Meta, cfg *config.Config) []copEntry {
	overrides := cfg.Severities()
	out := make([]copEntry, 0, len(metas))
	for _, m := range metas {
		sev := m.Severity
		if s, ok := overrides[m.ID()]; ok {
			sev = s
		}
		out = append(out, copEntry{
			ID:           m.ID(),
			Department:   m.Department,
			Description:  m.Description,
			Severity:     sev,
			Enabled:      cfg.Enabled(m),
			Safe:         m.Safe,
			VersionAdded: m.VersionAdded,
		})
	}
	return out
}

func renderCopsTable(w io.Writer, entries []copEntry, colors bool) error {
	headers := []string{"COP", "ENABLED", "SEVERITY", "SINCE", "DESCRIPTION"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		enabled := "no"
		if e.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{e.ID, enabled, e.Severity.String(), e.VersionAdded, e.Description})
	}

	header := lipgloss.NewStyle().Padding(0, 2, 0, 0)
	cell := lipgloss.NewStyle().Padding(0, 2, 0, 0)
	if colors {
		header = header.Bold(true).Foreground(lipgloss.Color("12"))
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(tableStyle(header, cell))

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// tableStyle styles the header row apart from the data rows. In lipgloss
// v0.12 the header is row 0.
func tableStyle(header, cell lipgloss.Style) func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		if row == 0 {
			return header
		}
		return cell
	}
}
