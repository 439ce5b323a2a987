package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"datemark/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "datemark",
	Short: "Build-time expansion of ISO-8601 date literals",
	Long: `datemark scans source trees for #Date(iso8601: "...") marker invocations,
converts each literal into seconds since 2001-01-01T00:00:00Z at build time,
and splices the numeric result back into the source.`,
}

func init() {
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel workers for directory runs (0 = number of CPUs)")
}

func main() {
	rootCmd.Version = version.Version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
