package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Validate date-literal markers without rewriting anything",
	Long: `Check runs the same scan and conversion as expand but never writes.
The exit code is non-zero when any literal fails to convert.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-cache", false, "bypass the scan cache")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	return runTarget(cmd, args[0], false, true)
}
