package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"datemark/internal/diag"
	"datemark/internal/diagfmt"
	"datemark/internal/driver"
	"datemark/internal/source"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <file|directory>",
	Short: "Rewrite date-literal markers into numeric offsets",
	Long: `Expand scans the target for marker invocations, converts each ISO-8601
literal into seconds since the reference epoch, and rewrites the files in
place. Files with any error diagnostic are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().Bool("dry-run", false, "report planned rewrites without writing files")
	expandCmd.Flags().Bool("no-cache", false, "bypass the scan cache")
	expandCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runExpand(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	return runTarget(cmd, args[0], dryRun, false)
}

// runTarget is the shared driver behind expand and check. checkOnly implies
// no writes; dryRun additionally lists the planned rewrites.
func runTarget(cmd *cobra.Command, target string, dryRun, checkOnly bool) error {
	// Diagnostics are the output here; cobra's usage dump would bury them.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return reportErr(fmt.Errorf("unknown format: %s", format))
	}

	opts, err := buildOptions(cmd, target, dryRun || checkOnly)
	if err != nil {
		return reportErr(err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return reportErr(fmt.Errorf("%s: %w", cmd.Name(), err))
	}

	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)
	if info.IsDir() {
		fileSet, results, err = driver.ExpandDir(cmd.Context(), target, opts)
	} else {
		fileSet = source.NewFileSetWithBase(filepath.Dir(target))
		var result *driver.FileResult
		result, err = driver.ExpandFile(fileSet, target, opts)
		if result != nil {
			results = append(results, *result)
		}
	}
	if err != nil {
		return reportErr(fmt.Errorf("%s: %w", cmd.Name(), err))
	}

	merged := mergeBags(results, opts.MaxDiagnostics)

	if format == "json" {
		if err := printReportJSON(cmd.OutOrStdout(), fileSet, merged, results); err != nil {
			return reportErr(err)
		}
	} else {
		if merged.Len() > 0 {
			diagfmt.Pretty(os.Stderr, merged, fileSet, prettyOpts(cmd))
		}

		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if dryRun && !checkOnly {
			printPlanned(cmd.OutOrStdout(), fileSet, results)
		}
		if !quiet {
			printSummary(cmd.OutOrStdout(), results, dryRun, checkOnly)
		}
	}

	if merged.HasErrors() {
		return reportErr(fmt.Errorf("%d error(s) found", countErrors(merged)))
	}
	return nil
}

// reportErr echoes err on stderr. With cobra's own reporting silenced, the
// returned error only drives the exit code.
func reportErr(err error) error {
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}

// buildOptions layers CLI flags over the manifest discovered above target.
func buildOptions(cmd *cobra.Command, target string, noWrite bool) (driver.Options, error) {
	startDir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		startDir = filepath.Dir(target)
	}

	manifest, _, err := loadProjectManifest(startDir)
	if err != nil {
		return driver.Options{}, err
	}
	opts := optionsFromManifest(manifest)
	opts.DryRun = noWrite

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}
	opts.MaxDiagnostics = maxDiagnostics

	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return driver.Options{}, err
	}
	opts.Jobs = jobs

	noCache := false
	if f := cmd.Flags().Lookup("no-cache"); f != nil {
		noCache, _ = cmd.Flags().GetBool("no-cache")
	}
	if !noCache {
		// Cache failures are not fatal: run uncached.
		if cache, err := driver.OpenScanCache("datemark"); err == nil {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func prettyOpts(cmd *cobra.Command) diagfmt.PrettyOpts {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
	return diagfmt.PrettyOpts{
		Color:   useColor,
		Context: 0,
	}
}

func mergeBags(results []driver.FileResult, maxPerFile int) *diag.Bag {
	// Bag limits are uint16; clamp for very large trees.
	total := min(maxPerFile*max(len(results), 1), 65535)
	merged := diag.NewBag(total)
	for i := range results {
		if results[i].Bag != nil {
			merged.Merge(results[i].Bag)
		}
	}
	merged.Sort()
	return merged
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}

func printPlanned(w io.Writer, fileSet *source.FileSet, results []driver.FileResult) {
	base := fileSet.BaseDir()
	for _, result := range results {
		for _, r := range result.Rewrites {
			f := fileSet.Get(r.Span.File)
			start, _ := fileSet.Resolve(r.Span)
			fmt.Fprintf(w, "%s:%d:%d: %q -> %s\n",
				f.RelPath(base), start.Line, start.Col, r.Literal, r.NewText)
		}
	}
}

type rewriteJSON struct {
	Path        string `json:"path"`
	Line        uint32 `json:"line"`
	Col         uint32 `json:"col"`
	Literal     string `json:"literal"`
	Replacement string `json:"replacement"`
}

type reportJSON struct {
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics"`
	Rewrites    []rewriteJSON            `json:"rewrites"`
}

// printReportJSON emits one machine-readable document covering both the
// diagnostics and the planned (or applied) rewrites.
func printReportJSON(w io.Writer, fileSet *source.FileSet, merged *diag.Bag, results []driver.FileResult) error {
	report := reportJSON{
		Diagnostics: diagfmt.BuildDiagnosticsOutput(merged, fileSet),
		Rewrites:    make([]rewriteJSON, 0),
	}

	base := fileSet.BaseDir()
	for _, result := range results {
		for _, r := range result.Rewrites {
			f := fileSet.Get(r.Span.File)
			start, _ := fileSet.Resolve(r.Span)
			report.Rewrites = append(report.Rewrites, rewriteJSON{
				Path:        f.RelPath(base),
				Line:        start.Line,
				Col:         start.Col,
				Literal:     r.Literal,
				Replacement: r.NewText,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printSummary(w io.Writer, results []driver.FileResult, dryRun, checkOnly bool) {
	rewrites, changed := 0, 0
	for _, result := range results {
		rewrites += len(result.Rewrites)
		if result.Changed {
			changed++
		}
	}

	switch {
	case checkOnly:
		fmt.Fprintf(w, "checked %d file(s), %d date literal(s)\n", len(results), rewrites)
	case dryRun:
		fmt.Fprintf(w, "would rewrite %d date literal(s) in %d file(s)\n", rewrites, len(results))
	default:
		fmt.Fprintf(w, "rewrote %d date literal(s) in %d file(s)\n", rewrites, changed)
	}
}
