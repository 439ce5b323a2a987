// Package driver orchestrates the expansion pipeline: load files, scan for
// marker invocations, convert literals, and rewrite files in place.
package driver

import (
	"errors"
	"fmt"
	"runtime"

	"datemark/internal/diag"
	"datemark/internal/isodate"
	"datemark/internal/marker"
	"datemark/internal/rewrite"
	"datemark/internal/source"
)

// Defaults mirror the marker's canonical form.
const (
	DefaultMarker   = "#Date"
	DefaultLabel    = "iso8601"
	DefaultTemplate = "Date(timeIntervalSinceReferenceDate: %s)"
)

// Options configures an expansion run.
type Options struct {
	// Marker is the invocation identifier, e.g. "#Date".
	Marker string
	// Label is the argument label accepted before the literal.
	Label string
	// Template is the replacement expression; its single %s receives the
	// numeric offset literal.
	Template string
	// Extensions filters files picked up by directory walks.
	Extensions []string
	// MaxDiagnostics caps diagnostics per file.
	MaxDiagnostics int
	// Jobs limits parallel workers for directory runs; <=0 means GOMAXPROCS.
	Jobs int
	// DryRun computes rewrites but writes nothing.
	DryRun bool
	// Cache holds scan results keyed by content hash; nil disables caching.
	Cache *ScanCache
}

func (o Options) normalized() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Label == "" {
		o.Label = DefaultLabel
	}
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	if len(o.Extensions) == 0 {
		o.Extensions = []string{".swift"}
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	return o
}

// Rewrite is one planned literal replacement within a file.
type Rewrite struct {
	// Span covers the whole invocation to be replaced.
	Span source.Span
	// LitSpan covers the date literal inside the invocation.
	LitSpan source.Span
	// Literal is the accepted ISO-8601 text.
	Literal string
	// Offset is the converted value in seconds since the reference epoch.
	Offset isodate.Offset
	// NewText is the full replacement expression.
	NewText string
}

// FileResult is the outcome of expanding a single file.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Bag      *diag.Bag
	Rewrites []Rewrite
	// Changed reports whether the file was written back.
	Changed bool
	// CacheHit reports whether the scan came from the cache.
	CacheHit bool
}

// ExpandFile loads one file, expands its marker invocations, and (unless
// opts.DryRun) writes the result back. Files that produced any error
// diagnostic are never written.
func ExpandFile(fileSet *source.FileSet, path string, opts Options) (*FileResult, error) {
	opts = opts.normalized()

	fileID, err := fileSet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	result := expandLoaded(fileSet, fileID, path, opts)

	if err := commit(fileSet, result, opts); err != nil {
		return result, err
	}
	return result, nil
}

// expandLoaded runs the scan/convert pipeline over an already-loaded file.
// It performs no writes.
func expandLoaded(fileSet *source.FileSet, fileID source.FileID, path string, opts Options) *FileResult {
	file := fileSet.Get(fileID)
	result := &FileResult{
		Path:   path,
		FileID: fileID,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}

	if opts.Cache != nil && opts.Cache.Lookup(file, opts, result) {
		result.CacheHit = true
		result.Bag.Sort()
		return result
	}

	scanner := marker.NewScanner(opts.Marker, opts.Label)
	invocations := scanner.Scan(file, diag.BagReporter{Bag: result.Bag})

	for _, inv := range invocations {
		off, err := isodate.Convert(inv.Literal)
		if err != nil {
			reportConversion(result.Bag, inv, err)
			continue
		}
		result.Rewrites = append(result.Rewrites, Rewrite{
			Span:    inv.Span,
			LitSpan: inv.LitSpan,
			Literal: inv.Literal,
			Offset:  off,
			NewText: fmt.Sprintf(opts.Template, isodate.FormatOffset(off)),
		})
	}

	result.Bag.Sort()

	if opts.Cache != nil {
		opts.Cache.Store(file, opts, result)
	}
	return result
}

// commit applies the planned rewrites to disk.
func commit(fileSet *source.FileSet, result *FileResult, opts Options) error {
	if opts.DryRun || len(result.Rewrites) == 0 || result.Bag.HasErrors() {
		return nil
	}

	edits := make([]rewrite.Edit, 0, len(result.Rewrites))
	for _, r := range result.Rewrites {
		edits = append(edits, rewrite.Edit{Span: r.Span, NewText: r.NewText})
	}

	file := fileSet.Get(result.FileID)
	updated, err := rewrite.Apply(file.Content, edits)
	if err != nil {
		if errors.Is(err, rewrite.ErrNoEdits) {
			return nil
		}
		return fmt.Errorf("expand %s: %w", result.Path, err)
	}
	// Write back in the file's original encoding, not the normalized form
	// the scanner saw.
	updated = source.EncodeForWrite(updated, file.Flags)
	if err := rewrite.WriteFileAtomic(result.Path, updated); err != nil {
		return fmt.Errorf("expand %s: %w", result.Path, err)
	}
	result.Changed = true
	return nil
}

// reportConversion maps a converter failure onto a diagnostic at the
// literal's position, keeping the reason text verbatim.
func reportConversion(bag *diag.Bag, inv marker.Invocation, err error) {
	code := diag.DateMalformed
	var convErr *isodate.ConversionError
	if errors.As(err, &convErr) {
		switch convErr.Kind {
		case isodate.KindOutOfRange:
			code = diag.DateOutOfRange
		case isodate.KindUnsupported:
			code = diag.DateUnsupported
		}
	}

	d := diag.NewError(code, inv.LitSpan, err.Error())
	if convErr != nil && convErr.Detail != "" {
		d = d.WithNote(inv.LitSpan, convErr.Detail)
	}
	bag.Add(d)
}
