package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"datemark/internal/diag"
	"datemark/internal/source"
)

var (
	errorStyle = color.New(color.FgRed, color.Bold)
	warnStyle  = color.New(color.FgYellow, color.Bold)
	infoStyle  = color.New(color.FgCyan, color.Bold)
	noteStyle  = color.New(color.FgBlue)
)

// Pretty renders diagnostics in a human-readable form. It walks bag.Items()
// (call bag.Sort() beforehand) and prints, per diagnostic:
//
//	<path>:<line>:<col>: <SEV> <ID>: <message>
//	    <source line>
//	    ^~~~~
//
// followed by notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	base := fs.BaseDir()
	for _, d := range bag.Items() {
		printHeading(w, fs, base, d.Primary, d.Severity, opts,
			fmt.Sprintf("%s: %s", d.Code.ID(), d.Message))
		printContext(w, fs, d.Primary, severityStyle(d.Severity), opts)

		for _, n := range d.Notes {
			printHeading(w, fs, base, n.Span, diag.SevInfo, opts, "note: "+n.Msg)
			printContext(w, fs, n.Span, noteStyle, opts)
		}
	}
}

func printHeading(w io.Writer, fs *source.FileSet, base string, sp source.Span, sev diag.Severity, opts PrettyOpts, msg string) {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)

	sevText := sev.String()
	if opts.Color {
		sevText = severityStyle(sev).Sprint(sevText)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s\n", f.RelPath(base), start.Line, start.Col, sevText, msg)
}

// printContext shows opts.Context preceding lines, the primary line, and a
// caret underline clipped to the line end.
func printContext(w io.Writer, fs *source.FileSet, sp source.Span, style *color.Color, opts PrettyOpts) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	first := int(start.Line) - opts.Context
	if first < 1 {
		first = 1
	}
	for ln := uint32(first); ln < start.Line; ln++ {
		fmt.Fprintf(w, "    %s\n", f.GetLine(ln))
	}

	line := f.GetLine(start.Line)
	fmt.Fprintf(w, "    %s\n", line)

	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	} else if remain := len(line) - int(start.Col) + 1; remain > 1 {
		// Multi-line span: underline to the end of the first line.
		width = remain
	}
	caret := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		caret = style.Sprint(caret)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", int(start.Col)-1), caret)
}

func severityStyle(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorStyle
	case diag.SevWarning:
		return warnStyle
	default:
		return infoStyle
	}
}
