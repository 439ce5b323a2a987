package diagfmt

import (
	"encoding/json"
	"io"

	"datemark/internal/diag"
	"datemark/internal/source"
)

type NoteJSON struct {
	Path    string `json:"path"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	Message string `json:"message"`
}

type DiagnosticJSON struct {
	Path     string     `json:"path"`
	Line     uint32     `json:"line"`
	Col      uint32     `json:"col"`
	EndLine  uint32     `json:"end_line"`
	EndCol   uint32     `json:"end_col"`
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// BuildDiagnosticsOutput converts a bag into its JSON-ready form, one object
// per diagnostic, with 1-based positions. Callers embed the slice in larger
// reports; JSON encodes it directly.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet) []DiagnosticJSON {
	base := fs.BaseDir()
	out := make([]DiagnosticJSON, 0, bag.Len())

	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		start, end := fs.Resolve(d.Primary)

		jd := DiagnosticJSON{
			Path:     f.RelPath(base),
			Line:     start.Line,
			Col:      start.Col,
			EndLine:  end.Line,
			EndCol:   end.Col,
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			nStart, _ := fs.Resolve(n.Span)
			jd.Notes = append(jd.Notes, NoteJSON{
				Path:    nf.RelPath(base),
				Line:    nStart.Line,
				Col:     nStart.Col,
				Message: n.Msg,
			})
		}
		out = append(out, jd)
	}
	return out
}

// JSON renders diagnostics as an indented JSON array.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs))
}
