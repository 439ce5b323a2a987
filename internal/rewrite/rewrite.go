// Package rewrite applies text edits to source files: deterministic
// ordering, overlap rejection, and atomic in-place writes.
package rewrite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"datemark/internal/source"
)

// ErrNoEdits is returned when there is nothing to apply.
var ErrNoEdits = errors.New("no edits to apply")

// Edit replaces the bytes of Span with NewText.
type Edit struct {
	Span    source.Span
	NewText string
}

// Apply returns a new content slice with all edits applied. Edits are
// sorted by start offset, validated against the content bounds, and
// rejected if any two overlap; the input slice is never modified.
func Apply(content []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return nil, ErrNoEdits
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	contentLen := uint32(len(content))
	for i, e := range sorted {
		if e.Span.Start > e.Span.End || e.Span.End > contentLen {
			return nil, fmt.Errorf("edit %d out of bounds: %s (content is %d bytes)",
				i, e.Span, contentLen)
		}
		if i > 0 && sorted[i-1].Span.End > e.Span.Start {
			return nil, fmt.Errorf("overlapping edits: %s and %s",
				sorted[i-1].Span, e.Span)
		}
	}

	// Back-to-front so earlier offsets stay valid.
	out := make([]byte, len(content))
	copy(out, content)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		tail := append([]byte(e.NewText), out[e.Span.End:]...)
		out = append(out[:e.Span.Start], tail...)
	}
	return out, nil
}

// WriteFileAtomic writes content to path via a temp file in the same
// directory and an atomic rename, preserving the original file mode when
// the file already exists.
func WriteFileAtomic(path string, content []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".datemark-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
