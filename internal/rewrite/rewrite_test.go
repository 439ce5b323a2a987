package rewrite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"datemark/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func TestApplySingleEdit(t *testing.T) {
	content := []byte("let d = OLD // trailing")
	got, err := Apply(content, []Edit{{Span: span(8, 11), NewText: "NEW_TEXT"}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if string(got) != "let d = NEW_TEXT // trailing" {
		t.Fatalf("got %q", got)
	}
	if string(content) != "let d = OLD // trailing" {
		t.Fatalf("input was modified: %q", content)
	}
}

func TestApplyMultipleEdits(t *testing.T) {
	content := []byte("aaa bbb ccc")
	edits := []Edit{
		// Deliberately out of order; Apply must sort.
		{Span: span(8, 11), NewText: "C"},
		{Span: span(0, 3), NewText: "AAAA"},
		{Span: span(4, 7), NewText: "B"},
	}
	got, err := Apply(content, edits)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if string(got) != "AAAA B C" {
		t.Fatalf("got %q", got)
	}
}

func TestApplyGrowingAndShrinking(t *testing.T) {
	content := []byte("0123456789")
	got, err := Apply(content, []Edit{
		{Span: span(2, 4), NewText: "xxxxxx"},
		{Span: span(6, 9), NewText: ""},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if string(got) != "01xxxxxx459" {
		t.Fatalf("got %q", got)
	}
}

func TestApplyRejectsOverlap(t *testing.T) {
	content := []byte("0123456789")
	_, err := Apply(content, []Edit{
		{Span: span(0, 5), NewText: "a"},
		{Span: span(4, 8), NewText: "b"},
	})
	if err == nil {
		t.Fatal("Apply accepted overlapping edits")
	}
}

func TestApplyRejectsOutOfBounds(t *testing.T) {
	content := []byte("short")
	_, err := Apply(content, []Edit{{Span: span(2, 99), NewText: "x"}})
	if err == nil {
		t.Fatal("Apply accepted an out-of-bounds edit")
	}
}

func TestApplyNoEdits(t *testing.T) {
	_, err := Apply([]byte("abc"), nil)
	if !errors.Is(err, ErrNoEdits) {
		t.Fatalf("err = %v, want ErrNoEdits", err)
	}
}

func TestApplyAdjacentEditsAllowed(t *testing.T) {
	content := []byte("abcdef")
	got, err := Apply(content, []Edit{
		{Span: span(0, 3), NewText: "X"},
		{Span: span(3, 6), NewText: "Y"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if string(got) != "XY" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.swift")
	if err := os.WriteFile(path, []byte("before"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("after")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "after" {
		t.Fatalf("content = %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	// No temp droppings left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want 1", len(entries))
	}
}

func TestWriteFileAtomicNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.swift")
	if err := WriteFileAtomic(path, []byte("content")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "content" {
		t.Fatalf("content = %q", got)
	}
}
