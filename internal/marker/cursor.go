package marker

import (
	"bytes"

	"datemark/internal/source"
)

// cursor is a byte-level reader over one file's content.
type cursor struct {
	content []byte
	pos     uint32
	file    source.FileID
}

func newCursor(f *source.File) *cursor {
	return &cursor{content: f.Content, file: f.ID}
}

func (c *cursor) eof() bool {
	return c.pos >= uint32(len(c.content))
}

// peek returns the current byte, or 0 at EOF.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.content[c.pos]
}

// peekAt returns the byte n positions ahead, or 0 past EOF.
func (c *cursor) peekAt(n uint32) byte {
	if c.pos+n >= uint32(len(c.content)) {
		return 0
	}
	return c.content[c.pos+n]
}

// prev returns the byte just before the current position, or 0 at offset 0.
func (c *cursor) prev() byte {
	if c.pos == 0 {
		return 0
	}
	return c.content[c.pos-1]
}

func (c *cursor) bump() {
	if !c.eof() {
		c.pos++
	}
}

func (c *cursor) bumpN(n uint32) {
	c.pos += n
	if c.pos > uint32(len(c.content)) {
		c.pos = uint32(len(c.content))
	}
}

func (c *cursor) mark() uint32 {
	return c.pos
}

func (c *cursor) spanFrom(start uint32) source.Span {
	return source.Span{File: c.file, Start: start, End: c.pos}
}

// here returns a single-byte span at the current position (empty at EOF).
func (c *cursor) here() source.Span {
	end := c.pos
	if !c.eof() {
		end++
	}
	return source.Span{File: c.file, Start: c.pos, End: end}
}

func (c *cursor) hasPrefix(s string) bool {
	return bytes.HasPrefix(c.content[c.pos:], []byte(s))
}

// skipSpaces consumes spaces and tabs, but not newlines: an invocation must
// fit on a single line.
func (c *cursor) skipSpaces() {
	for {
		b := c.peek()
		if b != ' ' && b != '\t' {
			return
		}
		c.bump()
	}
}
