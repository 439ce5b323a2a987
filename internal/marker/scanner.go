// Package marker locates date-literal marker invocations in arbitrary
// source text and extracts their single string-literal argument.
//
// The scanner understands just enough of the host language to avoid false
// positives: occurrences inside // line comments, /* */ block comments, and
// double-quoted string literals are not invocations. Everything else about
// the host syntax is ignored.
package marker

import (
	"fmt"

	"datemark/internal/diag"
	"datemark/internal/source"
)

// Invocation is one well-formed marker call.
type Invocation struct {
	// Span covers the whole invocation, from the marker to the closing ')'.
	Span source.Span
	// LitSpan covers the literal's contents, quotes excluded.
	LitSpan source.Span
	// Literal is the raw text between the quotes.
	Literal string
}

// Scanner finds invocations of a fixed marker, e.g. #Date(iso8601: "...").
type Scanner struct {
	marker string
	label  string // argument label; empty means the literal is unlabeled
}

// NewScanner builds a scanner for the given marker identifier and argument
// label. The label is matched when present; a bare string literal is also
// accepted.
func NewScanner(marker, label string) *Scanner {
	return &Scanner{marker: marker, label: label}
}

// Scan walks the file and returns every well-formed invocation in source
// order. Malformed invocations are reported through the reporter and omitted
// from the result; scanning continues past them.
func (s *Scanner) Scan(file *source.File, reporter diag.Reporter) []Invocation {
	if s.marker == "" {
		return nil
	}
	var out []Invocation
	c := newCursor(file)

	for !c.eof() {
		switch b := c.peek(); {
		case b == '/' && c.peekAt(1) == '/':
			skipLineComment(c)
		case b == '/' && c.peekAt(1) == '*':
			skipBlockComment(c)
		case b == '"':
			skipHostString(c)
		case b == s.marker[0] && c.hasPrefix(s.marker) && !isIdentByte(c.prev()):
			// The boundary check keeps a sigil-less marker like "Date" from
			// matching the tail of a longer identifier.
			if inv, ok := s.scanInvocation(c, reporter); ok {
				out = append(out, inv)
			}
		default:
			c.bump()
		}
	}
	return out
}

// scanInvocation parses marker '(' [label ':'] '"' text '"' ')' starting at
// the marker. On failure it reports a diagnostic and leaves the cursor past
// whatever was consumed so the caller can resume.
func (s *Scanner) scanInvocation(c *cursor, reporter diag.Reporter) (Invocation, bool) {
	start := c.mark()
	c.bumpN(uint32(len(s.marker)))

	if c.peek() != '(' {
		// The marker text is a prefix of something else, e.g. #DateRange.
		return Invocation{}, false
	}
	c.bump()
	c.skipSpaces()

	if isIdentStart(c.peek()) {
		if !s.scanLabel(c, reporter) {
			skipToCloseParen(c)
			return Invocation{}, false
		}
		c.skipSpaces()
	}

	if c.peek() != '"' {
		diag.ReportError(reporter, diag.ScanExpectStringLiteral, c.here(),
			"expected a string literal")
		skipToCloseParen(c)
		return Invocation{}, false
	}

	litSpan, ok := scanStringLiteral(c, reporter)
	if !ok {
		return Invocation{}, false
	}

	c.skipSpaces()
	if c.peek() != ')' {
		diag.ReportError(reporter, diag.ScanExpectCloseParen, c.here(),
			fmt.Sprintf("expected ')' to close %s invocation", s.marker))
		skipToCloseParen(c)
		return Invocation{}, false
	}
	c.bump()

	return Invocation{
		Span:    c.spanFrom(start),
		LitSpan: litSpan,
		Literal: string(c.content[litSpan.Start:litSpan.End]),
	}, true
}

// scanLabel consumes an argument label and its ':'. Anything other than the
// configured label means the argument is not the plain string literal the
// marker takes.
func (s *Scanner) scanLabel(c *cursor, reporter diag.Reporter) bool {
	start := c.mark()
	for isIdentByte(c.peek()) {
		c.bump()
	}
	ident := string(c.content[start:c.pos])

	if c.peek() != ':' || s.label == "" || ident != s.label {
		diag.ReportError(reporter, diag.ScanExpectStringLiteral, c.spanFrom(start),
			"expected a string literal")
		return false
	}
	c.bump() // ':'
	return true
}

// scanStringLiteral consumes a double-quoted literal and returns the span of
// its contents. Backslash escapes are carried through verbatim; an escaped
// byte can never terminate the literal.
func scanStringLiteral(c *cursor, reporter diag.Reporter) (source.Span, bool) {
	openQuote := c.mark()
	c.bump() // opening '"'
	contentStart := c.mark()

	for !c.eof() {
		switch b := c.peek(); b {
		case '"':
			span := c.spanFrom(contentStart)
			c.bump()
			return span, true
		case '\\':
			c.bump()
			if c.eof() {
				break
			}
			c.bump()
		case '\n':
			diag.ReportError(reporter, diag.ScanNewlineInLiteral, c.spanFrom(openQuote),
				"newline in string literal")
			return source.Span{}, false
		default:
			c.bump()
		}
	}

	diag.ReportError(reporter, diag.ScanUnterminatedString, c.spanFrom(openQuote),
		"unterminated string literal")
	return source.Span{}, false
}

func skipLineComment(c *cursor) {
	for !c.eof() && c.peek() != '\n' {
		c.bump()
	}
}

func skipBlockComment(c *cursor) {
	c.bumpN(2) // "/*"
	for !c.eof() {
		if c.peek() == '*' && c.peekAt(1) == '/' {
			c.bumpN(2)
			return
		}
		c.bump()
	}
}

// skipHostString consumes a double-quoted string of the host language so
// markers inside it are not treated as invocations.
func skipHostString(c *cursor) {
	c.bump() // opening '"'
	for !c.eof() {
		switch c.peek() {
		case '"':
			c.bump()
			return
		case '\\':
			c.bump()
			if !c.eof() {
				c.bump()
			}
		case '\n':
			// Let the host compiler complain about its own literals.
			return
		default:
			c.bump()
		}
	}
}

// skipToCloseParen advances past the next ')' on the current line, as error
// recovery after a malformed invocation.
func skipToCloseParen(c *cursor) {
	for !c.eof() {
		switch c.peek() {
		case ')':
			c.bump()
			return
		case '\n':
			return
		default:
			c.bump()
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
