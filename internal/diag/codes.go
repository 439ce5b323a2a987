package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Marker scanning (the host side: finding invocations, extracting the
	// literal argument).
	ScanInfo                Code = 1000
	ScanExpectStringLiteral Code = 1001
	ScanUnterminatedString  Code = 1002
	ScanExpectCloseParen    Code = 1003
	ScanNewlineInLiteral    Code = 1004

	// Literal conversion (the date itself).
	DateInfo        Code = 2000
	DateMalformed   Code = 2001
	DateOutOfRange  Code = 2002
	DateUnsupported Code = 2003

	// File system and driver level.
	IOInfo     Code = 4000
	IOReadFail Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	ScanInfo:                "marker scan note",
	ScanExpectStringLiteral: "expected a string literal",
	ScanUnterminatedString:  "unterminated string literal",
	ScanExpectCloseParen:    "expected closing parenthesis",
	ScanNewlineInLiteral:    "newline in string literal",

	DateInfo:        "date conversion note",
	DateMalformed:   "malformed ISO8601 date",
	DateOutOfRange:  "date field out of range",
	DateUnsupported: "unsupported ISO8601 variant",

	IOInfo:     "io note",
	IOReadFail: "failed to read file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DATE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
