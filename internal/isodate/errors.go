package isodate

import (
	"errors"
	"strings"
	"time"
)

// ErrorKind classifies why a candidate string was rejected.
type ErrorKind uint8

const (
	// KindMalformed: not a syntactically valid instance of either variant.
	KindMalformed ErrorKind = iota
	// KindOutOfRange: structurally plausible, semantically invalid (month 13).
	KindOutOfRange
	// KindUnsupported: date-like, but a form this converter refuses on purpose.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindOutOfRange:
		return "out of range"
	case KindUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// ConversionError reports a rejected candidate. The message always carries
// the offending string verbatim so the author can locate it without tooling.
type ConversionError struct {
	Input  string
	Kind   ErrorKind
	Detail string // optional, e.g. "month out of range"
}

func (e *ConversionError) Error() string {
	return "invalid ISO8601 date: " + e.Input
}

func newError(input string, kind ErrorKind, detail string) *ConversionError {
	return &ConversionError{Input: input, Kind: kind, Detail: detail}
}

// errorFromParse maps a time.Parse failure onto the error taxonomy:
// range violations keep their field detail, everything else is malformed.
func errorFromParse(input string, err error) *ConversionError {
	var pe *time.ParseError
	if errors.As(err, &pe) && strings.Contains(pe.Message, "out of range") {
		detail := strings.TrimPrefix(pe.Message, ": ")
		return newError(input, KindOutOfRange, detail)
	}
	return newError(input, KindMalformed, "")
}
