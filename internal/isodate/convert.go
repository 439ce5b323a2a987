// Package isodate converts ISO-8601 instant literals into numeric offsets
// from a fixed reference epoch (2001-01-01T00:00:00Z).
//
// Exactly two textual variants are accepted, chosen by the final character
// of the trimmed input:
//
//   - trailing 'Z': YYYY-MM-DDTHH:MM:SS[.ffffff]Z (fractional seconds allowed)
//   - otherwise:    YYYY-MM-DDTHH:MM:SS±HH:MM     (no fractional seconds)
//
// The grammar is deliberately frozen: any supported literal must keep
// producing the same offset in future versions.
package isodate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Offset is a signed number of seconds elapsed since ReferenceEpoch,
// fractional seconds included.
type Offset float64

// referenceEpochUnix is 2001-01-01T00:00:00Z in Unix seconds.
const referenceEpochUnix int64 = 978307200

// ReferenceEpoch returns the fixed zero instant all offsets are measured from.
func ReferenceEpoch() time.Time {
	return time.Unix(referenceEpochUnix, 0).UTC()
}

const (
	layoutZulu   = "2006-01-02T15:04:05Z"
	layoutOffset = "2006-01-02T15:04:05-07:00"
)

// Structural shape per variant; field ranges are checked by time.Parse.
var (
	reZulu   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)
	reOffset = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2}$`)

	// Date-like shapes we recognize but intentionally refuse.
	reFracOffset = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+[+-]\d{2}:\d{2}$`)
	reDateOnly   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reWeekDate   = regexp.MustCompile(`^\d{4}-W\d{2}(-\d)?$`)
	reOrdinal    = regexp.MustCompile(`^\d{4}-\d{3}$`)
	reNoZone     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`)
)

// Convert validates candidate as an ISO-8601 instant and returns its offset
// in seconds from ReferenceEpoch. It never panics; every failure is a
// *ConversionError carrying the offending string.
//
// The input is trimmed defensively; callers need not pre-trim.
func Convert(candidate string) (Offset, error) {
	s := strings.TrimSpace(candidate)

	if strings.HasSuffix(s, "Z") {
		if !reZulu.MatchString(s) {
			return 0, newError(s, KindMalformed, "")
		}
		t, err := time.Parse(layoutZulu, s)
		if err != nil {
			return 0, errorFromParse(s, err)
		}
		return offsetOf(t), nil
	}

	if reOffset.MatchString(s) {
		t, err := time.Parse(layoutOffset, s)
		if err != nil {
			return 0, errorFromParse(s, err)
		}
		return offsetOf(t), nil
	}

	switch {
	case reFracOffset.MatchString(s):
		return 0, newError(s, KindUnsupported, "fractional seconds require the Z suffix")
	case reDateOnly.MatchString(s), reNoZone.MatchString(s):
		return 0, newError(s, KindUnsupported, "a time component and zone designator are required")
	case reWeekDate.MatchString(s), reOrdinal.MatchString(s):
		return 0, newError(s, KindUnsupported, "week and ordinal date forms are not supported")
	}
	return 0, newError(s, KindMalformed, "")
}

// offsetOf is exact for the full 4-digit-year range: the whole-second part
// stays integral in the int64 domain before the float conversion.
func offsetOf(t time.Time) Offset {
	sec := t.Unix() - referenceEpochUnix
	return Offset(float64(sec) + float64(t.Nanosecond())/1e9)
}

// Render formats an offset back into the canonical Zulu form, trimming
// trailing zeros of the fractional part. Render(Convert(s)) reproduces s for
// canonical Z-suffixed inputs.
func Render(off Offset) string {
	sec := math.Floor(float64(off))
	nsec := math.Round((float64(off) - sec) * 1e9)
	if nsec >= 1e9 {
		sec++
		nsec = 0
	}
	t := time.Unix(referenceEpochUnix+int64(sec), int64(nsec)).UTC()
	if t.Nanosecond() == 0 {
		return t.Format(layoutZulu)
	}
	return t.Format("2006-01-02T15:04:05.999999999Z")
}

// FormatOffset renders the offset as the shortest decimal literal that
// round-trips through a float64. This is the exact text spliced into
// replacement expressions.
func FormatOffset(off Offset) string {
	return strconv.FormatFloat(float64(off), 'f', -1, 64)
}
