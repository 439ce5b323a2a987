package isodate

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// Seconds between 2001-01-01T00:00:00Z and 2025-08-12T14:30:00Z, computed
// independently of the implementation.
const knownInstantOffset = 776701800.0

func mustConvert(t *testing.T, s string) Offset {
	t.Helper()
	off, err := Convert(s)
	if err != nil {
		t.Fatalf("Convert(%q) failed: %v", s, err)
	}
	return off
}

func TestReferenceEpoch(t *testing.T) {
	want := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ReferenceEpoch().Equal(want) {
		t.Fatalf("ReferenceEpoch() = %v, want %v", ReferenceEpoch(), want)
	}
}

func TestConvertKnownInstant(t *testing.T) {
	off := mustConvert(t, "2025-08-12T14:30:00Z")
	if float64(off) != knownInstantOffset {
		t.Fatalf("offset = %v, want %v", off, knownInstantOffset)
	}
}

func TestConvertEpochIsZero(t *testing.T) {
	if off := mustConvert(t, "2001-01-01T00:00:00Z"); off != 0 {
		t.Fatalf("epoch offset = %v, want 0", off)
	}
}

func TestConvertBeforeEpoch(t *testing.T) {
	if off := mustConvert(t, "2000-12-31T23:59:59Z"); off != -1 {
		t.Fatalf("offset = %v, want -1", off)
	}
}

func TestConvertFractionalSeconds(t *testing.T) {
	base := mustConvert(t, "2025-08-12T14:30:00Z")
	frac := mustConvert(t, "2025-08-12T14:30:00.500Z")
	if float64(frac)-float64(base) != 0.5 {
		t.Fatalf("fractional delta = %v, want exactly 0.5", float64(frac)-float64(base))
	}
}

func TestConvertOffsetNormalization(t *testing.T) {
	tests := []struct {
		name    string
		local   string
		utc     string
	}{
		{"positive offset", "2025-08-12T14:30:00+02:00", "2025-08-12T12:30:00Z"},
		{"negative offset", "2025-08-12T07:30:00-07:00", "2025-08-12T14:30:00Z"},
		{"zero offset", "2025-08-12T14:30:00+00:00", "2025-08-12T14:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustConvert(t, tt.local)
			want := mustConvert(t, tt.utc)
			if got != want {
				t.Fatalf("Convert(%q) = %v, want %v (= Convert(%q))", tt.local, got, want, tt.utc)
			}
		})
	}
}

func TestConvertTrimsWhitespace(t *testing.T) {
	off := mustConvert(t, "  2025-08-12T14:30:00Z\t\n")
	if float64(off) != knownInstantOffset {
		t.Fatalf("offset = %v, want %v", off, knownInstantOffset)
	}
}

func TestConvertDeterministic(t *testing.T) {
	inputs := []string{
		"2025-08-12T14:30:00Z",
		"2025-08-12T14:30:00.123456Z",
		"2025-08-12T14:30:00+05:30",
	}
	for _, s := range inputs {
		a := mustConvert(t, s)
		b := mustConvert(t, s)
		if math.Float64bits(float64(a)) != math.Float64bits(float64(b)) {
			t.Fatalf("Convert(%q) not bit-identical across calls: %v vs %v", s, a, b)
		}
	}
}

func TestConvertRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"empty string", "", KindMalformed},
		{"whitespace only", "   ", KindMalformed},
		{"garbage", "not a date", KindMalformed},
		{"month 13", "2025-13-01T00:00:00Z", KindOutOfRange},
		{"day 32", "2025-01-32T00:00:00Z", KindOutOfRange},
		{"feb 29 non-leap", "2025-02-29T00:00:00Z", KindOutOfRange},
		{"hour 25", "2025-08-12T25:00:00Z", KindOutOfRange},
		{"minute 61", "2025-08-12T14:61:00Z", KindOutOfRange},
		{"leap second", "2025-06-30T23:59:60Z", KindOutOfRange},
		{"month 13 with offset", "2025-13-01T00:00:00+02:00", KindOutOfRange},
		{"space separator", "2025-08-12 14:30:00Z", KindMalformed},
		{"one-digit month", "2025-8-12T14:30:00Z", KindMalformed},
		{"lowercase z", "2025-08-12T14:30:00z", KindMalformed},
		{"offset missing colon", "2025-08-12T14:30:00+0200", KindMalformed},
		{"date only", "2025-08-12", KindUnsupported},
		{"no zone", "2025-08-12T14:30:00", KindUnsupported},
		{"no zone with fraction", "2025-08-12T14:30:00.5", KindUnsupported},
		{"fraction with offset", "2025-08-12T14:30:00.5+02:00", KindUnsupported},
		{"week date", "2025-W33-2", KindUnsupported},
		{"ordinal date", "2025-224", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.input)
			if err == nil {
				t.Fatalf("Convert(%q) unexpectedly succeeded", tt.input)
			}

			var convErr *ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("Convert(%q) returned %T, want *ConversionError", tt.input, err)
			}
			if convErr.Kind != tt.kind {
				t.Errorf("Convert(%q) kind = %v, want %v", tt.input, convErr.Kind, tt.kind)
			}

			trimmed := strings.TrimSpace(tt.input)
			want := "invalid ISO8601 date: " + trimmed
			if err.Error() != want {
				t.Errorf("Convert(%q) message = %q, want %q", tt.input, err.Error(), want)
			}
		})
	}
}

func TestConvertNeverPanics(t *testing.T) {
	// A sweep of adversarial inputs; any panic fails the test outright.
	inputs := []string{
		"Z", "TZ", "----T::Z", "9999-99-99T99:99:99Z",
		strings.Repeat("9", 1024), "2025-08-12T14:30:00.Z",
		"\x00\x01\x02Z", "2025-08-12T14:30:00+aa:bb",
	}
	for _, s := range inputs {
		if _, err := Convert(s); err == nil {
			t.Errorf("Convert(%q) unexpectedly succeeded", s)
		}
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tests := []string{
		"2001-01-01T00:00:00Z",
		"2025-08-12T14:30:00Z",
		"2025-08-12T14:30:00.5Z",
		"1970-01-01T00:00:00Z",
		"2000-12-31T23:59:59Z",
	}
	for _, s := range tests {
		off := mustConvert(t, s)
		rendered := Render(off)
		if rendered != s {
			t.Errorf("Render(Convert(%q)) = %q", s, rendered)
		}

		again := mustConvert(t, rendered)
		if math.Float64bits(float64(off)) != math.Float64bits(float64(again)) {
			t.Errorf("re-parsing %q changed the offset: %v vs %v", rendered, off, again)
		}
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		off  Offset
		want string
	}{
		{0, "0"},
		{knownInstantOffset, "776701800"},
		{knownInstantOffset + 0.5, "776701800.5"},
		{-1, "-1"},
	}
	for _, tt := range tests {
		if got := FormatOffset(tt.off); got != tt.want {
			t.Errorf("FormatOffset(%v) = %q, want %q", tt.off, got, tt.want)
		}
	}
}
