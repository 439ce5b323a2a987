package diag

import (
	"testing"

	"datemark/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	d := NewError(DateMalformed, source.Span{}, "x")

	if !bag.Add(d) || !bag.Add(d) {
		t.Fatal("adds under the limit must succeed")
	}
	if bag.Add(d) {
		t.Fatal("add over the limit must be rejected")
	}
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevInfo, ScanInfo, source.Span{}, "note"))
	bag.Add(New(SevWarning, ScanInfo, source.Span{}, "warn"))
	if bag.HasErrors() {
		t.Fatal("no errors added yet")
	}
	if !bag.HasWarnings() {
		t.Fatal("warning expected")
	}
	bag.Add(NewError(DateMalformed, source.Span{}, "bad"))
	if !bag.HasErrors() {
		t.Fatal("error expected")
	}
}

func TestBagSortOrder(t *testing.T) {
	bag := NewBag(8)
	bag.Add(NewError(DateMalformed, source.Span{File: 1, Start: 5, End: 6}, "c"))
	bag.Add(NewError(DateMalformed, source.Span{File: 0, Start: 9, End: 10}, "b"))
	bag.Add(NewError(DateMalformed, source.Span{File: 0, Start: 2, End: 3}, "a"))
	bag.Sort()

	got := make([]string, 0, 3)
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	sp := source.Span{File: 0, Start: 1, End: 2}
	bag.Add(NewError(DateMalformed, sp, "same"))
	bag.Add(NewError(DateMalformed, sp, "same"))
	bag.Add(NewError(DateOutOfRange, sp, "different code"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", bag.Len())
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(DateMalformed, source.Span{}, "a"))
	b := NewBag(1)
	b.Add(NewError(DateMalformed, source.Span{}, "b"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("len after merge = %d, want 2", a.Len())
	}
}

func TestBagMergeSaturatesLimit(t *testing.T) {
	fill := func(n int) *Bag {
		b := NewBag(n)
		d := NewError(DateMalformed, source.Span{}, "x")
		for i := 0; i < n; i++ {
			b.Add(d)
		}
		return b
	}

	a := fill(40000)
	a.Merge(fill(40000))

	if a.Len() != 80000 {
		t.Fatalf("len after merge = %d, want 80000", a.Len())
	}
	if a.Cap() != 65535 {
		t.Fatalf("cap after merge = %d, want 65535 (must not wrap)", a.Cap())
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ScanExpectStringLiteral, "SCAN1001"},
		{DateMalformed, "DATE2001"},
		{IOReadFail, "IO4001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
