package syntax

import (
	"slices"
	"testing"
)

func TestKindNamesRoundTrip(t *testing.T) {
	for k := KindProgram; k < kindCount; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("invalid"); ok {
		t.Error("invalid must not parse")
	}
	if KindInvalid.Valid() || kindCount.Valid() {
		t.Error("sentinel kinds must not be valid")
	}
}

func TestKindSet(t *testing.T) {
	s := NewKindSet(KindDef, KindBlock, KindInvalid, KindDef)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !s.Has(KindDef) || !s.Has(KindBlock) || s.Has(KindClass) || s.Has(KindInvalid) {
		t.Errorf("unexpected membership in %v", s.Kinds())
	}
	u := s.Union(NewKindSet(KindClass, KindOther))
	if want := []Kind{KindBlock, KindDef, KindClass, KindOther}; !slices.Equal(u.Kinds(), want) {
		t.Errorf("Union().Kinds() = %v, want %v", u.Kinds(), want)
	}
	if s.Has(KindClass) {
		t.Error("Union must not modify the receiver")
	}
	if !(KindSet{}).Empty() {
		t.Error("zero KindSet must be empty")
	}
}
