package syntax

import "math/bits"

// KindSet is an immutable set of node kinds backed by a bitmap.
type KindSet struct {
	bits [(int(kindCount) + 63) / 64]uint64
}

// NewKindSet builds a set from kinds. Invalid kinds are ignored.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		if k.Valid() {
			s.bits[k/64] |= 1 << (k % 64)
		}
	}
	return s
}

// Has reports whether k is a member of s.
func (s KindSet) Has(k Kind) bool {
	if !k.Valid() {
		return false
	}
	return s.bits[k/64]&(1<<(k%64)) != 0
}

// Union returns the set of kinds present in s or other.
func (s KindSet) Union(other KindSet) KindSet {
	for i := range s.bits {
		s.bits[i] |= other.bits[i]
	}
	return s
}

// Len returns the number of kinds in s.
func (s KindSet) Len() int {
	n := 0
	for _, w := range s.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty reports whether s has no members.
func (s KindSet) Empty() bool {
	return s.Len() == 0
}

// Kinds returns the members of s in ascending order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, s.Len())
	for k := KindProgram; k < kindCount; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
