package ir

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// GateSet is a mask over gate kinds, naming which primitive gates a relation
// is permitted to use. Kinds outside the mask are structural and always
// allowed.
type GateSet struct {
	b *bitset.BitSet
}

// NewGateSet builds a mask containing the given kinds.
func NewGateSet(kinds ...GateKind) GateSet {
	s := GateSet{b: bitset.New(uint(numGateKinds))}
	for _, k := range kinds {
		s.b.Set(uint(k))
	}
	return s
}

// ArithmeticGateSet is the mask of the four arithmetic primitives.
func ArithmeticGateSet() GateSet {
	return NewGateSet(KindAdd, KindMul, KindAddConstant, KindMulConstant)
}

// BooleanGateSet is the mask of the three boolean primitives.
func BooleanGateSet() GateSet {
	return NewGateSet(KindXor, KindAnd, KindNot)
}

// Contains reports whether the mask allows the kind.
func (s GateSet) Contains(k GateKind) bool {
	return s.b != nil && s.b.Test(uint(k))
}

// ContainsBoolean reports whether the mask names any boolean primitive,
// which is only legal over a field of characteristic 2.
func (s GateSet) ContainsBoolean() bool {
	return s.Contains(KindXor) || s.Contains(KindAnd) || s.Contains(KindNot)
}

// With returns a copy of the mask with the extra kinds set.
func (s GateSet) With(kinds ...GateKind) GateSet {
	var c GateSet
	if s.b == nil {
		c = NewGateSet(kinds...)
		return c
	}
	c = GateSet{b: s.b.Clone()}
	for _, k := range kinds {
		c.b.Set(uint(k))
	}
	return c
}

// Kinds lists the kinds in the mask, in ascending order.
func (s GateSet) Kinds() []GateKind {
	var kinds []GateKind
	if s.b == nil {
		return nil
	}
	for i, ok := s.b.NextSet(0); ok; i, ok = s.b.NextSet(i + 1) {
		kinds = append(kinds, GateKind(i))
	}
	return kinds
}

// Equal compares two masks.
func (s GateSet) Equal(o GateSet) bool {
	switch {
	case s.b == nil && o.b == nil:
		return true
	case s.b == nil:
		return o.b.None()
	case o.b == nil:
		return s.b.None()
	}
	return s.b.Equal(o.b)
}

func (s GateSet) String() string {
	kinds := s.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
