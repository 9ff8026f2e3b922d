package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandRanges(t *testing.T) {
	wires := ExpandRanges([]WireRange{
		NewWireRange(0, 1, 3),
		SingleWire(1, 7),
	})
	assert.Equal(t, []TypedWire{
		{Type: 0, Id: 1}, {Type: 0, Id: 2}, {Type: 0, Id: 3},
		{Type: 1, Id: 7},
	}, wires)
}

func TestReplaceWireInRanges(t *testing.T) {
	ranges := []WireRange{NewWireRange(0, 3, 5), SingleWire(1, 4)}

	// splitting around the middle of a range
	assert.Equal(t, []WireRange{
		SingleWire(0, 3), SingleWire(0, 9), SingleWire(0, 5), SingleWire(1, 4),
	}, ReplaceWireInRanges(ranges, 0, 4, 9))

	// an edge wire leaves a single remainder range
	assert.Equal(t, []WireRange{
		SingleWire(0, 9), NewWireRange(0, 4, 5), SingleWire(1, 4),
	}, ReplaceWireInRanges(ranges, 0, 3, 9))

	// a wire of another type namespace is untouched
	assert.Equal(t, ranges, ReplaceWireInRanges(ranges, 1, 3, 9))
}

func TestCountsMatchRanges(t *testing.T) {
	ranges := []WireRange{NewWireRange(0, 0, 3), SingleWire(1, 0)}

	assert.True(t, CountsMatchRanges(ranges, []Count{NewCount(0, 4), NewCount(1, 1)}))
	// order and slicing do not matter, per-type sums do
	assert.True(t, CountsMatchRanges(ranges, []Count{NewCount(1, 1), NewCount(0, 2), NewCount(0, 2)}))
	assert.False(t, CountsMatchRanges(ranges, []Count{NewCount(0, 4)}))
	assert.False(t, CountsMatchRanges(ranges, []Count{NewCount(0, 3), NewCount(1, 2)}))
}

func TestGateSet(t *testing.T) {
	s := ArithmeticGateSet()
	assert.True(t, s.Contains(KindAdd))
	assert.False(t, s.Contains(KindXor))
	assert.False(t, s.ContainsBoolean())
	assert.True(t, BooleanGateSet().ContainsBoolean())

	assert.Equal(t, []GateKind{KindAdd, KindMul, KindAddConstant, KindMulConstant}, s.Kinds())
	assert.True(t, NewGateSet(s.Kinds()...).Equal(s))

	with := s.With(KindXor)
	assert.True(t, with.Contains(KindXor))
	assert.False(t, s.Contains(KindXor))

	assert.Equal(t, "{Add,Mul,AddConstant,MulConstant}", s.String())
}
