package ir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueBigIntRoundTrip(t *testing.T) {
	for _, x := range []int64{0, 1, 100, 256, 1 << 40} {
		v := NewValue(big.NewInt(x))
		assert.Equal(t, big.NewInt(x), v.BigInt())
	}
}

func TestValueLittleEndian(t *testing.T) {
	// 0x0201 encodes low byte first
	assert.Equal(t, big.NewInt(513), Value{1, 2}.BigInt())
	assert.Equal(t, Value{1, 2}, NewValue(big.NewInt(513)))
}

func TestLiteral32(t *testing.T) {
	assert.Equal(t, Value{101, 0, 0, 0}, Literal32(101))
	assert.Equal(t, big.NewInt(101), Literal32(101).BigInt())
}

func TestValueEqualIgnoresTrailingZeros(t *testing.T) {
	assert.True(t, Value{5}.Equal(Value{5, 0, 0}))
	assert.False(t, Value{5}.Equal(Value{6}))
}

func TestEncodeNegativeOne(t *testing.T) {
	assert.Equal(t, Value{100, 0, 0, 0}, EncodeNegativeOne(Literal32(101)))
	assert.Panics(t, func() { EncodeNegativeOne(nil) })
	assert.Panics(t, func() { EncodeNegativeOne(Value{0, 1}) })
}
