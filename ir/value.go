package ir

import (
	"math/big"
)

// Value is a field element encoded as a little-endian byte string. The
// encoding is not canonical: trailing zero bytes are allowed, so semantic
// comparison goes through big.Int.
type Value []byte

// BigInt decodes the little-endian bytes into a big integer.
func (v Value) BigInt() *big.Int {
	buf := make([]byte, len(v))
	for i, b := range v {
		buf[len(v)-i-1] = b
	}
	return new(big.Int).SetBytes(buf)
}

// NewValue encodes a non-negative big integer as a little-endian Value.
func NewValue(x *big.Int) Value {
	b := x.Bytes()
	buf := make(Value, len(b))
	for i, c := range b {
		buf[len(b)-i-1] = c
	}
	return buf
}

// Literal32 encodes a uint32 as a 4-byte little-endian Value, the fixed-width
// encoding used by the sample messages.
func Literal32(x uint32) Value {
	return Value{byte(x), byte(x >> 8), byte(x >> 16), byte(x >> 24)}
}

// Equal compares two values as field elements, ignoring trailing zeros.
func (v Value) Equal(o Value) bool {
	return v.BigInt().Cmp(o.BigInt()) == 0
}

// EncodeNegativeOne returns the encoding of modulus-1 in the field whose
// characteristic is the given little-endian modulus. The low byte of a prime
// modulus is never zero, so the subtraction never borrows.
func EncodeNegativeOne(modulus Value) Value {
	if len(modulus) == 0 || modulus[0] == 0 {
		panic("invalid modulus")
	}
	negOne := make(Value, len(modulus))
	copy(negOne, modulus)
	negOne[0]--
	return negOne
}
