package ir

import (
	"github.com/consensys/gnark-crypto/ecc"
)

// SampleModulus is the characteristic of the sample field.
const SampleModulus uint32 = 101

// SampleHeader is the header shared by the sample messages: one degree-1
// field of characteristic 101, arithmetic profile.
func SampleHeader() Header {
	return NewHeader(Literal32(SampleModulus))
}

// SampleHeaderBN254 is an arithmetic header over the BN254 scalar field,
// used to exercise validation over a characteristic that does not fit a
// machine word.
func SampleHeaderBN254() Header {
	return NewHeader(NewValue(ecc.BN254.ScalarField()))
}

// SampleInstance supplies the public input of the right-triangle sample: the
// hypotenuse length 5.
func SampleInstance() *Instance {
	return &Instance{
		Header: SampleHeader(),
		Inputs: []Inputs{{Values: []Value{Literal32(5)}}},
	}
}

// SampleWitness supplies the private inputs of the right-triangle sample:
// the legs 3 and 4.
func SampleWitness() *Witness {
	return &Witness{
		Header: SampleHeader(),
		Inputs: []Inputs{{Values: []Value{Literal32(3), Literal32(4)}}},
	}
}

// SampleRelation is the right-triangle relation: it checks that
// x^2 + y^2 - z^2 == 0 for a public z and private x, y, squaring through a
// named function.
func SampleRelation() *Relation {
	const t TypeId = 0
	return &Relation{
		Header:  SampleHeader(),
		GateSet: ArithmeticGateSet(),
		Functions: []Function{
			NewFunction(
				"square",
				[]Count{NewCount(t, 1)},
				[]Count{NewCount(t, 1)},
				nil, nil,
				[]Gate{GateMul{Type: t, Out: 0, L: 1, R: 1}},
			),
		},
		Gates: []Gate{
			GateInstance{Type: t, Out: 0},
			GateWitness{Type: t, Out: 1},
			GateWitness{Type: t, Out: 2},
			GateCall{Name: "square", Out: []WireRange{SingleWire(t, 3)}, In: []WireRange{SingleWire(t, 0)}},
			GateCall{Name: "square", Out: []WireRange{SingleWire(t, 4)}, In: []WireRange{SingleWire(t, 1)}},
			GateCall{Name: "square", Out: []WireRange{SingleWire(t, 5)}, In: []WireRange{SingleWire(t, 2)}},
			GateAdd{Type: t, Out: 6, L: 4, R: 5},
			GateMulConstant{Type: t, Out: 7, In: 3, Constant: Literal32(SampleModulus - 1)},
			GateAdd{Type: t, Out: 8, L: 6, R: 7},
			GateAssertZero{Type: t, In: 8},
			FreeRange(t, 0, 8),
		},
	}
}
