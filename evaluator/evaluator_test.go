package evaluator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

func TestEvaluatorSample(t *testing.T) {
	e := New()
	e.IngestInstance(ir.SampleInstance())
	e.IngestWitness(ir.SampleWitness())
	e.IngestRelation(ir.SampleRelation())

	assert.Empty(t, e.Violations())
}

func TestEvaluatorBadWitness(t *testing.T) {
	witness := ir.SampleWitness()
	// 3-5-5 is not a right triangle
	witness.Inputs[0].Values[1] = ir.Literal32(5)

	e := New()
	e.IngestInstance(ir.SampleInstance())
	e.IngestWitness(witness)
	e.IngestRelation(ir.SampleRelation())

	assert.Equal(t, []string{
		"The AssertZero gate on wire 8 failed (9 != 0).",
	}, e.Violations())
}

func TestEvaluatorMissingInputs(t *testing.T) {
	e := New()
	e.IngestRelation(ir.SampleRelation())

	violations := e.Violations()
	require.NotEmpty(t, violations)
	assert.Equal(t, "No value available for the Instance wire 0", violations[0])
}

func TestEvaluatorArithmetic(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(60)},
			ir.GateAddConstant{Type: 0, Out: 1, In: 0, Constant: ir.Literal32(50)},
			ir.GateMulConstant{Type: 0, Out: 2, In: 1, Constant: ir.Literal32(2)},
			ir.GateCopy{Type: 0, Out: 3, In: 2},
		},
	}

	e := New()
	e.IngestRelation(relation)
	require.Empty(t, e.Violations())

	// (60 + 50) * 2 mod 101
	v, ok := e.GetWire(0, 3)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(18), v)
}

func TestEvaluatorFreeDropsValues(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(1)},
			ir.FreeOne(0, 0),
		},
	}

	e := New()
	e.IngestRelation(relation)
	assert.Empty(t, e.Violations())

	_, ok := e.GetWire(0, 0)
	assert.False(t, ok)
}

func TestEvaluatorAnonCall(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(10)},
			ir.GateAnonCall{
				Out: []ir.WireRange{ir.SingleWire(0, 1)},
				In:  []ir.WireRange{ir.SingleWire(0, 0)},
				Body: []ir.Gate{
					// output 0, input 1 in the local namespace
					ir.GateMulConstant{Type: 0, Out: 0, In: 1, Constant: ir.Literal32(3)},
				},
			},
		},
	}

	e := New()
	e.IngestRelation(relation)
	require.Empty(t, e.Violations())

	v, ok := e.GetWire(0, 1)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(30), v)
}

func TestEvaluatorUnsupportedGate(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateFor{Iterator: "i", First: 0, Last: 1, Body: ir.IterCall{Name: "f"}},
		},
	}

	e := New()
	e.IngestRelation(relation)
	assert.Equal(t, []string{"The evaluator does not support For gates."}, e.Violations())
}
