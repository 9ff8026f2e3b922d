package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/sink"
)

func TestFinishRewritesPlainOutputs(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("double", []ir.Count{ir.NewCount(t0, 1)}, []ir.Count{ir.NewCount(t0, 1)})
	in := ir.ExpandRanges(fb.InputWires())[0]
	out, _ := fb.Add(t0, in.Id, in.Id)
	assert.Equal(t, ir.WireId(2), out)

	f, err := fb.Finish(ir.TypedWire{Type: t0, Id: out})
	require.NoError(t, err)

	body := f.Body.(ir.GateBody)
	assert.Equal(t, []ir.Gate{
		ir.GateAdd{Type: t0, Out: 0, L: 1, R: 1},
	}, body.Gates)
}

func TestFinishCopiesProtectedOutputs(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("pick", []ir.Count{ir.NewCount(t0, 1)}, []ir.Count{ir.NewCount(t0, 1)})
	block, _ := fb.New(t0, 3)
	assert.Equal(t, ir.NewWireRange(t0, 2, 4), block)

	// a wire pinned inside the New block cannot be renamed in place
	f, err := fb.Finish(ir.TypedWire{Type: t0, Id: 3})
	require.NoError(t, err)

	body := f.Body.(ir.GateBody)
	require.Len(t, body.Gates, 2)
	assert.Equal(t, ir.GateNew{Type: t0, First: 2, Last: 4}, body.Gates[0])
	assert.Equal(t, ir.GateCopy{Type: t0, Out: 0, In: 3}, body.Gates[1])
}

func TestFinishCopiesInputOutputs(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	// the identity function returns its own input, which stays where it is
	fb := b.FunctionBuilder("identity", []ir.Count{ir.NewCount(t0, 1)}, []ir.Count{ir.NewCount(t0, 1)})
	in := ir.ExpandRanges(fb.InputWires())[0]
	f, err := fb.Finish(in)
	require.NoError(t, err)

	body := f.Body.(ir.GateBody)
	assert.Equal(t, []ir.Gate{
		ir.GateCopy{Type: t0, Out: 0, In: 1},
	}, body.Gates)
}

func TestFinishDuplicateOutputs(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("dup", []ir.Count{ir.NewCount(t0, 2)}, nil)
	w, _ := fb.Witness(t0)
	f, err := fb.Finish(ir.TypedWire{Type: t0, Id: w}, ir.TypedWire{Type: t0, Id: w})
	require.NoError(t, err)

	// first occurrence renumbers in place, second falls back to a Copy
	body := f.Body.(ir.GateBody)
	assert.Equal(t, []ir.Gate{
		ir.GateWitness{Type: t0, Out: 0},
		ir.GateCopy{Type: t0, Out: 1, In: 0}, // reads the renumbered wire
	}, body.Gates)
}

func TestFinishLeavesCanonicalOutputAlone(t *testing.T) {
	gates := []ir.Gate{ir.GateWitness{Type: t0, Out: 0}}
	out, err := replaceOutputWires(gates, nil,
		[]ir.TypedWire{{Type: t0, Id: 0}},
		[]ir.TypedWire{{Type: t0, Id: 0}})
	require.NoError(t, err)
	assert.Equal(t, gates, out)
}

func TestRenumberSplitsAnonCallRanges(t *testing.T) {
	gates := []ir.Gate{
		ir.GateAnonCall{
			Out: []ir.WireRange{ir.NewWireRange(t0, 3, 5)},
			Body: []ir.Gate{
				ir.GateWitness{Type: t0, Out: 0},
				ir.GateWitness{Type: t0, Out: 1},
				ir.GateWitness{Type: t0, Out: 2},
			},
		},
	}
	out, err := replaceOutputWires(gates, nil,
		[]ir.TypedWire{{Type: t0, Id: 4}},
		[]ir.TypedWire{{Type: t0, Id: 0}})
	require.NoError(t, err)

	anon := out[0].(ir.GateAnonCall)
	assert.Equal(t, []ir.WireRange{
		ir.SingleWire(t0, 3),
		ir.SingleWire(t0, 0),
		ir.SingleWire(t0, 5),
	}, anon.Out)
}

func TestRenumberProtectsForSpans(t *testing.T) {
	loop := ir.GateFor{
		Iterator: "i",
		First:    0,
		Last:     2,
		Out:      []ir.WireRange{ir.NewWireRange(t0, 2, 4)},
		Body: ir.IterAnonCall{
			Type: t0,
			Out:  []ir.IterRange{{First: ir.IterExpr{Base: 2, Step: 1}, Last: ir.IterExpr{Base: 2, Step: 1}}},
			In:   []ir.IterRange{{First: ir.IterExpr{Base: 1, Step: 0}, Last: ir.IterExpr{Base: 1, Step: 0}}},
			Body: []ir.Gate{ir.GateCopy{Type: t0, Out: 0, In: 1}},
		},
	}
	gates := []ir.Gate{
		ir.GateWitness{Type: t0, Out: 1},
		loop,
	}

	// wire 3 only exists inside the loop's iteration spans, so it moves by
	// a trailing Copy and the loop itself stays untouched
	out, err := replaceOutputWires(gates, nil,
		[]ir.TypedWire{{Type: t0, Id: 3}},
		[]ir.TypedWire{{Type: t0, Id: 0}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, loop, out[1])
	assert.Equal(t, ir.GateCopy{Type: t0, Out: 0, In: 3}, out[2])

	// wire 1 is read through an iteration expression, which protects it too
	out, err = replaceOutputWires(gates, nil,
		[]ir.TypedWire{{Type: t0, Id: 1}},
		[]ir.TypedWire{{Type: t0, Id: 0}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, ir.GateWitness{Type: t0, Out: 1}, out[0])
	assert.Equal(t, ir.GateCopy{Type: t0, Out: 0, In: 1}, out[2])
}

func TestProtectedSetIgnoresInvertedSpans(t *testing.T) {
	p := make(protectedSet)
	p.mark(t0, 5, 3)
	assert.False(t, p.has(t0, 3))
	assert.False(t, p.has(t0, 4))
	assert.False(t, p.has(t0, 5))
}

func TestFinishRejectsFreedOutput(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("freed", []ir.Count{ir.NewCount(t0, 1)}, nil)
	w, _ := fb.Witness(t0)
	require.NoError(t, fb.FreeOne(t0, w))

	_, err := fb.Finish(ir.TypedWire{Type: t0, Id: w})
	require.ErrorContains(t, err, "freed in the body")
}

func TestFinishRejectsWrongOutputCount(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("two", []ir.Count{ir.NewCount(t0, 2)}, nil)
	w, _ := fb.Witness(t0)
	_, err := fb.Finish(ir.TypedWire{Type: t0, Id: w})
	require.ErrorContains(t, err, "output wires")
}
