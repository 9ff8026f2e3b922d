package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaloisInc/zkinterface-sieve/evaluator"
	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/sink"
	"github.com/GaloisInc/zkinterface-sieve/validator"
)

const t0 ir.TypeId = 0

var negOne = ir.Literal32(ir.SampleModulus - 1)

func checkStream(t *testing.T, mem *sink.MemorySink, evaluate bool) {
	t.Helper()
	v := validator.NewProver()
	for _, msg := range mem.Messages() {
		v.IngestMessage(msg)
	}
	assert.Empty(t, v.Violations())

	if !evaluate {
		return
	}
	e := evaluator.New()
	for _, msg := range mem.Messages() {
		switch m := msg.(type) {
		case *ir.Instance:
			e.IngestInstance(m)
		case *ir.Witness:
			e.IngestWitness(m)
		case *ir.Relation:
			e.IngestRelation(m)
		}
	}
	assert.Empty(t, e.Violations())
}

// custom_sub(a, b, c, d) = (a-c, b-d), built as a named function and called
// on four constants.
func TestBuilderWithFunction(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("custom_sub",
		[]ir.Count{ir.NewCount(t0, 2)},
		[]ir.Count{ir.NewCount(t0, 4)})
	ins := ir.ExpandRanges(fb.InputWires())
	require.Len(t, ins, 4)
	negIn2, _ := fb.MulConstant(t0, ins[2].Id, negOne)
	negIn3, _ := fb.MulConstant(t0, ins[3].Id, negOne)
	out0, _ := fb.Add(t0, ins[0].Id, negIn2)
	out1, _ := fb.Add(t0, ins[1].Id, negIn3)
	customSub, err := fb.Finish(ir.TypedWire{Type: t0, Id: out0}, ir.TypedWire{Type: t0, Id: out1})
	require.NoError(t, err)
	require.NoError(t, b.PushFunction(customSub))

	// a second function under the same name is rejected
	err = b.PushFunction(ir.NewFunction("custom_sub", nil, nil, nil, nil, nil))
	require.Error(t, err)

	_, err = b.New(t0, 4)
	require.NoError(t, err)
	id0, _ := b.Constant(t0, ir.Literal32(40))
	b.Constant(t0, ir.Literal32(30))
	b.Constant(t0, ir.Literal32(10))
	id3, _ := b.Constant(t0, ir.Literal32(5))

	out, err := b.Call("custom_sub", []ir.WireRange{ir.NewWireRange(t0, id0, id3)}, nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	outs := ir.ExpandRanges(out)
	require.Len(t, outs, 2)

	w0, _ := b.Witness(t0, ir.Literal32(30))
	w1, _ := b.Witness(t0, ir.Literal32(25))
	negW0, _ := b.MulConstant(t0, w0, negOne)
	negW1, _ := b.MulConstant(t0, w1, negOne)
	res0, _ := b.Add(t0, outs[0].Id, negW0)
	res1, _ := b.Add(t0, outs[1].Id, negW1)
	require.NoError(t, b.AssertZero(t0, res0))
	require.NoError(t, b.AssertZero(t0, res1))

	_, err = b.Call("unknown_function", []ir.WireRange{ir.SingleWire(t0, id0)}, nil, nil)
	require.Error(t, err)

	require.NoError(t, b.Finish())
	checkStream(t, &mem, true)
}

func TestBuilderWithSeveralFunctions(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	fb := b.FunctionBuilder("witness_square", []ir.Count{ir.NewCount(t0, 1)}, nil)
	w, _ := fb.Witness(t0)
	sq, _ := fb.Mul(t0, w, w)
	witnessSquare, err := fb.Finish(ir.TypedWire{Type: t0, Id: sq})
	require.NoError(t, err)
	require.NoError(t, b.PushFunction(witnessSquare))

	fb = b.FunctionBuilder("sub_instance_witness_square", []ir.Count{ir.NewCount(t0, 1)}, nil)
	pub, _ := fb.Instance(t0)

	// wrong input shape
	_, err = fb.Call("witness_square", []ir.WireRange{ir.SingleWire(t0, pub)})
	require.Error(t, err)
	// unknown callee
	_, err = fb.Call("missing", []ir.WireRange{ir.SingleWire(t0, pub)})
	require.Error(t, err)

	sqOut, err := fb.Call("witness_square", nil)
	require.NoError(t, err)
	sqWires := ir.ExpandRanges(sqOut)
	require.Len(t, sqWires, 1)
	negSq, _ := fb.MulConstant(t0, sqWires[0].Id, negOne)
	diff, _ := fb.Add(t0, pub, negSq)
	subSquare, err := fb.Finish(ir.TypedWire{Type: t0, Id: diff})
	require.NoError(t, err)
	require.NoError(t, b.PushFunction(subSquare))

	// the signature consumes one instance and one witness value
	_, err = b.Call("sub_instance_witness_square", nil, nil,
		map[ir.TypeId][]ir.Value{t0: {ir.Literal32(5)}})
	require.Error(t, err)
	_, err = b.Call("sub_instance_witness_square", nil,
		map[ir.TypeId][]ir.Value{t0: {ir.Literal32(25)}}, nil)
	require.Error(t, err)

	out, err := b.Call("sub_instance_witness_square", nil,
		map[ir.TypeId][]ir.Value{t0: {ir.Literal32(25)}},
		map[ir.TypeId][]ir.Value{t0: {ir.Literal32(5)}})
	require.NoError(t, err)
	outs := ir.ExpandRanges(out)
	require.Len(t, outs, 1)
	require.NoError(t, b.AssertZero(t0, outs[0].Id))

	require.NoError(t, b.Finish())
	checkStream(t, &mem, true)
}

func TestBuilderWithConversion(t *testing.T) {
	var mem sink.MemorySink
	header := ir.NewHeader(ir.Value{7}, ir.Literal32(101))
	b := NewGateBuilder(&mem, header, ir.ArithmeticGateSet())

	w0, _ := b.Witness(0, ir.Value{1})
	w1, _ := b.Witness(0, ir.Value{3})

	// undeclared conversion shape
	_, err := b.Convert(1, 3, ir.NewWireRange(0, w0, w1))
	require.Error(t, err)

	b.PushConversion(ir.NewConversion(ir.NewCount(1, 3), ir.NewCount(0, 2)))
	b.PushConversion(ir.NewConversion(ir.NewCount(1, 3), ir.NewCount(0, 2)))

	out, err := b.Convert(1, 3, ir.NewWireRange(0, w0, w1))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), out.Count())
	assert.Equal(t, ir.TypeId(1), out.Type)

	require.NoError(t, b.Finish())
	relations := mem.Relations()
	require.Len(t, relations, 1)
	assert.Len(t, relations[0].Conversions, 1)
	checkStream(t, &mem, false)
}

func TestBuilderWithPlugin(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())

	vectorAdd := ir.Function{
		Name:        "vector_add_2",
		OutputCount: []ir.Count{ir.NewCount(t0, 2)},
		InputCount:  []ir.Count{ir.NewCount(t0, 2), ir.NewCount(t0, 2)},
		Body:        &ir.PluginBody{Name: "vector", Operation: "add", Params: []string{"0", "2"}},
	}
	require.NoError(t, b.PushPlugin(vectorAdd))

	// a gate-bodied function is not a plugin
	err := b.PushPlugin(ir.NewFunction("plain", nil, nil, nil, nil, nil))
	require.Error(t, err)

	w0, _ := b.Witness(t0, ir.Literal32(1))
	w1, _ := b.Witness(t0, ir.Literal32(2))
	w2, _ := b.Witness(t0, ir.Literal32(3))
	w3, _ := b.Witness(t0, ir.Literal32(4))

	out, err := b.Call("vector_add_2", []ir.WireRange{
		ir.NewWireRange(t0, w0, w1),
		ir.NewWireRange(t0, w2, w3),
	}, nil, nil)
	require.NoError(t, err)
	outs := ir.ExpandRanges(out)
	require.Len(t, outs, 2)

	require.NoError(t, b.Finish())
	relations := mem.Relations()
	require.Len(t, relations, 1)
	assert.Equal(t, []string{"vector"}, relations[0].Plugins)
	checkStream(t, &mem, false)
}

func TestMessageBuilderFlushing(t *testing.T) {
	var mem sink.MemorySink
	b := NewGateBuilder(&mem, ir.SampleHeader(), ir.ArithmeticGateSet())
	b.msg.MaxLen = 2

	for i := 0; i < 5; i++ {
		_, err := b.Witness(t0, ir.Literal32(uint32(i)))
		require.NoError(t, err)
	}
	require.NoError(t, b.Finish())

	// 5 witness values at 2 per message, plus 5 gates at 2 per relation
	assert.Len(t, mem.Witnesses(), 3)
	assert.Len(t, mem.Relations(), 3)

	var total int
	for _, w := range mem.Witnesses() {
		for _, inputs := range w.Inputs {
			total += len(inputs.Values)
		}
	}
	assert.Equal(t, 5, total)
}
