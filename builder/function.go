package builder

import (
	"fmt"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

// FunctionBuilder assembles the body of a reusable function. Inside a body
// wires are numbered locally: declared outputs take the lowest ids, inputs
// follow, and everything the builder allocates comes after. Instance and
// witness consumption is tallied as gates are added, so the finished
// signature always matches the body.
type FunctionBuilder struct {
	name        string
	outputCount []ir.Count
	inputCount  []ir.Count

	outTotal map[ir.TypeId]uint64
	nextWire map[ir.TypeId]uint64

	instanceCount ir.CountMap
	witnessCount  ir.CountMap
	gates         []ir.Gate

	functions map[string]ir.Signature
}

// FunctionBuilder starts a function with the given output and input shape.
// Calls inside the body resolve against the functions declared so far.
func (b *GateBuilder) FunctionBuilder(name string, outputCount, inputCount []ir.Count) *FunctionBuilder {
	outTotal := make(map[ir.TypeId]uint64)
	for _, c := range outputCount {
		outTotal[c.Type] += c.Count
	}
	nextWire := make(map[ir.TypeId]uint64)
	for t, n := range outTotal {
		nextWire[t] = n
	}
	for _, c := range inputCount {
		nextWire[c.Type] += c.Count
	}
	return &FunctionBuilder{
		name:          name,
		outputCount:   outputCount,
		inputCount:    inputCount,
		outTotal:      outTotal,
		nextWire:      nextWire,
		instanceCount: make(ir.CountMap),
		witnessCount:  make(ir.CountMap),
		functions:     b.functions,
	}
}

// InputWires returns the ranges holding the function's inputs, one per
// declared input count, in declaration order.
func (f *FunctionBuilder) InputWires() []ir.WireRange {
	offset := make(map[ir.TypeId]uint64)
	for t, n := range f.outTotal {
		offset[t] = n
	}
	ranges := make([]ir.WireRange, len(f.inputCount))
	for i, c := range f.inputCount {
		first := ir.WireId(offset[c.Type])
		offset[c.Type] += c.Count
		ranges[i] = ir.NewWireRange(c.Type, first, first+ir.WireId(c.Count)-1)
	}
	return ranges
}

func (f *FunctionBuilder) allocWire(t ir.TypeId) ir.WireId {
	id := ir.WireId(f.nextWire[t])
	f.nextWire[t]++
	return id
}

func (f *FunctionBuilder) allocRange(t ir.TypeId, n uint64) ir.WireRange {
	first := ir.WireId(f.nextWire[t])
	f.nextWire[t] += n
	return ir.NewWireRange(t, first, first+ir.WireId(n)-1)
}

func (f *FunctionBuilder) push(g ir.Gate) error {
	f.gates = append(f.gates, g)
	return nil
}

var _ Builder = (*FunctionBuilder)(nil)

func (f *FunctionBuilder) Constant(t ir.TypeId, value ir.Value) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateConstant{Type: t, Out: out, Value: value})
}

func (f *FunctionBuilder) AssertZero(t ir.TypeId, in ir.WireId) error {
	return f.push(ir.GateAssertZero{Type: t, In: in})
}

func (f *FunctionBuilder) Copy(t ir.TypeId, in ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateCopy{Type: t, Out: out, In: in})
}

func (f *FunctionBuilder) Add(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateAdd{Type: t, Out: out, L: l, R: r})
}

func (f *FunctionBuilder) Mul(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateMul{Type: t, Out: out, L: l, R: r})
}

func (f *FunctionBuilder) AddConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateAddConstant{Type: t, Out: out, In: in, Constant: constant})
}

func (f *FunctionBuilder) MulConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateMulConstant{Type: t, Out: out, In: in, Constant: constant})
}

func (f *FunctionBuilder) Xor(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateXor{Type: t, Out: out, L: l, R: r})
}

func (f *FunctionBuilder) And(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateAnd{Type: t, Out: out, L: l, R: r})
}

func (f *FunctionBuilder) Not(t ir.TypeId, in ir.WireId) (ir.WireId, error) {
	out := f.allocWire(t)
	return out, f.push(ir.GateNot{Type: t, Out: out, In: in})
}

// Instance pulls one instance value inside the body. The consumption is
// added to the function's signature.
func (f *FunctionBuilder) Instance(t ir.TypeId) (ir.WireId, error) {
	f.instanceCount[t]++
	out := f.allocWire(t)
	return out, f.push(ir.GateInstance{Type: t, Out: out})
}

// Witness pulls one witness value inside the body.
func (f *FunctionBuilder) Witness(t ir.TypeId) (ir.WireId, error) {
	f.witnessCount[t]++
	out := f.allocWire(t)
	return out, f.push(ir.GateWitness{Type: t, Out: out})
}

// New reserves a contiguous block of n local wires.
func (f *FunctionBuilder) New(t ir.TypeId, n uint64) (ir.WireRange, error) {
	r := f.allocRange(t, n)
	return r, f.push(ir.GateNew{Type: t, First: r.First, Last: r.Last})
}

// FreeOne releases a single local wire.
func (f *FunctionBuilder) FreeOne(t ir.TypeId, id ir.WireId) error {
	return f.push(ir.FreeOne(t, id))
}

// Call invokes a previously declared function from inside the body. The
// callee's instance and witness consumption is added to this function's.
func (f *FunctionBuilder) Call(name string, in []ir.WireRange) ([]ir.WireRange, error) {
	sig, ok := f.functions[name]
	if !ok {
		return nil, fmt.Errorf("the function %s is not declared", name)
	}
	if !ir.CountsMatchRanges(in, sig.InputCount) {
		return nil, fmt.Errorf("call to function %s: input wire counts mismatch", name)
	}
	for t, n := range sig.InstanceCount {
		f.instanceCount[t] += n
	}
	for t, n := range sig.WitnessCount {
		f.witnessCount[t] += n
	}
	out := make([]ir.WireRange, len(sig.OutputCount))
	for i, c := range sig.OutputCount {
		out[i] = f.allocRange(c.Type, c.Count)
	}
	return out, f.push(ir.GateCall{Name: name, Out: out, In: in})
}

// Finish closes the body. The wires passed here become the function's
// declared outputs, in declaration order; they are renumbered down to the
// canonical leading ids. The result still has to be pushed to the gate
// builder to become callable.
func (f *FunctionBuilder) Finish(outputs ...ir.TypedWire) (ir.Function, error) {
	targets := make([]ir.TypedWire, 0, len(outputs))
	counter := make(map[ir.TypeId]uint64)
	for _, c := range f.outputCount {
		for i := uint64(0); i < c.Count; i++ {
			targets = append(targets, ir.TypedWire{Type: c.Type, Id: ir.WireId(counter[c.Type])})
			counter[c.Type]++
		}
	}
	if len(outputs) != len(targets) {
		return ir.Function{}, fmt.Errorf("function %s declares %d output wires, %d given",
			f.name, len(targets), len(outputs))
	}
	for i, w := range outputs {
		if w.Type != targets[i].Type {
			return ir.Function{}, fmt.Errorf("function %s: output wire %d has type %d, declaration expects %d",
				f.name, i, w.Type, targets[i].Type)
		}
	}

	gates, err := replaceOutputWires(f.gates, f.InputWires(), outputs, targets)
	if err != nil {
		return ir.Function{}, fmt.Errorf("function %s: %w", f.name, err)
	}
	return ir.NewFunction(f.name, f.outputCount, f.inputCount, f.instanceCount, f.witnessCount, gates), nil
}
