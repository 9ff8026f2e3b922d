package builder

import (
	"fmt"

	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/sink"
	"github.com/GaloisInc/zkinterface-sieve/utils"
)

// Builder is the gate-emission surface shared by the top-level gate builder
// and function bodies.
type Builder interface {
	Constant(t ir.TypeId, value ir.Value) (ir.WireId, error)
	AssertZero(t ir.TypeId, in ir.WireId) error
	Copy(t ir.TypeId, in ir.WireId) (ir.WireId, error)
	Add(t ir.TypeId, l, r ir.WireId) (ir.WireId, error)
	Mul(t ir.TypeId, l, r ir.WireId) (ir.WireId, error)
	AddConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error)
	MulConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error)
	Xor(t ir.TypeId, l, r ir.WireId) (ir.WireId, error)
	And(t ir.TypeId, l, r ir.WireId) (ir.WireId, error)
	Not(t ir.TypeId, in ir.WireId) (ir.WireId, error)
}

// GateBuilder allocates output wires and streams gates through a message
// builder. Wire ids grow monotonically per type; freed ids are never reused.
type GateBuilder struct {
	msg *MessageBuilder

	nextWire    map[ir.TypeId]uint64
	functions   map[string]ir.Signature
	conversions map[ir.Conversion]struct{}
	plugins     map[string]struct{}
}

var _ Builder = (*GateBuilder)(nil)

// NewGateBuilder starts a builder emitting into the sink. The header and gate
// set are stamped on every relation message.
func NewGateBuilder(s sink.Sink, header ir.Header, gateSet ir.GateSet) *GateBuilder {
	return &GateBuilder{
		msg:         NewMessageBuilder(s, header, gateSet),
		nextWire:    make(map[ir.TypeId]uint64),
		functions:   make(map[string]ir.Signature),
		conversions: make(map[ir.Conversion]struct{}),
		plugins:     make(map[string]struct{}),
	}
}

func (b *GateBuilder) allocWire(t ir.TypeId) ir.WireId {
	id := ir.WireId(b.nextWire[t])
	b.nextWire[t]++
	return id
}

func (b *GateBuilder) allocRange(t ir.TypeId, n uint64) ir.WireRange {
	first := ir.WireId(b.nextWire[t])
	b.nextWire[t] += n
	return ir.NewWireRange(t, first, first+ir.WireId(n)-1)
}

func (b *GateBuilder) Constant(t ir.TypeId, value ir.Value) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateConstant{Type: t, Out: out, Value: value})
}

func (b *GateBuilder) AssertZero(t ir.TypeId, in ir.WireId) error {
	return b.msg.PushGate(ir.GateAssertZero{Type: t, In: in})
}

func (b *GateBuilder) Copy(t ir.TypeId, in ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateCopy{Type: t, Out: out, In: in})
}

func (b *GateBuilder) Add(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateAdd{Type: t, Out: out, L: l, R: r})
}

func (b *GateBuilder) Mul(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateMul{Type: t, Out: out, L: l, R: r})
}

func (b *GateBuilder) AddConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateAddConstant{Type: t, Out: out, In: in, Constant: constant})
}

func (b *GateBuilder) MulConstant(t ir.TypeId, in ir.WireId, constant ir.Value) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateMulConstant{Type: t, Out: out, In: in, Constant: constant})
}

func (b *GateBuilder) Xor(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateXor{Type: t, Out: out, L: l, R: r})
}

func (b *GateBuilder) And(t ir.TypeId, l, r ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateAnd{Type: t, Out: out, L: l, R: r})
}

func (b *GateBuilder) Not(t ir.TypeId, in ir.WireId) (ir.WireId, error) {
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateNot{Type: t, Out: out, In: in})
}

// Instance emits an Instance gate and queues its value on the instance
// message stream.
func (b *GateBuilder) Instance(t ir.TypeId, value ir.Value) (ir.WireId, error) {
	if err := b.msg.PushInstanceValue(t, value); err != nil {
		return 0, err
	}
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateInstance{Type: t, Out: out})
}

// Witness emits a Witness gate. A nil value builds the verifier-side stream,
// where witness values are withheld.
func (b *GateBuilder) Witness(t ir.TypeId, value ir.Value) (ir.WireId, error) {
	if value != nil {
		if err := b.msg.PushWitnessValue(t, value); err != nil {
			return 0, err
		}
	}
	out := b.allocWire(t)
	return out, b.msg.PushGate(ir.GateWitness{Type: t, Out: out})
}

// FreeOne releases a single wire. The id is not returned to the allocator.
func (b *GateBuilder) FreeOne(t ir.TypeId, id ir.WireId) error {
	return b.msg.PushGate(ir.FreeOne(t, id))
}

// FreeRange releases the inclusive range [first, last].
func (b *GateBuilder) FreeRange(t ir.TypeId, first, last ir.WireId) error {
	return b.msg.PushGate(ir.FreeRange(t, first, last))
}

// New reserves a contiguous block of n wires and declares it with a New gate.
func (b *GateBuilder) New(t ir.TypeId, n uint64) (ir.WireRange, error) {
	r := b.allocRange(t, n)
	return r, b.msg.PushGate(ir.GateNew{Type: t, First: r.First, Last: r.Last})
}

// PushConversion declares a legal conversion shape. Declaring the same shape
// twice is a no-op.
func (b *GateBuilder) PushConversion(c ir.Conversion) {
	if _, ok := b.conversions[c]; ok {
		return
	}
	b.conversions[c] = struct{}{}
	b.msg.PushConversion(c)
}

// Convert casts a span of wires into a freshly allocated span of another
// type. The conversion shape must have been declared.
func (b *GateBuilder) Convert(outType ir.TypeId, outCount uint64, in ir.WireRange) (ir.WireRange, error) {
	c := ir.NewConversion(ir.NewCount(outType, outCount), ir.NewCount(in.Type, in.Count()))
	if _, ok := b.conversions[c]; !ok {
		return ir.WireRange{}, fmt.Errorf("the conversion %d:%d -> %d:%d is not declared",
			in.Type, in.Count(), outType, outCount)
	}
	out := b.allocRange(outType, outCount)
	return out, b.msg.PushGate(ir.GateConvert{Out: out, In: in})
}

// Call invokes a declared function. Input ranges must match the signature's
// per-type counts, and the provided instance and witness values must match
// the signature's consumption exactly. Output ranges are freshly allocated,
// one per declared output count.
func (b *GateBuilder) Call(name string, in []ir.WireRange, instance, witness map[ir.TypeId][]ir.Value) ([]ir.WireRange, error) {
	sig, ok := b.functions[name]
	if !ok {
		return nil, fmt.Errorf("the function %s is not declared", name)
	}
	if !ir.CountsMatchRanges(in, sig.InputCount) {
		return nil, fmt.Errorf("call to function %s: input wire counts mismatch", name)
	}
	if err := checkValues("instance", name, instance, sig.InstanceCount); err != nil {
		return nil, err
	}
	if err := checkValues("witness", name, witness, sig.WitnessCount); err != nil {
		return nil, err
	}
	for _, t := range utils.SortedKeys(instance) {
		for _, v := range instance[t] {
			if err := b.msg.PushInstanceValue(t, v); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range utils.SortedKeys(witness) {
		for _, v := range witness[t] {
			if err := b.msg.PushWitnessValue(t, v); err != nil {
				return nil, err
			}
		}
	}
	out := make([]ir.WireRange, len(sig.OutputCount))
	for i, c := range sig.OutputCount {
		out[i] = b.allocRange(c.Type, c.Count)
	}
	return out, b.msg.PushGate(ir.GateCall{Name: name, Out: out, In: in})
}

func checkValues(kind, name string, got map[ir.TypeId][]ir.Value, want ir.CountMap) error {
	for t, values := range got {
		if uint64(len(values)) != want[t] {
			return fmt.Errorf("call to function %s: %d %s values of type %d provided, signature consumes %d",
				name, len(values), kind, t, want[t])
		}
	}
	for t, n := range want {
		if n > 0 && got[t] == nil {
			return fmt.Errorf("call to function %s: no %s values of type %d provided, signature consumes %d",
				name, kind, t, n)
		}
	}
	return nil
}

// PushFunction declares a built function, making it callable. Function names
// are unique.
func (b *GateBuilder) PushFunction(f ir.Function) error {
	if _, ok := b.functions[f.Name]; ok {
		return fmt.Errorf("the function %s is already declared", f.Name)
	}
	b.functions[f.Name] = f.Signature()
	return b.msg.PushFunction(f)
}

// PushPlugin declares a plugin-bodied function and records its plugin name in
// the relation.
func (b *GateBuilder) PushPlugin(f ir.Function) error {
	body, ok := f.Body.(*ir.PluginBody)
	if !ok {
		return fmt.Errorf("the function %s has no plugin body", f.Name)
	}
	if _, ok := b.plugins[body.Name]; !ok {
		b.plugins[body.Name] = struct{}{}
		b.msg.PushPlugin(body.Name)
	}
	return b.PushFunction(f)
}

// NextWire reports the id the next allocation for the type would use.
func (b *GateBuilder) NextWire(t ir.TypeId) ir.WireId {
	return ir.WireId(b.nextWire[t])
}

// Finish flushes all pending messages to the sink.
func (b *GateBuilder) Finish() error {
	return b.msg.Finish()
}
