// Package evaluator executes a relation over concrete input values. It is
// the plaintext backend: wires carry field elements, gates compute modular
// arithmetic, and AssertZero gates either hold or produce a violation. The
// ingestion surface mirrors the validator so the two can run side by side
// over the same message stream.
package evaluator

import (
	"fmt"
	"math/big"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

type frame []map[ir.WireId]*big.Int

func newFrame(types int) frame {
	f := make(frame, types)
	for i := range f {
		f[i] = make(map[ir.WireId]*big.Int)
	}
	return f
}

// Evaluator consumes messages and computes every wire value it can. All
// failures accumulate; evaluation never aborts.
type Evaluator struct {
	gotHeader bool
	moduli    []*big.Int

	instanceQueue [][]ir.Value
	witnessQueue  [][]ir.Value

	wires     frame
	functions map[string]*ir.Function

	violations []string
}

func New() *Evaluator {
	return &Evaluator{functions: make(map[string]*ir.Function)}
}

func (e *Evaluator) violate(msg string) {
	e.violations = append(e.violations, msg)
}

// Violations returns every failure recorded so far, in evaluation order.
func (e *Evaluator) Violations() []string {
	return e.violations
}

func (e *Evaluator) ingestHeader(h ir.Header) {
	if e.gotHeader {
		return
	}
	e.gotHeader = true
	e.moduli = make([]*big.Int, len(h.Fields))
	for i, f := range h.Fields {
		e.moduli[i] = f.Characteristic.BigInt()
	}
	e.instanceQueue = make([][]ir.Value, len(h.Fields))
	e.witnessQueue = make([][]ir.Value, len(h.Fields))
	e.wires = newFrame(len(h.Fields))
}

// IngestInstance queues the message's instance values.
func (e *Evaluator) IngestInstance(m *ir.Instance) {
	e.ingestHeader(m.Header)
	for t, inputs := range m.Inputs {
		if t < len(e.instanceQueue) {
			e.instanceQueue[t] = append(e.instanceQueue[t], inputs.Values...)
		}
	}
}

// IngestWitness queues the message's witness values.
func (e *Evaluator) IngestWitness(m *ir.Witness) {
	e.ingestHeader(m.Header)
	for t, inputs := range m.Inputs {
		if t < len(e.witnessQueue) {
			e.witnessQueue[t] = append(e.witnessQueue[t], inputs.Values...)
		}
	}
}

// IngestRelation evaluates the relation's gates against the queued inputs.
func (e *Evaluator) IngestRelation(m *ir.Relation) {
	e.ingestHeader(m.Header)
	for i := range m.Functions {
		f := &m.Functions[i]
		e.functions[f.Name] = f
	}
	for _, g := range m.Gates {
		e.evalGate(g, e.wires)
	}
}

func (e *Evaluator) popInstance(t ir.TypeId) (ir.Value, bool) {
	if int(t) >= len(e.instanceQueue) || len(e.instanceQueue[t]) == 0 {
		return nil, false
	}
	v := e.instanceQueue[t][0]
	e.instanceQueue[t] = e.instanceQueue[t][1:]
	return v, true
}

func (e *Evaluator) popWitness(t ir.TypeId) (ir.Value, bool) {
	if int(t) >= len(e.witnessQueue) || len(e.witnessQueue[t]) == 0 {
		return nil, false
	}
	v := e.witnessQueue[t][0]
	e.witnessQueue[t] = e.witnessQueue[t][1:]
	return v, true
}

func (e *Evaluator) get(f frame, t ir.TypeId, id ir.WireId) *big.Int {
	if int(t) >= len(f) {
		e.violate(fmt.Sprintf("The type id %d is not declared in the header.", t))
		return nil
	}
	v, ok := f[t][id]
	if !ok {
		e.violate(fmt.Sprintf("The wire %d has no value.", id))
		return nil
	}
	return v
}

func (e *Evaluator) set(f frame, t ir.TypeId, id ir.WireId, v *big.Int) {
	if int(t) >= len(f) {
		e.violate(fmt.Sprintf("The type id %d is not declared in the header.", t))
		return
	}
	f[t][id] = v
}

func (e *Evaluator) reduce(t ir.TypeId, v *big.Int) *big.Int {
	if int(t) < len(e.moduli) {
		return v.Mod(v, e.moduli[t])
	}
	return v
}

// GetWire returns the value of a top-level wire, if it has been computed.
func (e *Evaluator) GetWire(t ir.TypeId, id ir.WireId) (*big.Int, bool) {
	if int(t) >= len(e.wires) {
		return nil, false
	}
	v, ok := e.wires[t][id]
	return v, ok
}

func (e *Evaluator) evalGate(gate ir.Gate, f frame) {
	switch g := gate.(type) {
	case ir.GateConstant:
		e.set(f, g.Type, g.Out, e.reduce(g.Type, g.Value.BigInt()))
	case ir.GateAssertZero:
		if v := e.get(f, g.Type, g.In); v != nil && v.Sign() != 0 {
			e.violate(fmt.Sprintf("The AssertZero gate on wire %d failed (%v != 0).", g.In, v))
		}
	case ir.GateCopy:
		if v := e.get(f, g.Type, g.In); v != nil {
			e.set(f, g.Type, g.Out, v)
		}
	case ir.GateAdd:
		e.binary(f, g.Type, g.Out, g.L, g.R, new(big.Int).Add)
	case ir.GateMul:
		e.binary(f, g.Type, g.Out, g.L, g.R, new(big.Int).Mul)
	case ir.GateAddConstant:
		if v := e.get(f, g.Type, g.In); v != nil {
			e.set(f, g.Type, g.Out, e.reduce(g.Type, new(big.Int).Add(v, g.Constant.BigInt())))
		}
	case ir.GateMulConstant:
		if v := e.get(f, g.Type, g.In); v != nil {
			e.set(f, g.Type, g.Out, e.reduce(g.Type, new(big.Int).Mul(v, g.Constant.BigInt())))
		}
	case ir.GateXor:
		e.binary(f, g.Type, g.Out, g.L, g.R, new(big.Int).Xor)
	case ir.GateAnd:
		e.binary(f, g.Type, g.Out, g.L, g.R, new(big.Int).And)
	case ir.GateNot:
		if v := e.get(f, g.Type, g.In); v != nil {
			e.set(f, g.Type, g.Out, e.reduce(g.Type, new(big.Int).Xor(v, big.NewInt(1))))
		}
	case ir.GateInstance:
		if v, ok := e.popInstance(g.Type); ok {
			e.set(f, g.Type, g.Out, e.reduce(g.Type, v.BigInt()))
		} else {
			e.violate(fmt.Sprintf("No value available for the Instance wire %d", g.Out))
		}
	case ir.GateWitness:
		if v, ok := e.popWitness(g.Type); ok {
			e.set(f, g.Type, g.Out, e.reduce(g.Type, v.BigInt()))
		} else {
			e.violate(fmt.Sprintf("No value available for the Witness wire %d", g.Out))
		}
	case ir.GateFree:
		last := g.First
		if g.Last != nil {
			last = *g.Last
		}
		if int(g.Type) < len(f) {
			for id := g.First; id <= last; id++ {
				delete(f[g.Type], id)
			}
		}
	case ir.GateNew:
		// reservation only, values arrive later
	case ir.GateCall:
		e.evalCall(g, f)
	case ir.GateAnonCall:
		e.evalBody(g.Body, g.Out, g.In, f)
	default:
		e.violate(fmt.Sprintf("The evaluator does not support %v gates.", gate.Kind()))
	}
}

func (e *Evaluator) binary(f frame, t ir.TypeId, out, l, r ir.WireId, op func(x, y *big.Int) *big.Int) {
	lv := e.get(f, t, l)
	rv := e.get(f, t, r)
	if lv == nil || rv == nil {
		return
	}
	e.set(f, t, out, e.reduce(t, op(lv, rv)))
}

func (e *Evaluator) evalCall(g ir.GateCall, f frame) {
	fn, ok := e.functions[g.Name]
	if !ok {
		e.violate(fmt.Sprintf("The function %s is not declared.", g.Name))
		return
	}
	body, ok := fn.Body.(ir.GateBody)
	if !ok {
		e.violate(fmt.Sprintf("The evaluator does not support plugin function %s.", g.Name))
		return
	}
	e.evalScope(body.Gates, fn.OutputCount, g.Out, g.In, f)
}

// evalBody runs an anonymous body. Its local namespace numbers outputs
// first, inputs second, exactly like a named function.
func (e *Evaluator) evalBody(gates []ir.Gate, out, in []ir.WireRange, f frame) {
	outCount := make(map[ir.TypeId]uint64)
	var counts []ir.Count
	for _, r := range out {
		outCount[r.Type] += r.Count()
	}
	for t, n := range outCount {
		counts = append(counts, ir.NewCount(t, n))
	}
	// collapse per type; range order within a type is preserved by the
	// expansion in evalScope
	e.evalScope(gates, counts, out, in, f)
}

// evalScope inlines a gate body: inputs are copied into a fresh local frame
// at their local ids, the body runs, and the declared outputs are copied
// back to the caller's wires.
func (e *Evaluator) evalScope(gates []ir.Gate, outputCount []ir.Count, out, in []ir.WireRange, f frame) {
	local := newFrame(len(f))
	outTotal := make(map[ir.TypeId]uint64)
	for _, c := range outputCount {
		outTotal[c.Type] += c.Count
	}

	next := make(map[ir.TypeId]uint64)
	for t, n := range outTotal {
		next[t] = n
	}
	for _, w := range ir.ExpandRanges(in) {
		if v := e.get(f, w.Type, w.Id); v != nil {
			local[w.Type][ir.WireId(next[w.Type])] = v
		}
		next[w.Type]++
	}

	for _, g := range gates {
		e.evalGate(g, local)
	}

	outNext := make(map[ir.TypeId]uint64)
	for _, w := range ir.ExpandRanges(out) {
		id := ir.WireId(outNext[w.Type])
		outNext[w.Type]++
		if v, ok := local[w.Type][id]; ok {
			e.set(f, w.Type, w.Id, v)
		} else {
			e.violate(fmt.Sprintf("The output wire %d was not assigned by the called body.", w.Id))
		}
	}
}
