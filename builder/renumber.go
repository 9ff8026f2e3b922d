package builder

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

// Output renumbering moves each declared output wire down to its canonical
// leading id. Two strategies exist. A wire that only ever appears as an
// explicit id, or inside a splittable range list, is rewritten in place. A
// wire pinned inside an opaque span (a New block, a Call or Convert range, a
// For iteration span, or a function input) cannot be renamed without
// breaking the contiguity the span relies on, so a trailing Copy moves its
// value instead. Freeing a declared output is an error either way: the value
// would be gone by the time the function returns.

type protectedSet map[ir.TypeId]*bitset.BitSet

func (p protectedSet) mark(t ir.TypeId, first, last ir.WireId) {
	// an inverted span is empty, not a wraparound
	if last < first {
		return
	}
	b, ok := p[t]
	if !ok {
		b = bitset.New(uint(last) + 1)
		p[t] = b
	}
	for id := first; ; id++ {
		b.Set(uint(id))
		if id == last {
			break
		}
	}
}

func (p protectedSet) markRanges(ranges []ir.WireRange) {
	for _, r := range ranges {
		p.mark(r.Type, r.First, r.Last)
	}
}

func (p protectedSet) has(t ir.TypeId, id ir.WireId) bool {
	b, ok := p[t]
	return ok && b.Test(uint(id))
}

func collectProtected(gates []ir.Gate, inputs []ir.WireRange, outputs map[ir.TypedWire]struct{}) (protectedSet, error) {
	p := make(protectedSet)
	p.markRanges(inputs)
	for _, gate := range gates {
		switch g := gate.(type) {
		case ir.GateNew:
			p.mark(g.Type, g.First, g.Last)
		case ir.GateCall:
			p.markRanges(g.In)
			p.markRanges(g.Out)
		case ir.GateConvert:
			p.markRanges([]ir.WireRange{g.In, g.Out})
		case ir.GateFor:
			p.markRanges(g.Out)
			p.markIterSpans(g)
		case ir.GateFree:
			last := g.First
			if g.Last != nil {
				last = *g.Last
			}
			for id := g.First; id <= last; id++ {
				if _, ok := outputs[ir.TypedWire{Type: g.Type, Id: id}]; ok {
					return nil, fmt.Errorf("the output wire %d is freed in the body", id)
				}
			}
		}
	}
	return p, nil
}

func (p protectedSet) markIterSpans(g ir.GateFor) {
	var t ir.TypeId
	var spans []ir.IterRange
	switch b := g.Body.(type) {
	case ir.IterCall:
		t, spans = b.Type, append(append([]ir.IterRange{}, b.Out...), b.In...)
	case ir.IterAnonCall:
		t, spans = b.Type, append(append([]ir.IterRange{}, b.Out...), b.In...)
	}
	for i := g.First; i <= g.Last; i++ {
		for _, r := range spans {
			p.mark(t, r.First.At(i), r.Last.At(i))
		}
	}
}

// replaceOutputWires renumbers outputs[i] to targets[i], appending Copy
// gates where in-place rewriting is unsafe.
func replaceOutputWires(gates []ir.Gate, inputs []ir.WireRange, outputs, targets []ir.TypedWire) ([]ir.Gate, error) {
	outputSet := make(map[ir.TypedWire]struct{}, len(outputs))
	for _, w := range outputs {
		outputSet[w] = struct{}{}
	}
	protected, err := collectProtected(gates, inputs, outputSet)
	if err != nil {
		return nil, err
	}

	out := make([]ir.Gate, len(gates))
	copy(out, gates)
	moved := make(map[ir.TypedWire]ir.WireId)
	for i, w := range outputs {
		target := targets[i]
		if w == target {
			continue
		}
		// a source named twice was already renumbered; copy from where its
		// value lives now
		if src, dup := moved[w]; dup {
			out = append(out, ir.GateCopy{Type: w.Type, Out: target.Id, In: src})
			continue
		}
		if protected.has(w.Type, w.Id) {
			out = append(out, ir.GateCopy{Type: w.Type, Out: target.Id, In: w.Id})
			continue
		}
		for j, g := range out {
			out[j] = rewriteWire(g, w.Type, w.Id, target.Id)
		}
		moved[w] = target.Id
	}
	return out, nil
}

// rewriteWire renames one wire throughout a gate. Opaque spans never contain
// the wire here; collectProtected routed those to the Copy path.
func rewriteWire(gate ir.Gate, t ir.TypeId, old, newId ir.WireId) ir.Gate {
	sub := func(id ir.WireId) ir.WireId {
		if id == old {
			return newId
		}
		return id
	}
	switch g := gate.(type) {
	case ir.GateConstant:
		if g.Type == t {
			g.Out = sub(g.Out)
		}
		return g
	case ir.GateAssertZero:
		if g.Type == t {
			g.In = sub(g.In)
		}
		return g
	case ir.GateCopy:
		if g.Type == t {
			g.Out, g.In = sub(g.Out), sub(g.In)
		}
		return g
	case ir.GateAdd:
		if g.Type == t {
			g.Out, g.L, g.R = sub(g.Out), sub(g.L), sub(g.R)
		}
		return g
	case ir.GateMul:
		if g.Type == t {
			g.Out, g.L, g.R = sub(g.Out), sub(g.L), sub(g.R)
		}
		return g
	case ir.GateAddConstant:
		if g.Type == t {
			g.Out, g.In = sub(g.Out), sub(g.In)
		}
		return g
	case ir.GateMulConstant:
		if g.Type == t {
			g.Out, g.In = sub(g.Out), sub(g.In)
		}
		return g
	case ir.GateXor:
		if g.Type == t {
			g.Out, g.L, g.R = sub(g.Out), sub(g.L), sub(g.R)
		}
		return g
	case ir.GateAnd:
		if g.Type == t {
			g.Out, g.L, g.R = sub(g.Out), sub(g.L), sub(g.R)
		}
		return g
	case ir.GateNot:
		if g.Type == t {
			g.Out, g.In = sub(g.Out), sub(g.In)
		}
		return g
	case ir.GateInstance:
		if g.Type == t {
			g.Out = sub(g.Out)
		}
		return g
	case ir.GateWitness:
		if g.Type == t {
			g.Out = sub(g.Out)
		}
		return g
	case ir.GateAnonCall:
		g.Out = ir.ReplaceWireInRanges(g.Out, t, old, newId)
		g.In = ir.ReplaceWireInRanges(g.In, t, old, newId)
		return g
	case ir.GateSwitch:
		if g.Type == t {
			g.Condition = sub(g.Condition)
		}
		g.Out = ir.ReplaceWireInRanges(g.Out, t, old, newId)
		branches := make([]ir.CaseBranch, len(g.Branches))
		for i, branch := range g.Branches {
			switch b := branch.(type) {
			case ir.CaseCall:
				b.In = ir.ReplaceWireInRanges(b.In, t, old, newId)
				branches[i] = b
			case ir.CaseAnonCall:
				b.In = ir.ReplaceWireInRanges(b.In, t, old, newId)
				branches[i] = b
			}
		}
		g.Branches = branches
		return g
	default:
		// Free never names an output wire and New, Call, Convert and For
		// spans are opaque.
		return gate
	}
}
