// Package gateset rewrites a relation expressed over an arbitrary gate
// vocabulary into an equivalent one restricted to an allowed subset of
// primitive gates, inserting temporary wires and auxiliary constants as
// needed.
package gateset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/validator"
)

// ErrUnsatisfiable marks a reduction target with no rewrite rule left: the
// requested gate set cannot express the circuit. There is no well-defined
// partial output for this case, so the whole reduction fails.
var ErrUnsatisfiable = errors.New("unsatisfiable gate set")

var bigTwo = big.NewInt(2)

// tempWires hands out fresh temporary wire ids. A single counter is threaded
// through every recursive call so nested bodies observe and advance the same
// monotonic sequence.
type tempWires struct {
	next uint64
}

func (t *tempWires) alloc() ir.WireId {
	id := ir.WireId(t.next)
	t.next++
	return id
}

func (t *tempWires) reserve(id ir.WireId) {
	if uint64(id)+1 > t.next {
		t.next = uint64(id) + 1
	}
}

func (t *tempWires) reserveRanges(ranges []ir.WireRange) {
	for _, r := range ranges {
		t.reserve(r.Last)
	}
}

// bumpPast advances the counter beyond every wire id the gates name.
func bumpPast(gates []ir.Gate, tmp *tempWires) {
	for _, gate := range gates {
		switch g := gate.(type) {
		case ir.GateConstant:
			tmp.reserve(g.Out)
		case ir.GateAssertZero:
			tmp.reserve(g.In)
		case ir.GateCopy:
			tmp.reserve(g.Out)
			tmp.reserve(g.In)
		case ir.GateAdd:
			tmp.reserve(g.Out)
			tmp.reserve(g.L)
			tmp.reserve(g.R)
		case ir.GateMul:
			tmp.reserve(g.Out)
			tmp.reserve(g.L)
			tmp.reserve(g.R)
		case ir.GateAddConstant:
			tmp.reserve(g.Out)
			tmp.reserve(g.In)
		case ir.GateMulConstant:
			tmp.reserve(g.Out)
			tmp.reserve(g.In)
		case ir.GateXor:
			tmp.reserve(g.Out)
			tmp.reserve(g.L)
			tmp.reserve(g.R)
		case ir.GateAnd:
			tmp.reserve(g.Out)
			tmp.reserve(g.L)
			tmp.reserve(g.R)
		case ir.GateNot:
			tmp.reserve(g.Out)
			tmp.reserve(g.In)
		case ir.GateInstance:
			tmp.reserve(g.Out)
		case ir.GateWitness:
			tmp.reserve(g.Out)
		case ir.GateFree:
			tmp.reserve(g.FreeLast())
		case ir.GateNew:
			tmp.reserve(g.Last)
		case ir.GateConvert:
			tmp.reserveRanges([]ir.WireRange{g.Out, g.In})
		case ir.GateCall:
			tmp.reserveRanges(g.Out)
			tmp.reserveRanges(g.In)
		case ir.GateAnonCall:
			tmp.reserveRanges(g.Out)
			tmp.reserveRanges(g.In)
			bumpPast(g.Body, tmp)
		case ir.GateSwitch:
			tmp.reserve(g.Condition)
			tmp.reserveRanges(g.Out)
			for _, branch := range g.Branches {
				switch b := branch.(type) {
				case ir.CaseCall:
					tmp.reserveRanges(b.In)
				case ir.CaseAnonCall:
					tmp.reserveRanges(b.In)
					bumpPast(b.Body, tmp)
				}
			}
		case ir.GateFor:
			tmp.reserveRanges(g.Out)
			switch b := g.Body.(type) {
			case ir.IterCall:
				tmp.reserveIterSpans(b.Out, b.In, g.First, g.Last)
			case ir.IterAnonCall:
				tmp.reserveIterSpans(b.Out, b.In, g.First, g.Last)
				bumpPast(b.Body, tmp)
			}
		}
	}
}

func (t *tempWires) reserveIterSpans(out, in []ir.IterRange, first, last uint64) {
	for i := first; i <= last; i++ {
		for _, r := range out {
			t.reserve(r.Last.At(i))
		}
		for _, r := range in {
			t.reserve(r.Last.At(i))
		}
	}
}

// Reduce rewrites the relation to use only the allowed primitive gates. The
// temporary-wire counter is seeded by running the validator in verifier mode
// over the relation, so fresh ids never collide with existing ones.
func Reduce(relation *ir.Relation, allowed ir.GateSet) (*ir.Relation, error) {
	v := validator.NewVerifier()
	v.IngestRelation(relation)
	reduced, _, err := ReduceFrom(relation, allowed, v.NextTemporaryWire())
	return reduced, err
}

// ReduceFrom is Reduce with an explicit starting temporary-wire id. It
// returns the rewritten relation and the advanced counter so callers can
// chain further allocation safely.
func ReduceFrom(relation *ir.Relation, allowed ir.GateSet, tmpStart uint64) (*ir.Relation, uint64, error) {
	// Boolean primitives only make sense over characteristic 2; refuse
	// up front rather than emit a meaningless circuit.
	if relation.GateSet.ContainsBoolean() && !characteristicIsTwo(relation.Header) {
		return nil, 0, fmt.Errorf("the input relation allows Xor, And or Not over a field of characteristic != 2: %w", ErrUnsatisfiable)
	}
	if allowed.ContainsBoolean() && !characteristicIsTwo(relation.Header) {
		return nil, 0, fmt.Errorf("the target gate set uses Xor, And or Not over a field of characteristic != 2: %w", ErrUnsatisfiable)
	}

	tmp := &tempWires{next: tmpStart}
	bumpPast(relation.Gates, tmp)
	gates := make([]ir.Gate, 0, len(relation.Gates))
	for _, gate := range relation.Gates {
		if err := reduceGate(gate, tmp, allowed, &gates); err != nil {
			return nil, 0, err
		}
	}

	// rewriting is defined over flattened circuits, so the function table
	// of the output is empty; conversions and plugins pass through
	return &ir.Relation{
		Header:      relation.Header,
		GateSet:     allowed,
		Gates:       gates,
		Conversions: relation.Conversions,
		Plugins:     relation.Plugins,
	}, tmp.next, nil
}

func characteristicIsTwo(header ir.Header) bool {
	for _, f := range header.Fields {
		if f.Characteristic.BigInt().Cmp(bigTwo) != 0 {
			return false
		}
	}
	return true
}

// reduceGate rewrites one gate bottom-up: nested bodies are fully reduced
// before the enclosing gate is re-emitted, and every replacement gate is fed
// back through the engine since it may itself be disallowed.
func reduceGate(gate ir.Gate, tmp *tempWires, allowed ir.GateSet, out *[]ir.Gate) error {
	switch g := gate.(type) {
	case ir.GateAnonCall:
		body, err := reduceBody(g.Body, tmp, allowed)
		if err != nil {
			return err
		}
		g.Body = body
		*out = append(*out, g)

	case ir.GateSwitch:
		branches := make([]ir.CaseBranch, 0, len(g.Branches))
		for _, branch := range g.Branches {
			if anon, ok := branch.(ir.CaseAnonCall); ok {
				body, err := reduceBody(anon.Body, tmp, allowed)
				if err != nil {
					return err
				}
				anon.Body = body
				branches = append(branches, anon)
			} else {
				branches = append(branches, branch)
			}
		}
		g.Branches = branches
		*out = append(*out, g)

	case ir.GateFor:
		if anon, ok := g.Body.(ir.IterAnonCall); ok {
			body, err := reduceBody(anon.Body, tmp, allowed)
			if err != nil {
				return err
			}
			anon.Body = body
			g.Body = anon
		}
		*out = append(*out, g)

	case ir.GateAdd:
		if allowed.Contains(ir.KindAdd) {
			*out = append(*out, g)
			return nil
		}
		// characteristic 2 was checked up front
		return reduceGate(ir.GateXor{Type: g.Type, Out: g.Out, L: g.L, R: g.R}, tmp, allowed, out)

	case ir.GateAddConstant:
		if allowed.Contains(ir.KindAddConstant) {
			*out = append(*out, g)
			return nil
		}
		t := tmp.alloc()
		*out = append(*out, ir.GateConstant{Type: g.Type, Out: t, Value: g.Constant})
		return reduceGate(ir.GateAdd{Type: g.Type, Out: g.Out, L: g.In, R: t}, tmp, allowed, out)

	case ir.GateMul:
		if allowed.Contains(ir.KindMul) {
			*out = append(*out, g)
			return nil
		}
		return reduceGate(ir.GateAnd{Type: g.Type, Out: g.Out, L: g.L, R: g.R}, tmp, allowed, out)

	case ir.GateMulConstant:
		if allowed.Contains(ir.KindMulConstant) {
			*out = append(*out, g)
			return nil
		}
		t := tmp.alloc()
		*out = append(*out, ir.GateConstant{Type: g.Type, Out: t, Value: g.Constant})
		return reduceGate(ir.GateMul{Type: g.Type, Out: g.Out, L: g.In, R: t}, tmp, allowed, out)

	case ir.GateAnd:
		if allowed.Contains(ir.KindAnd) {
			*out = append(*out, g)
			return nil
		}
		if allowed.Contains(ir.KindMul) {
			// Mul is already known allowed, no need to recurse
			*out = append(*out, ir.GateMul{Type: g.Type, Out: g.Out, L: g.L, R: g.R})
			return nil
		}
		return fmt.Errorf("cannot eliminate an And gate without a Mul gate: %w", ErrUnsatisfiable)

	case ir.GateXor:
		if allowed.Contains(ir.KindXor) {
			*out = append(*out, g)
			return nil
		}
		if allowed.Contains(ir.KindAdd) {
			*out = append(*out, ir.GateAdd{Type: g.Type, Out: g.Out, L: g.L, R: g.R})
			return nil
		}
		return fmt.Errorf("cannot eliminate a Xor gate without an Add gate: %w", ErrUnsatisfiable)

	case ir.GateNot:
		if allowed.Contains(ir.KindNot) {
			*out = append(*out, g)
			return nil
		}
		t := tmp.alloc()
		*out = append(*out, ir.GateConstant{Type: g.Type, Out: t, Value: ir.Value{1}})
		return reduceGate(ir.GateXor{Type: g.Type, Out: g.Out, L: g.In, R: t}, tmp, allowed, out)

	default:
		*out = append(*out, gate)
	}
	return nil
}

func reduceBody(body []ir.Gate, tmp *tempWires, allowed ir.GateSet) ([]ir.Gate, error) {
	// a body numbers its wires in a local namespace the counter has not
	// seen, so skip past everything it names before allocating
	bumpPast(body, tmp)
	reduced := make([]ir.Gate, 0, len(body))
	for _, gate := range body {
		if err := reduceGate(gate, tmp, allowed, &reduced); err != nil {
			return nil, err
		}
	}
	return reduced, nil
}
