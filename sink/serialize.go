package sink

import (
	"fmt"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

// The gate sum type cannot round-trip through a generic codec directly, so
// the stream format flattens each gate into one record keyed by its kind.
// Only the fields a kind uses are populated; the rest stay at their zero
// value and are omitted from the encoding.

type gateRec struct {
	Kind  ir.GateKind `cbor:"1,keyasint"`
	Type  ir.TypeId   `cbor:"2,keyasint,omitempty"`
	Out   ir.WireId   `cbor:"3,keyasint,omitempty"`
	L     ir.WireId   `cbor:"4,keyasint,omitempty"`
	R     ir.WireId   `cbor:"5,keyasint,omitempty"`
	Value ir.Value    `cbor:"6,keyasint,omitempty"`

	First ir.WireId  `cbor:"7,keyasint,omitempty"`
	Last  *ir.WireId `cbor:"8,keyasint,omitempty"`

	Name      string         `cbor:"9,keyasint,omitempty"`
	OutRanges []ir.WireRange `cbor:"10,keyasint,omitempty"`
	InRanges  []ir.WireRange `cbor:"11,keyasint,omitempty"`

	Instance ir.CountMap `cbor:"12,keyasint,omitempty"`
	Witness  ir.CountMap `cbor:"13,keyasint,omitempty"`
	Body     []gateRec   `cbor:"14,keyasint,omitempty"`

	Cases    []ir.Value  `cbor:"15,keyasint,omitempty"`
	Branches []branchRec `cbor:"16,keyasint,omitempty"`

	LoopFirst uint64      `cbor:"17,keyasint,omitempty"`
	LoopLast  uint64      `cbor:"18,keyasint,omitempty"`
	ForBody   *forBodyRec `cbor:"19,keyasint,omitempty"`
}

type branchRec struct {
	Anon     bool           `cbor:"1,keyasint,omitempty"`
	Name     string         `cbor:"2,keyasint,omitempty"`
	InRanges []ir.WireRange `cbor:"3,keyasint,omitempty"`
	Instance ir.CountMap    `cbor:"4,keyasint,omitempty"`
	Witness  ir.CountMap    `cbor:"5,keyasint,omitempty"`
	Body     []gateRec      `cbor:"6,keyasint,omitempty"`
}

type forBodyRec struct {
	Anon      bool           `cbor:"1,keyasint,omitempty"`
	Name      string         `cbor:"2,keyasint,omitempty"`
	Type      ir.TypeId      `cbor:"3,keyasint,omitempty"`
	OutRanges []ir.IterRange `cbor:"4,keyasint,omitempty"`
	InRanges  []ir.IterRange `cbor:"5,keyasint,omitempty"`
	Instance  ir.CountMap    `cbor:"6,keyasint,omitempty"`
	Witness   ir.CountMap    `cbor:"7,keyasint,omitempty"`
	Body      []gateRec      `cbor:"8,keyasint,omitempty"`
}

type functionRec struct {
	Name          string         `cbor:"1,keyasint"`
	OutputCount   []ir.Count     `cbor:"2,keyasint,omitempty"`
	InputCount    []ir.Count     `cbor:"3,keyasint,omitempty"`
	InstanceCount ir.CountMap    `cbor:"4,keyasint,omitempty"`
	WitnessCount  ir.CountMap    `cbor:"5,keyasint,omitempty"`
	Gates         []gateRec      `cbor:"6,keyasint,omitempty"`
	Plugin        *ir.PluginBody `cbor:"7,keyasint,omitempty"`
}

type relationRec struct {
	Header      ir.Header       `cbor:"1,keyasint"`
	GateSet     []ir.GateKind   `cbor:"2,keyasint,omitempty"`
	Gates       []gateRec       `cbor:"3,keyasint,omitempty"`
	Functions   []functionRec   `cbor:"4,keyasint,omitempty"`
	Conversions []ir.Conversion `cbor:"5,keyasint,omitempty"`
	Plugins     []string        `cbor:"6,keyasint,omitempty"`
}

func gateToRec(gate ir.Gate) gateRec {
	switch g := gate.(type) {
	case ir.GateConstant:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, Value: g.Value}
	case ir.GateAssertZero:
		return gateRec{Kind: g.Kind(), Type: g.Type, L: g.In}
	case ir.GateCopy:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.In}
	case ir.GateAdd:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.L, R: g.R}
	case ir.GateMul:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.L, R: g.R}
	case ir.GateAddConstant:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.In, Value: g.Constant}
	case ir.GateMulConstant:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.In, Value: g.Constant}
	case ir.GateXor:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.L, R: g.R}
	case ir.GateAnd:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.L, R: g.R}
	case ir.GateNot:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out, L: g.In}
	case ir.GateInstance:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out}
	case ir.GateWitness:
		return gateRec{Kind: g.Kind(), Type: g.Type, Out: g.Out}
	case ir.GateFree:
		return gateRec{Kind: g.Kind(), Type: g.Type, First: g.First, Last: g.Last}
	case ir.GateNew:
		last := g.Last
		return gateRec{Kind: g.Kind(), Type: g.Type, First: g.First, Last: &last}
	case ir.GateConvert:
		return gateRec{Kind: g.Kind(), OutRanges: []ir.WireRange{g.Out}, InRanges: []ir.WireRange{g.In}}
	case ir.GateCall:
		return gateRec{Kind: g.Kind(), Name: g.Name, OutRanges: g.Out, InRanges: g.In}
	case ir.GateAnonCall:
		return gateRec{
			Kind: g.Kind(), OutRanges: g.Out, InRanges: g.In,
			Instance: g.InstanceCount, Witness: g.WitnessCount,
			Body: gatesToRecs(g.Body),
		}
	case ir.GateSwitch:
		branches := make([]branchRec, len(g.Branches))
		for i, branch := range g.Branches {
			switch b := branch.(type) {
			case ir.CaseCall:
				branches[i] = branchRec{Name: b.Name, InRanges: b.In}
			case ir.CaseAnonCall:
				branches[i] = branchRec{
					Anon: true, InRanges: b.In,
					Instance: b.InstanceCount, Witness: b.WitnessCount,
					Body: gatesToRecs(b.Body),
				}
			}
		}
		return gateRec{
			Kind: g.Kind(), Type: g.Type, L: g.Condition,
			OutRanges: g.Out, Cases: g.Cases, Branches: branches,
		}
	case ir.GateFor:
		var body forBodyRec
		switch b := g.Body.(type) {
		case ir.IterCall:
			body = forBodyRec{Name: b.Name, Type: b.Type, OutRanges: b.Out, InRanges: b.In}
		case ir.IterAnonCall:
			body = forBodyRec{
				Anon: true, Type: b.Type, OutRanges: b.Out, InRanges: b.In,
				Instance: b.InstanceCount, Witness: b.WitnessCount,
				Body: gatesToRecs(b.Body),
			}
		}
		return gateRec{
			Kind: g.Kind(), Name: g.Iterator,
			LoopFirst: g.First, LoopLast: g.Last,
			OutRanges: g.Out, ForBody: &body,
		}
	default:
		panic(fmt.Sprintf("unhandled gate kind %v", gate.Kind()))
	}
}

func gatesToRecs(gates []ir.Gate) []gateRec {
	recs := make([]gateRec, len(gates))
	for i, g := range gates {
		recs[i] = gateToRec(g)
	}
	return recs
}

func recToGate(r gateRec) (ir.Gate, error) {
	switch r.Kind {
	case ir.KindConstant:
		return ir.GateConstant{Type: r.Type, Out: r.Out, Value: r.Value}, nil
	case ir.KindAssertZero:
		return ir.GateAssertZero{Type: r.Type, In: r.L}, nil
	case ir.KindCopy:
		return ir.GateCopy{Type: r.Type, Out: r.Out, In: r.L}, nil
	case ir.KindAdd:
		return ir.GateAdd{Type: r.Type, Out: r.Out, L: r.L, R: r.R}, nil
	case ir.KindMul:
		return ir.GateMul{Type: r.Type, Out: r.Out, L: r.L, R: r.R}, nil
	case ir.KindAddConstant:
		return ir.GateAddConstant{Type: r.Type, Out: r.Out, In: r.L, Constant: r.Value}, nil
	case ir.KindMulConstant:
		return ir.GateMulConstant{Type: r.Type, Out: r.Out, In: r.L, Constant: r.Value}, nil
	case ir.KindXor:
		return ir.GateXor{Type: r.Type, Out: r.Out, L: r.L, R: r.R}, nil
	case ir.KindAnd:
		return ir.GateAnd{Type: r.Type, Out: r.Out, L: r.L, R: r.R}, nil
	case ir.KindNot:
		return ir.GateNot{Type: r.Type, Out: r.Out, In: r.L}, nil
	case ir.KindInstance:
		return ir.GateInstance{Type: r.Type, Out: r.Out}, nil
	case ir.KindWitness:
		return ir.GateWitness{Type: r.Type, Out: r.Out}, nil
	case ir.KindFree:
		return ir.GateFree{Type: r.Type, First: r.First, Last: r.Last}, nil
	case ir.KindNew:
		if r.Last == nil {
			return nil, fmt.Errorf("New gate record without a last wire")
		}
		return ir.GateNew{Type: r.Type, First: r.First, Last: *r.Last}, nil
	case ir.KindConvert:
		if len(r.OutRanges) != 1 || len(r.InRanges) != 1 {
			return nil, fmt.Errorf("Convert gate record needs exactly one range per side")
		}
		return ir.GateConvert{Out: r.OutRanges[0], In: r.InRanges[0]}, nil
	case ir.KindCall:
		return ir.GateCall{Name: r.Name, Out: r.OutRanges, In: r.InRanges}, nil
	case ir.KindAnonCall:
		body, err := recsToGates(r.Body)
		if err != nil {
			return nil, err
		}
		return ir.GateAnonCall{
			Out: r.OutRanges, In: r.InRanges,
			InstanceCount: r.Instance, WitnessCount: r.Witness,
			Body: body,
		}, nil
	case ir.KindSwitch:
		branches := make([]ir.CaseBranch, len(r.Branches))
		for i, b := range r.Branches {
			if b.Anon {
				body, err := recsToGates(b.Body)
				if err != nil {
					return nil, err
				}
				branches[i] = ir.CaseAnonCall{
					In:            b.InRanges,
					InstanceCount: b.Instance, WitnessCount: b.Witness,
					Body: body,
				}
			} else {
				branches[i] = ir.CaseCall{Name: b.Name, In: b.InRanges}
			}
		}
		return ir.GateSwitch{
			Type: r.Type, Condition: r.L,
			Out: r.OutRanges, Cases: r.Cases, Branches: branches,
		}, nil
	case ir.KindFor:
		if r.ForBody == nil {
			return nil, fmt.Errorf("For gate record without a body")
		}
		var body ir.ForBody
		if r.ForBody.Anon {
			gates, err := recsToGates(r.ForBody.Body)
			if err != nil {
				return nil, err
			}
			body = ir.IterAnonCall{
				Type: r.ForBody.Type, Out: r.ForBody.OutRanges, In: r.ForBody.InRanges,
				InstanceCount: r.ForBody.Instance, WitnessCount: r.ForBody.Witness,
				Body: gates,
			}
		} else {
			body = ir.IterCall{
				Name: r.ForBody.Name, Type: r.ForBody.Type,
				Out: r.ForBody.OutRanges, In: r.ForBody.InRanges,
			}
		}
		return ir.GateFor{
			Iterator: r.Name, First: r.LoopFirst, Last: r.LoopLast,
			Out: r.OutRanges, Body: body,
		}, nil
	default:
		return nil, fmt.Errorf("unknown gate kind %d in stream", r.Kind)
	}
}

func recsToGates(recs []gateRec) ([]ir.Gate, error) {
	if recs == nil {
		return nil, nil
	}
	gates := make([]ir.Gate, len(recs))
	for i, r := range recs {
		g, err := recToGate(r)
		if err != nil {
			return nil, err
		}
		gates[i] = g
	}
	return gates, nil
}

func relationToRec(relation *ir.Relation) *relationRec {
	functions := make([]functionRec, len(relation.Functions))
	for i := range relation.Functions {
		f := &relation.Functions[i]
		rec := functionRec{
			Name:          f.Name,
			OutputCount:   f.OutputCount,
			InputCount:    f.InputCount,
			InstanceCount: f.InstanceCount,
			WitnessCount:  f.WitnessCount,
		}
		switch body := f.Body.(type) {
		case ir.GateBody:
			rec.Gates = gatesToRecs(body.Gates)
		case *ir.PluginBody:
			rec.Plugin = body
		}
		functions[i] = rec
	}
	return &relationRec{
		Header:      relation.Header,
		GateSet:     relation.GateSet.Kinds(),
		Gates:       gatesToRecs(relation.Gates),
		Functions:   functions,
		Conversions: relation.Conversions,
		Plugins:     relation.Plugins,
	}
}

func recToRelation(rec *relationRec) (*ir.Relation, error) {
	gates, err := recsToGates(rec.Gates)
	if err != nil {
		return nil, err
	}
	var functions []ir.Function
	for _, f := range rec.Functions {
		fn := ir.Function{
			Name:          f.Name,
			OutputCount:   f.OutputCount,
			InputCount:    f.InputCount,
			InstanceCount: f.InstanceCount,
			WitnessCount:  f.WitnessCount,
		}
		if f.Plugin != nil {
			fn.Body = f.Plugin
		} else {
			body, err := recsToGates(f.Gates)
			if err != nil {
				return nil, err
			}
			fn.Body = ir.GateBody{Gates: body}
		}
		functions = append(functions, fn)
	}
	return &ir.Relation{
		Header:      rec.Header,
		GateSet:     ir.NewGateSet(rec.GateSet...),
		Gates:       gates,
		Functions:   functions,
		Conversions: rec.Conversions,
		Plugins:     rec.Plugins,
	}, nil
}
