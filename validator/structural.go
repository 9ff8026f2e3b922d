package validator

import (
	"fmt"

	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/utils"
)

// Structural gates are checked shallowly: the wires they exchange with the
// enclosing scope must respect liveness and single assignment, and the
// instance/witness consumption they declare is accounted for. Their bodies
// live in a local namespace and are not recursed into; function and plugin
// semantics are a collaborator's concern.

func (v *Validator) ingestConvert(g ir.GateConvert) {
	for id := g.In.First; id <= g.In.Last; id++ {
		v.ensureDefinedAndSet(g.In.Type, id)
	}
	for id := g.Out.First; id <= g.Out.Last; id++ {
		v.ensureUndefinedAndSet(g.Out.Type, id)
	}
}

func (v *Validator) ingestCall(g ir.GateCall) {
	sig, ok := v.functions[g.Name]
	if !ok {
		v.violate(fmt.Sprintf("The function %s is not declared.", g.Name))
	} else {
		if !ir.CountsMatchRanges(g.In, sig.InputCount) {
			v.violate(fmt.Sprintf("Call to function %s: input wire counts mismatch.", g.Name))
		}
		if !ir.CountsMatchRanges(g.Out, sig.OutputCount) {
			v.violate(fmt.Sprintf("Call to function %s: output wire counts mismatch.", g.Name))
		}
		v.consumeCounts(sig.InstanceCount, sig.WitnessCount, 1, fmt.Sprintf("function %s", g.Name))
	}
	for _, w := range ir.ExpandRanges(g.In) {
		v.ensureDefinedAndSet(w.Type, w.Id)
	}
	for _, w := range ir.ExpandRanges(g.Out) {
		v.ensureUndefinedAndSet(w.Type, w.Id)
	}
}

func (v *Validator) ingestAnonCall(g ir.GateAnonCall) {
	for _, w := range ir.ExpandRanges(g.In) {
		v.ensureDefinedAndSet(w.Type, w.Id)
	}
	for _, w := range ir.ExpandRanges(g.Out) {
		v.ensureUndefinedAndSet(w.Type, w.Id)
	}
	v.consumeCounts(g.InstanceCount, g.WitnessCount, 1, "anonymous call")
}

func (v *Validator) ingestSwitch(g ir.GateSwitch) {
	v.ensureDefinedAndSet(g.Type, g.Condition)
	for _, value := range g.Cases {
		v.ensureValueInField(g.Type, value, func() string {
			return fmt.Sprintf("Switch case value %v", value)
		})
	}
	if len(g.Cases) != len(g.Branches) {
		v.violate(fmt.Sprintf("The Switch gate on wire %d has %d case values for %d branches.",
			g.Condition, len(g.Cases), len(g.Branches)))
	}

	// each branch consumes its own inputs; the switch as a whole reserves
	// the worst case across branches
	maxInstance := make(ir.CountMap)
	maxWitness := make(ir.CountMap)
	for _, branch := range g.Branches {
		var instance, witness ir.CountMap
		var in []ir.WireRange
		switch b := branch.(type) {
		case ir.CaseCall:
			sig, ok := v.functions[b.Name]
			if !ok {
				v.violate(fmt.Sprintf("The function %s is not declared.", b.Name))
				continue
			}
			instance, witness, in = sig.InstanceCount, sig.WitnessCount, b.In
		case ir.CaseAnonCall:
			instance, witness, in = b.InstanceCount, b.WitnessCount, b.In
		}
		for _, w := range ir.ExpandRanges(in) {
			v.ensureDefinedAndSet(w.Type, w.Id)
		}
		mergeMax(maxInstance, instance)
		mergeMax(maxWitness, witness)
	}
	v.consumeCounts(maxInstance, maxWitness, 1, fmt.Sprintf("Switch gate on wire %d", g.Condition))

	for _, w := range ir.ExpandRanges(g.Out) {
		v.ensureUndefinedAndSet(w.Type, w.Id)
	}
}

func (v *Validator) ingestFor(g ir.GateFor) {
	if g.Last < g.First {
		v.violate(fmt.Sprintf("The For loop bounds [%d, %d] are invalid.", g.First, g.Last))
		return
	}
	iterations := g.Last - g.First + 1

	var bodyType ir.TypeId
	var out, in []ir.IterRange
	var instance, witness ir.CountMap
	switch b := g.Body.(type) {
	case ir.IterCall:
		sig, ok := v.functions[b.Name]
		if !ok {
			v.violate(fmt.Sprintf("The function %s is not declared.", b.Name))
			return
		}
		bodyType, out, in = b.Type, b.Out, b.In
		instance, witness = sig.InstanceCount, sig.WitnessCount
	case ir.IterAnonCall:
		bodyType, out, in = b.Type, b.Out, b.In
		instance, witness = b.InstanceCount, b.WitnessCount
	}

	for i := g.First; i <= g.Last; i++ {
		for _, r := range in {
			for id := r.First.At(i); id <= r.Last.At(i); id++ {
				v.ensureDefinedAndSet(bodyType, id)
			}
		}
		for _, r := range out {
			for id := r.First.At(i); id <= r.Last.At(i); id++ {
				v.ensureUndefinedAndSet(bodyType, id)
			}
		}
	}
	v.consumeCounts(instance, witness, iterations, fmt.Sprintf("For loop over %s", g.Iterator))

	// the global output list only names wires the iterations defined
	for _, w := range ir.ExpandRanges(g.Out) {
		v.ensureDefinedAndSet(w.Type, w.Id)
	}
}

func (v *Validator) consumeCounts(instance, witness ir.CountMap, times uint64, ctx string) {
	for _, t := range utils.SortedKeys(instance) {
		if !v.consumeInstance(t, instance[t]*times) {
			v.violate(fmt.Sprintf("No Instance value available for the %s.", ctx))
		}
	}
	if !v.asProver {
		return
	}
	for _, t := range utils.SortedKeys(witness) {
		if !v.consumeWitness(t, witness[t]*times) {
			v.violate(fmt.Sprintf("No Witness value available for the %s.", ctx))
		}
	}
}

func mergeMax(dst, src ir.CountMap) {
	for t, n := range src {
		if n > dst[t] {
			dst[t] = n
		}
	}
}
