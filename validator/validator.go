// Package validator implements the streaming semantic checker for IR
// streams. It consumes instance, witness and relation messages, tracks wire
// liveness and pending input values, and accumulates every rule violation it
// finds; a validation pass never stops early.
package validator

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

var versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

var bigOne = big.NewInt(1)
var bigTwo = big.NewInt(2)

// Validator checks a stream of IR messages. The zero value is not usable;
// construct one with NewProver or NewVerifier.
//
// Violations are accumulated as data, not returned as errors: a failing
// circuit is an expected outcome and the caller decides what to do with the
// full list.
type Validator struct {
	asProver bool

	gotHeader    bool
	profile      string
	version      string
	isArithmetic bool

	// per type id, aligned with the header's field list
	characteristics []*big.Int
	degrees         []uint32
	instanceQueue   []uint64
	witnessQueue    []uint64
	liveWires       []map[ir.WireId]struct{}

	functions map[string]ir.Signature
	plugins   map[string]struct{}

	// first wire id above everything the stream has touched, in any type
	// namespace; used to seed fresh temporary wires
	nextTemp uint64

	violations []string
}

// NewVerifier returns a validator that rejects witness messages and treats
// undefined wires leniently (each is reported through the prover run).
func NewVerifier() *Validator {
	return &Validator{
		functions: make(map[string]ir.Signature),
		plugins:   make(map[string]struct{}),
	}
}

// NewProver returns a validator for the prover side: witness messages are
// expected and reading an undefined wire is a violation.
func NewProver() *Validator {
	v := NewVerifier()
	v.asProver = true
	return v
}

// IngestMessage dispatches on the message kind.
func (v *Validator) IngestMessage(msg ir.Message) {
	switch m := msg.(type) {
	case *ir.Instance:
		v.IngestInstance(m)
	case *ir.Witness:
		v.IngestWitness(m)
	case *ir.Relation:
		v.IngestRelation(m)
	}
}

// IngestInstance validates the supplied public values and queues them for
// Instance gates.
func (v *Validator) IngestInstance(instance *ir.Instance) {
	v.ingestHeader(&instance.Header)

	for t, inputs := range instance.Inputs {
		for _, value := range inputs.Values {
			v.ensureValueInField(ir.TypeId(t), value, func() string {
				return fmt.Sprintf("instance value %v", value)
			})
		}
		if t < len(v.instanceQueue) {
			v.instanceQueue[t] += uint64(len(inputs.Values))
		}
	}
}

// IngestWitness validates the supplied private values and queues them for
// Witness gates. As verifier, a witness message is itself a violation.
func (v *Validator) IngestWitness(witness *ir.Witness) {
	if !v.asProver {
		v.violate("As verifier, got an unexpected Witness message.")
	}
	v.ingestHeader(&witness.Header)

	for t, inputs := range witness.Inputs {
		for _, value := range inputs.Values {
			v.ensureValueInField(ir.TypeId(t), value, func() string {
				return fmt.Sprintf("witness value %v", value)
			})
		}
		if t < len(v.witnessQueue) {
			v.witnessQueue[t] += uint64(len(inputs.Values))
		}
	}
}

// IngestRelation records the declared functions, conversions and plugins,
// then checks every gate in order.
func (v *Validator) IngestRelation(relation *ir.Relation) {
	v.ingestHeader(&relation.Header)

	if relation.GateSet.ContainsBoolean() && !v.allCharacteristicsAre(bigTwo) {
		v.violate("The declared gate set uses boolean gates over a field of characteristic != 2.")
	}

	for i := range relation.Functions {
		f := &relation.Functions[i]
		if _, ok := v.functions[f.Name]; ok {
			v.violate(fmt.Sprintf("The function %s is declared twice.", f.Name))
			continue
		}
		v.functions[f.Name] = f.Signature()
		if plugin, ok := f.Body.(*ir.PluginBody); ok {
			v.plugins[plugin.Name] = struct{}{}
		}
	}
	for _, name := range relation.Plugins {
		v.plugins[name] = struct{}{}
	}

	for _, gate := range relation.Gates {
		v.ingestGate(gate)
	}
}

// Violations finalizes the run and returns the accumulated diagnostics. All
// queued instance and witness values must have been consumed; wires still
// live are only warned about, since trailing frees are stylistic.
func (v *Validator) Violations() []string {
	if n := total(v.instanceQueue); n > 0 {
		v.violate(fmt.Sprintf("Too many Instance values (%d not consumed)", n))
	}
	if v.asProver {
		if n := total(v.witnessQueue); n > 0 {
			v.violate(fmt.Sprintf("Too many Witness values (%d not consumed)", n))
		}
	}
	for t, live := range v.liveWires {
		if len(live) > 0 {
			logrus.Warnf("validator: %d wires of type %d were not freed", len(live), t)
		}
	}
	return v.violations
}

// NextTemporaryWire returns the first wire id above everything the stream
// touched. The gate-set reduction engine seeds its temporary-wire counter
// from a verifier-mode run so fresh ids never collide.
func (v *Validator) NextTemporaryWire() uint64 {
	return v.nextTemp
}

func total(queue []uint64) uint64 {
	var n uint64
	for _, q := range queue {
		n += q
	}
	return n
}

func (v *Validator) ingestHeader(header *ir.Header) {
	if v.gotHeader {
		if len(header.Fields) != len(v.characteristics) {
			v.violate("The field_characteristic field is not consistent across headers.")
		} else {
			for t, f := range header.Fields {
				if v.characteristics[t].Cmp(f.Characteristic.BigInt()) != 0 {
					v.violate("The field_characteristic field is not consistent across headers.")
				}
				if v.degrees[t] != f.Degree {
					v.violate("The field_degree is not consistent across headers.")
				}
			}
		}
		if v.profile != header.Profile {
			v.violate("The profile name is not consistent across headers.")
		}
		if v.version != header.Version {
			v.violate("The profile version is not consistent across headers.")
		}
		return
	}
	v.gotHeader = true

	nbTypes := len(header.Fields)
	v.characteristics = make([]*big.Int, nbTypes)
	v.degrees = make([]uint32, nbTypes)
	v.instanceQueue = make([]uint64, nbTypes)
	v.witnessQueue = make([]uint64, nbTypes)
	v.liveWires = make([]map[ir.WireId]struct{}, nbTypes)
	for t, f := range header.Fields {
		v.characteristics[t] = f.Characteristic.BigInt()
		v.degrees[t] = f.Degree
		v.liveWires[t] = make(map[ir.WireId]struct{})
		if v.characteristics[t].Cmp(bigOne) <= 0 {
			v.violate("The field_characteristic should be > 1")
		}
		if f.Degree != 1 {
			v.violate("field_degree must be = 1")
		}
	}

	v.profile = header.Profile
	switch header.Profile {
	case ir.ProfileArithmetic:
		v.isArithmetic = true
	case ir.ProfileBoolean:
		v.isArithmetic = false
		if !v.allCharacteristicsAre(bigTwo) {
			v.violate("With profile 'boolean', the field characteristic can only be 2.")
		}
	default:
		v.violate("The profile name should match either 'arithmetic' or 'boolean'.")
	}

	if !versionRegex.MatchString(header.Version) {
		v.violate("The profile version should match the following format <major>.<minor>.<patch>.")
	}
	v.version = header.Version
}

func (v *Validator) allCharacteristicsAre(x *big.Int) bool {
	for _, c := range v.characteristics {
		if c.Cmp(x) != 0 {
			return false
		}
	}
	return true
}

func (v *Validator) ingestGate(gate ir.Gate) {
	switch g := gate.(type) {
	case ir.GateConstant:
		v.ensureValueInField(g.Type, g.Value, func() string {
			return fmt.Sprintf("Constant gate value %v", g.Value)
		})
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateAssertZero:
		v.ensureDefinedAndSet(g.Type, g.In)

	case ir.GateCopy:
		v.ensureDefinedAndSet(g.Type, g.In)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateAdd:
		v.ensureArithmetic("Add")
		v.ensureDefinedAndSet(g.Type, g.L)
		v.ensureDefinedAndSet(g.Type, g.R)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateMul:
		v.ensureArithmetic("Mul")
		v.ensureDefinedAndSet(g.Type, g.L)
		v.ensureDefinedAndSet(g.Type, g.R)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateAddConstant:
		v.ensureArithmetic("AddConstant")
		v.ensureValueInField(g.Type, g.Constant, func() string {
			return fmt.Sprintf("AddConstant constant on wire %d", g.Out)
		})
		v.ensureDefinedAndSet(g.Type, g.In)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateMulConstant:
		v.ensureArithmetic("MulConstant")
		v.ensureValueInField(g.Type, g.Constant, func() string {
			return fmt.Sprintf("MulConstant constant on wire %d", g.Out)
		})
		v.ensureDefinedAndSet(g.Type, g.In)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateXor:
		v.ensureBoolean("Xor")
		v.ensureDefinedAndSet(g.Type, g.L)
		v.ensureDefinedAndSet(g.Type, g.R)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateAnd:
		v.ensureBoolean("And")
		v.ensureDefinedAndSet(g.Type, g.L)
		v.ensureDefinedAndSet(g.Type, g.R)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateNot:
		v.ensureBoolean("Not")
		v.ensureDefinedAndSet(g.Type, g.In)
		v.ensureUndefinedAndSet(g.Type, g.Out)

	case ir.GateInstance:
		v.declare(g.Type, g.Out)
		if !v.consumeInstance(g.Type, 1) {
			v.violate(fmt.Sprintf("No value available for the Instance wire %d", g.Out))
		}

	case ir.GateWitness:
		v.declare(g.Type, g.Out)
		if v.asProver && !v.consumeWitness(g.Type, 1) {
			v.violate(fmt.Sprintf("No value available for the Witness wire %d", g.Out))
		}

	case ir.GateFree:
		last := g.FreeLast()
		if last < g.First {
			v.violate(fmt.Sprintf("The Free gate range [%d, %d] is invalid.", g.First, last))
			return
		}
		for id := g.First; ; id++ {
			v.ensureDefinedAndSet(g.Type, id)
			v.remove(g.Type, id)
			if id == last {
				break
			}
		}

	case ir.GateNew:
		if g.Last < g.First {
			v.violate(fmt.Sprintf("The New gate range [%d, %d] is invalid.", g.First, g.Last))
			return
		}
		for id := g.First; ; id++ {
			v.ensureUndefinedAndSet(g.Type, id)
			if id == g.Last {
				break
			}
		}

	case ir.GateConvert:
		v.ingestConvert(g)

	case ir.GateCall:
		v.ingestCall(g)

	case ir.GateAnonCall:
		v.ingestAnonCall(g)

	case ir.GateSwitch:
		v.ingestSwitch(g)

	case ir.GateFor:
		v.ingestFor(g)

	default:
		panic(fmt.Sprintf("unhandled gate kind %v", gate.Kind()))
	}
}

func (v *Validator) violate(msg string) {
	v.violations = append(v.violations, msg)
}

func (v *Validator) typeDefined(t ir.TypeId) bool {
	if int(t) >= len(v.liveWires) {
		v.violate(fmt.Sprintf("Type id %d is not defined in the Header.", t))
		return false
	}
	return true
}

func (v *Validator) isDefined(t ir.TypeId, id ir.WireId) bool {
	_, ok := v.liveWires[t][id]
	return ok
}

func (v *Validator) touch(id ir.WireId) {
	if uint64(id)+1 > v.nextTemp {
		v.nextTemp = uint64(id) + 1
	}
}

func (v *Validator) declare(t ir.TypeId, id ir.WireId) {
	if !v.typeDefined(t) {
		return
	}
	v.liveWires[t][id] = struct{}{}
	v.touch(id)
}

func (v *Validator) remove(t ir.TypeId, id ir.WireId) {
	if !v.typeDefined(t) {
		return
	}
	if !v.isDefined(t, id) {
		v.violate(fmt.Sprintf("The wire %d is being freed, but was not defined previously, or has been already freed", id))
		return
	}
	delete(v.liveWires[t], id)
}

// ensureDefinedAndSet checks that an input wire is live. As verifier an
// undefined wire is silently declared so the same missing wire does not
// produce a cascade of duplicate diagnostics.
func (v *Validator) ensureDefinedAndSet(t ir.TypeId, id ir.WireId) {
	if !v.typeDefined(t) {
		return
	}
	if !v.isDefined(t, id) {
		if v.asProver {
			v.violate(fmt.Sprintf("The wire %d is used but was not assigned a value, or has been freed already.", id))
		}
		v.declare(t, id)
	}
	v.touch(id)
}

func (v *Validator) ensureUndefinedAndSet(t ir.TypeId, id ir.WireId) {
	if !v.typeDefined(t) {
		return
	}
	if v.isDefined(t, id) {
		v.violate(fmt.Sprintf("The wire %d has already been initialized before. This violates the SSA property.", id))
	}
	v.declare(t, id)
}

func (v *Validator) ensureValueInField(t ir.TypeId, value ir.Value, name func() string) {
	if !v.typeDefined(t) {
		return
	}
	if len(value) == 0 {
		v.violate(fmt.Sprintf("The %s is empty.", name()))
	}
	x := value.BigInt()
	if x.Cmp(v.characteristics[t]) >= 0 {
		v.violate(fmt.Sprintf(
			"The %s cannot be represented in the field specified in Header (%v >= %v).",
			name(), x, v.characteristics[t]))
	}
}

func (v *Validator) ensureArithmetic(gateName string) {
	if !v.isArithmetic {
		v.violate(fmt.Sprintf("Arithmetic gate found (%s), while boolean circuit.", gateName))
	}
}

func (v *Validator) ensureBoolean(gateName string) {
	if v.isArithmetic {
		v.violate(fmt.Sprintf("Boolean gate found (%s), while arithmetic circuit.", gateName))
	}
}

func (v *Validator) consumeInstance(t ir.TypeId, n uint64) bool {
	if int(t) >= len(v.instanceQueue) || v.instanceQueue[t] < n {
		return false
	}
	v.instanceQueue[t] -= n
	return true
}

func (v *Validator) consumeWitness(t ir.TypeId, n uint64) bool {
	if int(t) >= len(v.witnessQueue) || v.witnessQueue[t] < n {
		return false
	}
	v.witnessQueue[t] -= n
	return true
}
