package ir

// GateKind enumerates the closed set of gate variants.
type GateKind int

const (
	KindConstant GateKind = iota
	KindAssertZero
	KindCopy
	KindAdd
	KindMul
	KindAddConstant
	KindMulConstant
	KindXor
	KindAnd
	KindNot
	KindInstance
	KindWitness
	KindFree
	KindNew
	KindConvert
	KindCall
	KindAnonCall
	KindSwitch
	KindFor

	numGateKinds int = iota
)

var gateKindNames = [...]string{
	KindConstant:    "Constant",
	KindAssertZero:  "AssertZero",
	KindCopy:        "Copy",
	KindAdd:         "Add",
	KindMul:         "Mul",
	KindAddConstant: "AddConstant",
	KindMulConstant: "MulConstant",
	KindXor:         "Xor",
	KindAnd:         "And",
	KindNot:         "Not",
	KindInstance:    "Instance",
	KindWitness:     "Witness",
	KindFree:        "Free",
	KindNew:         "New",
	KindConvert:     "Convert",
	KindCall:        "Call",
	KindAnonCall:    "AnonCall",
	KindSwitch:      "Switch",
	KindFor:         "For",
}

func (k GateKind) String() string {
	if k < 0 || int(k) >= len(gateKindNames) {
		return "Unknown"
	}
	return gateKindNames[k]
}

// Gate is one directive of a relation. The concrete types below form a
// closed sum; nested bodies (AnonCall, Switch branches, For loops) own their
// sub-sequence of gates exclusively.
type Gate interface {
	Kind() GateKind
}

// GateConstant assigns a literal field element to a fresh wire.
type GateConstant struct {
	Type  TypeId
	Out   WireId
	Value Value
}

// GateAssertZero constrains a live wire to be zero.
type GateAssertZero struct {
	Type TypeId
	In   WireId
}

// GateCopy assigns the value of a live wire to a fresh wire.
type GateCopy struct {
	Type TypeId
	Out  WireId
	In   WireId
}

// GateAdd is field addition (arithmetic profile).
type GateAdd struct {
	Type      TypeId
	Out, L, R WireId
}

// GateMul is field multiplication (arithmetic profile).
type GateMul struct {
	Type      TypeId
	Out, L, R WireId
}

// GateAddConstant adds a literal to a live wire (arithmetic profile).
type GateAddConstant struct {
	Type     TypeId
	Out, In  WireId
	Constant Value
}

// GateMulConstant multiplies a live wire by a literal (arithmetic profile).
type GateMulConstant struct {
	Type     TypeId
	Out, In  WireId
	Constant Value
}

// GateXor is exclusive or (boolean profile).
type GateXor struct {
	Type      TypeId
	Out, L, R WireId
}

// GateAnd is conjunction (boolean profile).
type GateAnd struct {
	Type      TypeId
	Out, L, R WireId
}

// GateNot is negation (boolean profile).
type GateNot struct {
	Type    TypeId
	Out, In WireId
}

// GateInstance consumes the next pending public input value of its type.
type GateInstance struct {
	Type TypeId
	Out  WireId
}

// GateWitness consumes the next pending private input value of its type
// (prover side only).
type GateWitness struct {
	Type TypeId
	Out  WireId
}

// GateFree ends the lifetime of the wires [First, Last]. A nil Last frees
// only First.
type GateFree struct {
	Type  TypeId
	First WireId
	Last  *WireId
}

// GateNew bulk-allocates the contiguous span [First, Last] as one opaque
// range.
type GateNew struct {
	Type  TypeId
	First WireId
	Last  WireId
}

// GateConvert casts a span of wires of one type into a span of another type.
type GateConvert struct {
	Out WireRange
	In  WireRange
}

// GateCall invokes a named function on the given wire lists.
type GateCall struct {
	Name string
	Out  []WireRange
	In   []WireRange
}

// GateAnonCall invokes an inline anonymous body. The body numbers its wires
// locally: outputs first, then inputs, then locals.
type GateAnonCall struct {
	Out           []WireRange
	In            []WireRange
	InstanceCount CountMap
	WitnessCount  CountMap
	Body          []Gate
}

// GateSwitch dispatches on the value of Condition to one of the case
// branches; exactly one case value is expected to match.
type GateSwitch struct {
	Type      TypeId
	Condition WireId
	Out       []WireRange
	Cases     []Value
	Branches  []CaseBranch
}

// GateFor iterates a body over [First, Last], binding the iterator name to
// the loop counter inside the body's wire expressions.
type GateFor struct {
	Iterator string
	First    uint64
	Last     uint64
	Out      []WireRange
	Body     ForBody
}

func (GateConstant) Kind() GateKind    { return KindConstant }
func (GateAssertZero) Kind() GateKind  { return KindAssertZero }
func (GateCopy) Kind() GateKind        { return KindCopy }
func (GateAdd) Kind() GateKind         { return KindAdd }
func (GateMul) Kind() GateKind         { return KindMul }
func (GateAddConstant) Kind() GateKind { return KindAddConstant }
func (GateMulConstant) Kind() GateKind { return KindMulConstant }
func (GateXor) Kind() GateKind         { return KindXor }
func (GateAnd) Kind() GateKind         { return KindAnd }
func (GateNot) Kind() GateKind         { return KindNot }
func (GateInstance) Kind() GateKind    { return KindInstance }
func (GateWitness) Kind() GateKind     { return KindWitness }
func (GateFree) Kind() GateKind        { return KindFree }
func (GateNew) Kind() GateKind         { return KindNew }
func (GateConvert) Kind() GateKind     { return KindConvert }
func (GateCall) Kind() GateKind        { return KindCall }
func (GateAnonCall) Kind() GateKind    { return KindAnonCall }
func (GateSwitch) Kind() GateKind      { return KindSwitch }
func (GateFor) Kind() GateKind         { return KindFor }

// FreeOne frees a single wire.
func FreeOne(t TypeId, id WireId) GateFree {
	return GateFree{Type: t, First: id}
}

// FreeRange frees the inclusive span [first, last].
func FreeRange(t TypeId, first, last WireId) GateFree {
	return GateFree{Type: t, First: first, Last: &last}
}

// FreeLast returns the effective last wire of a free gate.
func (g GateFree) FreeLast() WireId {
	if g.Last != nil {
		return *g.Last
	}
	return g.First
}

// CaseBranch is one arm of a switch: either a named function invocation or
// an inline anonymous body.
type CaseBranch interface {
	caseBranch()
}

// CaseCall invokes a named function as a switch branch.
type CaseCall struct {
	Name string
	In   []WireRange
}

// CaseAnonCall runs an inline body as a switch branch.
type CaseAnonCall struct {
	In            []WireRange
	InstanceCount CountMap
	WitnessCount  CountMap
	Body          []Gate
}

func (CaseCall) caseBranch()     {}
func (CaseAnonCall) caseBranch() {}

// ForBody is the body of a For gate.
type ForBody interface {
	forBody()
}

// IterExpr is an affine expression over the loop counter: wire Base + Step*i.
type IterExpr struct {
	Base WireId
	Step uint64
}

// At resolves the expression at iteration i.
func (e IterExpr) At(i uint64) WireId {
	return e.Base + WireId(e.Step*i)
}

// IterRange is an inclusive span of iteration-dependent wires.
type IterRange struct {
	First IterExpr
	Last  IterExpr
}

// IterCall invokes a named function once per iteration.
type IterCall struct {
	Name string
	Type TypeId
	Out  []IterRange
	In   []IterRange
}

// IterAnonCall runs an inline body once per iteration.
type IterAnonCall struct {
	Type          TypeId
	Out           []IterRange
	In            []IterRange
	InstanceCount CountMap
	WitnessCount  CountMap
	Body          []Gate
}

func (IterCall) forBody()     {}
func (IterAnonCall) forBody() {}
