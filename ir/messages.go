package ir

// Inputs is the ordered list of values supplied for one type id.
type Inputs struct {
	Values []Value
}

// Instance carries public input values, consumed left-to-right by Instance
// gates. Inputs is indexed by type id, aligned with the header's field list.
type Instance struct {
	Header Header
	Inputs []Inputs
}

// Witness carries private input values, consumed left-to-right by Witness
// gates. Witness messages only exist on the prover side.
type Witness struct {
	Header Header
	Inputs []Inputs
}

// Relation is the circuit itself: a header, the declared gate vocabulary,
// the gate sequence, and the tables of named functions, legal conversions
// and plugin families.
type Relation struct {
	Header      Header
	GateSet     GateSet
	Gates       []Gate
	Functions   []Function
	Conversions []Conversion
	Plugins     []string
}

func countValues(inputs []Inputs) uint64 {
	var n uint64
	for _, in := range inputs {
		n += uint64(len(in.Values))
	}
	return n
}

// ValueCount returns the total number of public values in the message.
func (m *Instance) ValueCount() uint64 { return countValues(m.Inputs) }

// ValueCount returns the total number of private values in the message.
func (m *Witness) ValueCount() uint64 { return countValues(m.Inputs) }
