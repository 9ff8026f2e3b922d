package ir

// Profile names restrict a relation to one of the two primitive gate
// vocabularies.
const (
	ProfileArithmetic = "arithmetic"
	ProfileBoolean    = "boolean"
)

// Field describes one finite field: an arbitrary-precision characteristic
// (little-endian bytes) and an extension degree. This IR revision only
// supports degree 1.
type Field struct {
	Characteristic Value
	Degree         uint32
}

// Header carries the per-run metadata shared by every message of a stream.
// Each field descriptor is addressed by its index as a TypeId.
type Header struct {
	Version string
	Profile string
	Fields  []Field
}

// NewHeader builds an arithmetic header over the given moduli with the
// current IR version.
func NewHeader(moduli ...Value) Header {
	fields := make([]Field, len(moduli))
	for i, m := range moduli {
		fields[i] = Field{Characteristic: m, Degree: 1}
	}
	return Header{
		Version: IRVersion,
		Profile: ProfileArithmetic,
		Fields:  fields,
	}
}
