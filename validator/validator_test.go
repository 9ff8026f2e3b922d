package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

func TestValidatorSampleIsClean(t *testing.T) {
	v := NewProver()
	v.IngestInstance(ir.SampleInstance())
	v.IngestWitness(ir.SampleWitness())
	v.IngestRelation(ir.SampleRelation())

	assert.Empty(t, v.Violations())
}

func TestValidatorSampleAsVerifier(t *testing.T) {
	v := NewVerifier()
	v.IngestInstance(ir.SampleInstance())
	v.IngestRelation(ir.SampleRelation())

	assert.Empty(t, v.Violations())
}

func TestValidatorViolations(t *testing.T) {
	instance := ir.SampleInstance()
	witness := ir.SampleWitness()
	relation := ir.SampleRelation()

	// A value as large as the characteristic is not a field element.
	instance.Inputs[0].Values[0] = ir.Literal32(ir.SampleModulus)
	// Omitting a witness value starves the second Witness gate.
	witness.Inputs[0].Values = witness.Inputs[0].Values[:1]
	// Diverging headers across messages.
	relation.Header.Fields[0].Characteristic = ir.Value{10}

	v := NewProver()
	v.IngestInstance(instance)
	v.IngestWitness(witness)
	v.IngestRelation(relation)

	assert.Equal(t, []string{
		"The instance value [101 0 0 0] cannot be represented in the field specified in Header (101 >= 101).",
		"The field_characteristic field is not consistent across headers.",
		"No value available for the Witness wire 2",
	}, v.Violations())
}

func TestValidatorFreeViolations(t *testing.T) {
	relation := ir.SampleRelation()
	relation.Gates = append(relation.Gates,
		ir.FreeRange(0, 1, 2),
		ir.FreeOne(0, 4),
	)

	v := NewProver()
	v.IngestInstance(ir.SampleInstance())
	v.IngestWitness(ir.SampleWitness())
	v.IngestRelation(relation)

	assert.Equal(t, []string{
		"The wire 1 is used but was not assigned a value, or has been freed already.",
		"The wire 2 is used but was not assigned a value, or has been freed already.",
		"The wire 4 is used but was not assigned a value, or has been freed already.",
	}, v.Violations())
}

func TestValidatorSSA(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(1)},
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(2)},
			ir.FreeRange(0, 0, 0),
		},
	}

	v := NewProver()
	v.IngestRelation(relation)

	assert.Equal(t, []string{
		"The wire 0 has already been initialized before. This violates the SSA property.",
	}, v.Violations())
}

func TestValidatorProfileMismatch(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.NewGateSet(ir.KindXor),
		Gates: []ir.Gate{
			ir.GateConstant{Type: 0, Out: 0, Value: ir.Literal32(1)},
			ir.GateConstant{Type: 0, Out: 1, Value: ir.Literal32(1)},
			ir.GateXor{Type: 0, Out: 2, L: 0, R: 1},
			ir.FreeRange(0, 0, 2),
		},
	}

	v := NewProver()
	v.IngestRelation(relation)

	violations := v.Violations()
	require.Len(t, violations, 2)
	assert.Equal(t, "The declared gate set uses boolean gates over a field of characteristic != 2.", violations[0])
	assert.Equal(t, "Boolean gate found (Xor), while arithmetic circuit.", violations[1])
}

func TestValidatorVersionFormat(t *testing.T) {
	header := ir.SampleHeader()
	header.Version = "1.0"

	v := NewVerifier()
	v.IngestInstance(&ir.Instance{Header: header, Inputs: []ir.Inputs{{}}})

	assert.Equal(t, []string{
		"The profile version should match the following format <major>.<minor>.<patch>.",
	}, v.Violations())
}

func TestValidatorBN254Header(t *testing.T) {
	header := ir.SampleHeaderBN254()
	modulus := header.Fields[0].Characteristic

	instance := &ir.Instance{
		Header: header,
		Inputs: []ir.Inputs{{Values: []ir.Value{ir.EncodeNegativeOne(modulus)}}},
	}
	relation := &ir.Relation{
		Header:  header,
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateInstance{Type: 0, Out: 0},
			ir.FreeOne(0, 0),
		},
	}

	v := NewProver()
	v.IngestInstance(instance)
	v.IngestRelation(relation)
	assert.Empty(t, v.Violations())

	// The modulus itself no longer fits.
	bad := NewProver()
	bad.IngestInstance(&ir.Instance{
		Header: header,
		Inputs: []ir.Inputs{{Values: []ir.Value{modulus}}},
	})
	violations := bad.Violations()
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0], "cannot be represented in the field specified in Header")
	assert.Equal(t, "Too many Instance values (1 not consumed)", violations[1])
}

func TestValidatorNextTemporaryWire(t *testing.T) {
	v := NewVerifier()
	v.IngestRelation(ir.SampleRelation())

	assert.Equal(t, uint64(9), v.NextTemporaryWire())
}

func TestValidatorUnknownFunction(t *testing.T) {
	relation := &ir.Relation{
		Header:  ir.SampleHeader(),
		GateSet: ir.ArithmeticGateSet(),
		Gates: []ir.Gate{
			ir.GateCall{Name: "missing", Out: []ir.WireRange{ir.SingleWire(0, 0)}},
			ir.FreeOne(0, 0),
		},
	}

	v := NewVerifier()
	v.IngestRelation(relation)

	assert.Equal(t, []string{"The function missing is not declared."}, v.Violations())
}
