package ir

// FunctionBody is either a gate sequence or an opaque plugin descriptor.
type FunctionBody interface {
	functionBody()
}

// GateBody is a function body made of ordinary gates, numbered locally:
// declared outputs occupy the lowest ids, inputs follow, locals come after.
type GateBody struct {
	Gates []Gate
}

// PluginBody is an externally defined gate family. The validator and builder
// treat it as a signature only; its semantics are a collaborator's concern.
type PluginBody struct {
	Name      string
	Operation string
	Params    []string
}

func (GateBody) functionBody()    {}
func (*PluginBody) functionBody() {}

// Function is a reusable subcircuit. All four count fields are part of the
// signature so a call site can be checked without inspecting the body.
type Function struct {
	Name          string
	OutputCount   []Count
	InputCount    []Count
	InstanceCount CountMap
	WitnessCount  CountMap
	Body          FunctionBody
}

// NewFunction builds a gate-bodied function.
func NewFunction(name string, outputCount, inputCount []Count, instanceCount, witnessCount CountMap, gates []Gate) Function {
	return Function{
		Name:          name,
		OutputCount:   outputCount,
		InputCount:    inputCount,
		InstanceCount: instanceCount,
		WitnessCount:  witnessCount,
		Body:          GateBody{Gates: gates},
	}
}

// Signature is the callable surface of a declared function.
type Signature struct {
	OutputCount   []Count
	InputCount    []Count
	InstanceCount CountMap
	WitnessCount  CountMap
}

// Signature extracts the function's signature.
func (f *Function) Signature() Signature {
	return Signature{
		OutputCount:   f.OutputCount,
		InputCount:    f.InputCount,
		InstanceCount: f.InstanceCount,
		WitnessCount:  f.WitnessCount,
	}
}

// Conversion declares one legal cross-type cast shape: a span of In.Count
// wires of type In.Type converts into Out.Count wires of type Out.Type.
type Conversion struct {
	Out Count
	In  Count
}

// NewConversion returns a Conversion.
func NewConversion(out, in Count) Conversion {
	return Conversion{Out: out, In: in}
}
