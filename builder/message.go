// Package builder provides the emission side of the IR: a gate builder that
// allocates wires, checks call sites against declared signatures, and streams
// the resulting messages through a sink in bounded chunks.
package builder

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/sink"
)

// DefaultMaxLen is the flush threshold for buffered values and gates.
const DefaultMaxLen = 100000

// MessageBuilder buffers input values and gates, emitting a message to the
// sink whenever a buffer reaches MaxLen. Every emitted message repeats the
// header so each one is self-describing.
type MessageBuilder struct {
	sink    sink.Sink
	header  ir.Header
	gateSet ir.GateSet

	// MaxLen caps how many values or gates a single message carries.
	MaxLen int

	instanceValues []ir.Inputs
	witnessValues  []ir.Inputs
	instanceLen    int
	witnessLen     int

	gates       []ir.Gate
	functions   []ir.Function
	conversions []ir.Conversion
	plugins     []string

	relationsSent int
}

// NewMessageBuilder wraps a sink. The header fixes the number of field types
// for the whole stream.
func NewMessageBuilder(s sink.Sink, header ir.Header, gateSet ir.GateSet) *MessageBuilder {
	n := len(header.Fields)
	return &MessageBuilder{
		sink:           s,
		header:         header,
		gateSet:        gateSet,
		MaxLen:         DefaultMaxLen,
		instanceValues: make([]ir.Inputs, n),
		witnessValues:  make([]ir.Inputs, n),
	}
}

func (b *MessageBuilder) checkType(t ir.TypeId) error {
	if int(t) >= len(b.header.Fields) {
		return fmt.Errorf("type id %d out of range, the header declares %d fields", t, len(b.header.Fields))
	}
	return nil
}

// PushInstanceValue buffers one instance value for the given type.
func (b *MessageBuilder) PushInstanceValue(t ir.TypeId, value ir.Value) error {
	if err := b.checkType(t); err != nil {
		return err
	}
	b.instanceValues[t].Values = append(b.instanceValues[t].Values, value)
	b.instanceLen++
	if b.instanceLen >= b.MaxLen {
		return b.flushInstance()
	}
	return nil
}

// PushWitnessValue buffers one witness value for the given type.
func (b *MessageBuilder) PushWitnessValue(t ir.TypeId, value ir.Value) error {
	if err := b.checkType(t); err != nil {
		return err
	}
	b.witnessValues[t].Values = append(b.witnessValues[t].Values, value)
	b.witnessLen++
	if b.witnessLen >= b.MaxLen {
		return b.flushWitness()
	}
	return nil
}

// PushGate buffers one gate.
func (b *MessageBuilder) PushGate(g ir.Gate) error {
	b.gates = append(b.gates, g)
	if len(b.gates) >= b.MaxLen {
		return b.flushRelation()
	}
	return nil
}

// PushFunction buffers a function declaration. It rides in the next relation
// message, ahead of any gate that calls it.
func (b *MessageBuilder) PushFunction(f ir.Function) error {
	b.functions = append(b.functions, f)
	return nil
}

// PushConversion records a declared conversion. Conversions are carried in
// every relation message.
func (b *MessageBuilder) PushConversion(c ir.Conversion) {
	b.conversions = append(b.conversions, c)
}

// PushPlugin records a declared plugin name.
func (b *MessageBuilder) PushPlugin(name string) {
	b.plugins = append(b.plugins, name)
}

func (b *MessageBuilder) flushInstance() error {
	logrus.Debugf("flushing instance message with %d values", b.instanceLen)
	msg := &ir.Instance{Header: b.header, Inputs: b.instanceValues}
	b.instanceValues = make([]ir.Inputs, len(b.header.Fields))
	b.instanceLen = 0
	return b.sink.PushInstance(msg)
}

func (b *MessageBuilder) flushWitness() error {
	logrus.Debugf("flushing witness message with %d values", b.witnessLen)
	msg := &ir.Witness{Header: b.header, Inputs: b.witnessValues}
	b.witnessValues = make([]ir.Inputs, len(b.header.Fields))
	b.witnessLen = 0
	return b.sink.PushWitness(msg)
}

func (b *MessageBuilder) flushRelation() error {
	logrus.Debugf("flushing relation message with %d gates and %d functions", len(b.gates), len(b.functions))
	msg := &ir.Relation{
		Header:      b.header,
		GateSet:     b.gateSet,
		Gates:       b.gates,
		Functions:   b.functions,
		Conversions: b.conversions,
		Plugins:     b.plugins,
	}
	b.gates = nil
	b.functions = nil
	b.relationsSent++
	return b.sink.PushRelation(msg)
}

// Finish flushes everything still buffered. At least one relation message is
// always emitted so the stream carries the circuit header even when empty.
func (b *MessageBuilder) Finish() error {
	if b.instanceLen > 0 {
		if err := b.flushInstance(); err != nil {
			return err
		}
	}
	if b.witnessLen > 0 {
		if err := b.flushWitness(); err != nil {
			return err
		}
	}
	if len(b.gates) > 0 || len(b.functions) > 0 || b.relationsSent == 0 {
		return b.flushRelation()
	}
	return nil
}
