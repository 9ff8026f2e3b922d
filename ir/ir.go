// Package ir defines the in-memory form of the SIEVE circuit intermediate
// representation: field descriptors, wire ranges, the gate sum type, and the
// three message kinds (instance, witness, relation) that a stream of IR
// fragments is made of. Every message carries the shared header.
package ir

// TypeId identifies one of the field descriptors declared in a header.
type TypeId uint8

// WireId names a value slot within the namespace of one type id.
type WireId uint64

// IRVersion is the IR revision this package implements.
const IRVersion = "1.0.0"

// Message is one element of an IR stream.
type Message interface {
	message()
}

func (*Instance) message() {}
func (*Witness) message()  {}
func (*Relation) message() {}
