// Package sink is the boundary between the IR core and message transport:
// a Sink accepts decoded messages one at a time, in arbitrary order across
// kinds, and a Source yields them back. The stream codec here is an adapter
// concern; the core only ever sees the decoded structures.
package sink

import (
	"github.com/GaloisInc/zkinterface-sieve/ir"
)

// Sink receives IR messages one at a time.
type Sink interface {
	PushInstance(*ir.Instance) error
	PushWitness(*ir.Witness) error
	PushRelation(*ir.Relation) error
}

// MemorySink retains every pushed message in arrival order.
type MemorySink struct {
	messages []ir.Message
}

func (s *MemorySink) PushInstance(m *ir.Instance) error {
	s.messages = append(s.messages, m)
	return nil
}

func (s *MemorySink) PushWitness(m *ir.Witness) error {
	s.messages = append(s.messages, m)
	return nil
}

func (s *MemorySink) PushRelation(m *ir.Relation) error {
	s.messages = append(s.messages, m)
	return nil
}

// Messages returns the retained messages in arrival order.
func (s *MemorySink) Messages() []ir.Message {
	return s.messages
}

// Relations filters the retained messages down to relations.
func (s *MemorySink) Relations() []*ir.Relation {
	var out []*ir.Relation
	for _, m := range s.messages {
		if r, ok := m.(*ir.Relation); ok {
			out = append(out, r)
		}
	}
	return out
}

// Instances filters the retained messages down to instance messages.
func (s *MemorySink) Instances() []*ir.Instance {
	var out []*ir.Instance
	for _, m := range s.messages {
		if i, ok := m.(*ir.Instance); ok {
			out = append(out, i)
		}
	}
	return out
}

// Witnesses filters the retained messages down to witness messages.
func (s *MemorySink) Witnesses() []*ir.Witness {
	var out []*ir.Witness
	for _, m := range s.messages {
		if w, ok := m.(*ir.Witness); ok {
			out = append(out, w)
		}
	}
	return out
}
