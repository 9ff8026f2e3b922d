package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

const (
	msgInstance = 1
	msgWitness  = 2
	msgRelation = 3
)

type envelope struct {
	Kind     uint8        `cbor:"1,keyasint"`
	Instance *ir.Instance `cbor:"2,keyasint,omitempty"`
	Witness  *ir.Witness  `cbor:"3,keyasint,omitempty"`
	Relation *relationRec `cbor:"4,keyasint,omitempty"`
}

// StreamSink encodes each pushed message as one CBOR envelope on an
// underlying writer. Messages appear on the wire in push order.
type StreamSink struct {
	enc *cbor.Encoder
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{enc: cbor.NewEncoder(w)}
}

func (s *StreamSink) PushInstance(m *ir.Instance) error {
	return s.enc.Encode(envelope{Kind: msgInstance, Instance: m})
}

func (s *StreamSink) PushWitness(m *ir.Witness) error {
	return s.enc.Encode(envelope{Kind: msgWitness, Witness: m})
}

func (s *StreamSink) PushRelation(m *ir.Relation) error {
	return s.enc.Encode(envelope{Kind: msgRelation, Relation: relationToRec(m)})
}

// Source decodes messages back out of a CBOR envelope stream.
type Source struct {
	dec *cbor.Decoder
}

func NewSource(r io.Reader) *Source {
	return &Source{dec: cbor.NewDecoder(r)}
}

// Next decodes one message. It returns io.EOF once the stream is exhausted.
func (s *Source) Next() (ir.Message, error) {
	var env envelope
	if err := s.dec.Decode(&env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case msgInstance:
		if env.Instance == nil {
			return nil, fmt.Errorf("instance envelope without a payload")
		}
		return env.Instance, nil
	case msgWitness:
		if env.Witness == nil {
			return nil, fmt.Errorf("witness envelope without a payload")
		}
		return env.Witness, nil
	case msgRelation:
		if env.Relation == nil {
			return nil, fmt.Errorf("relation envelope without a payload")
		}
		return recToRelation(env.Relation)
	default:
		return nil, fmt.Errorf("unknown message kind %d in stream", env.Kind)
	}
}

// ReadAll drains the source, pushing every message into the sink.
func ReadAll(s *Source, dst Sink) error {
	for {
		msg, err := s.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case *ir.Instance:
			err = dst.PushInstance(m)
		case *ir.Witness:
			err = dst.PushWitness(m)
		case *ir.Relation:
			err = dst.PushRelation(m)
		}
		if err != nil {
			return err
		}
	}
}
