package ir

// TypedWire is a wire id qualified by the type id whose namespace it lives
// in. The same numeric id may be live under two type ids at once.
type TypedWire struct {
	Type TypeId
	Id   WireId
}

// WireRange is an inclusive span of wire ids within one type namespace. A
// single wire is the range First == Last.
type WireRange struct {
	Type  TypeId
	First WireId
	Last  WireId
}

// SingleWire returns the one-element range holding id.
func SingleWire(t TypeId, id WireId) WireRange {
	return WireRange{Type: t, First: id, Last: id}
}

// NewWireRange returns the inclusive range [first, last].
func NewWireRange(t TypeId, first, last WireId) WireRange {
	return WireRange{Type: t, First: first, Last: last}
}

// Count returns the number of wires in the range.
func (r WireRange) Count() uint64 {
	return uint64(r.Last) - uint64(r.First) + 1
}

// Contains reports whether the range covers the given wire.
func (r WireRange) Contains(t TypeId, id WireId) bool {
	return r.Type == t && r.First <= id && id <= r.Last
}

// ExpandRanges flattens a wire list into individual typed wires, in order.
func ExpandRanges(ranges []WireRange) []TypedWire {
	var wires []TypedWire
	for _, r := range ranges {
		for id := r.First; ; id++ {
			wires = append(wires, TypedWire{Type: r.Type, Id: id})
			if id == r.Last {
				break
			}
		}
	}
	return wires
}

// ReplaceWireInRanges rewrites every occurrence of (t, old) in a wire list to
// newId. A range that covers old is split around it so that the surrounding
// wires keep their original ids.
func ReplaceWireInRanges(ranges []WireRange, t TypeId, old, newId WireId) []WireRange {
	out := make([]WireRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.Contains(t, old) {
			out = append(out, r)
			continue
		}
		if old > r.First {
			out = append(out, NewWireRange(r.Type, r.First, old-1))
		}
		out = append(out, SingleWire(r.Type, newId))
		if old < r.Last {
			out = append(out, NewWireRange(r.Type, old+1, r.Last))
		}
	}
	return out
}
