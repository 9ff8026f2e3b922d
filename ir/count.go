package ir

// Count declares how many wires (or input values) of one type a construct
// uses.
type Count struct {
	Type  TypeId
	Count uint64
}

// NewCount returns a Count.
func NewCount(t TypeId, n uint64) Count {
	return Count{Type: t, Count: n}
}

// CountMap is an unordered per-type tally, used for the instance/witness
// consumption recorded in function signatures and anonymous calls.
type CountMap map[TypeId]uint64

// Clone returns a copy of the map. A nil map clones to nil.
func (m CountMap) Clone() CountMap {
	if m == nil {
		return nil
	}
	c := make(CountMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Total sums the tallies over all types.
func (m CountMap) Total() uint64 {
	var n uint64
	for _, v := range m {
		n += v
	}
	return n
}

// CountsMatchRanges checks that a wire list supplies exactly the per-type
// wire counts of a declaration. Order of ranges does not matter; the sums per
// type id must match exactly.
func CountsMatchRanges(ranges []WireRange, counts []Count) bool {
	got := make(CountMap)
	for _, r := range ranges {
		got[r.Type] += r.Count()
	}
	want := make(CountMap)
	for _, c := range counts {
		want[c.Type] += c.Count
	}
	if len(got) != len(want) {
		return false
	}
	for t, n := range want {
		if got[t] != n {
			return false
		}
	}
	return true
}
