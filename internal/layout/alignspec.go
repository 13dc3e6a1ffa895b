package layout

import (
	"fmt"
	"slices"
)

// AlignKind classifies a type for alignment-table purposes. The order of
// the constants is the sort order of the table and therefore the order of
// entries in the canonical printed descriptor.
type AlignKind uint8

const (
	AlignInteger AlignKind = iota
	AlignFloat
	AlignVector
	AlignAggregate
)

// Char returns the descriptor-string character for the kind.
func (k AlignKind) Char() byte {
	switch k {
	case AlignInteger:
		return 'i'
	case AlignFloat:
		return 'f'
	case AlignVector:
		return 'v'
	case AlignAggregate:
		return 'a'
	default:
		return '?'
	}
}

func (k AlignKind) String() string {
	switch k {
	case AlignInteger:
		return "integer"
	case AlignFloat:
		return "float"
	case AlignVector:
		return "vector"
	case AlignAggregate:
		return "aggregate"
	default:
		return fmt.Sprintf("AlignKind(%d)", k)
	}
}

// AlignSpec is one alignment record: for a (kind, bit width) pair it gives
// the ABI and preferred alignments in bytes.
type AlignSpec struct {
	Kind AlignKind
	Bits uint32
	ABI  int
	Pref int
}

// alignTable is kept sorted by (Kind, Bits); at most one record exists per
// key, later writes update in place.
type alignTable []AlignSpec

func compareAlignKey(a AlignSpec, kind AlignKind, bits uint32) int {
	if a.Kind != kind {
		if a.Kind < kind {
			return -1
		}
		return 1
	}
	if a.Bits != bits {
		if a.Bits < bits {
			return -1
		}
		return 1
	}
	return 0
}

// set inserts or overwrites the record for (kind, bits).
func (t *alignTable) set(kind AlignKind, bits uint32, abi, pref int) {
	idx, found := slices.BinarySearchFunc(*t, AlignSpec{Kind: kind, Bits: bits}, func(a, key AlignSpec) int {
		return compareAlignKey(a, key.Kind, key.Bits)
	})
	if found {
		(*t)[idx].ABI = abi
		(*t)[idx].Pref = pref
		return
	}
	*t = slices.Insert(*t, idx, AlignSpec{Kind: kind, Bits: bits, ABI: abi, Pref: pref})
}

// lookup returns the record for (kind, bits). On a miss it returns the
// next record of the same kind with a larger bit width, so a query for a
// width between two declared entries rounds up to the nearest declared
// alignment. ok is false when no record of the kind is at or after the key.
func (t alignTable) lookup(kind AlignKind, bits uint32) (AlignSpec, bool) {
	idx, _ := slices.BinarySearchFunc(t, AlignSpec{Kind: kind, Bits: bits}, func(a, key AlignSpec) int {
		return compareAlignKey(a, key.Kind, key.Bits)
	})
	if idx >= len(t) || t[idx].Kind != kind {
		return AlignSpec{}, false
	}
	return t[idx], true
}

// clone returns an independent copy of the table.
func (t alignTable) clone() alignTable {
	return slices.Clone(t)
}
