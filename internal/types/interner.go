package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Label   TypeID
	Float   TypeID
	Double  TypeID
	Int1    TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Label = in.Intern(Type{Kind: KindLabel})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.Int1 = in.Intern(MakeInteger(1))
	in.builtins.Int8 = in.Intern(MakeInteger(8))
	in.builtins.Int16 = in.Intern(MakeInteger(16))
	in.builtins.Int32 = in.Intern(MakeInteger(32))
	in.builtins.Int64 = in.Intern(MakeInteger(64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind of the type, or KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Integer interns an integer type of the given bit width.
func (in *Interner) Integer(bits uint32) TypeID {
	return in.Intern(MakeInteger(bits))
}

// Vector interns a vector type of the given total bit width.
func (in *Interner) Vector(bits uint32) TypeID {
	return in.Intern(MakeVector(bits))
}

// VectorOf interns a vector of count elements of elem, recording both the
// element type (for indexing) and the total bit width (for layout). Only
// integer and floating-point elements are supported.
func (in *Interner) VectorOf(elem TypeID, count uint64) (TypeID, bool) {
	tt, ok := in.Lookup(elem)
	if !ok {
		return NoTypeID, false
	}
	var elemBits uint64
	switch tt.Kind {
	case KindInteger:
		elemBits = uint64(tt.Bits)
	case KindFloat:
		elemBits = 32
	case KindDouble:
		elemBits = 64
	default:
		return NoTypeID, false
	}
	total := elemBits * count
	bits, err := safecast.Conv[uint32](total)
	if err != nil {
		return NoTypeID, false
	}
	return in.Intern(Type{Kind: KindVector, Elem: elem, Count: count, Bits: bits}), true
}

// Pointer interns a pointer to elem.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// Array interns an array of count elements of elem.
func (in *Interner) Array(elem TypeID, count uint64) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// BitWidth returns the declared bit width of an integer or vector type.
func (in *Interner) BitWidth(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindInteger && tt.Kind != KindVector) {
		return 0, false
	}
	return tt.Bits, true
}

// Elem returns the element type of a pointer or array type.
func (in *Interner) Elem(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindPointer && tt.Kind != KindArray) {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// ArrayInfo returns the element type and length of an array type.
func (in *Interner) ArrayInfo(id TypeID) (TypeID, uint64, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return NoTypeID, 0, false
	}
	return tt.Elem, tt.Count, true
}
