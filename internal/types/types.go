package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of IR types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindLabel
	KindInteger
	KindFloat
	KindDouble
	KindVector
	KindPointer
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindLabel:
		return "label"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindVector:
		return "vector"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact structural descriptor for any supported type.
//
// Struct types are nominal: Payload indexes the interner's struct info
// table and two distinct registrations never compare equal.
type Type struct {
	Kind    Kind
	Elem    TypeID // element type for pointer/array/vector-of
	Bits    uint32 // bit width for integer and vector types
	Count   uint64 // element count for arrays
	Payload uint32 // struct info slot for struct types
}

// Descriptor helpers ---------------------------------------------------------

// MakeInteger describes an integer type of the given bit width.
func MakeInteger(bits uint32) Type {
	return Type{Kind: KindInteger, Bits: bits}
}

// MakeVector describes a fixed-width vector type. The width is the total
// bit width of the vector, which must be a multiple of 8.
func MakeVector(bits uint32) Type {
	return Type{Kind: KindVector, Bits: bits}
}

// MakePointer describes a pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeArray describes an array of count elements of type elem.
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}
