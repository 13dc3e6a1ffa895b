package layout

import (
	"fmt"

	"datalayout/internal/types"
)

// ErrorKind enumerates types of layout query errors.
type ErrorKind uint8

const (
	// ErrUnsized indicates a size or alignment query on an unsized type.
	ErrUnsized ErrorKind = iota + 1
	// ErrUnsupportedKind indicates a type kind the engine cannot lay out.
	ErrUnsupportedKind
	// ErrIntegerTooWide indicates an integer type wider than 64 bits.
	ErrIntegerTooWide
	// ErrNoAlignment indicates no usable alignment table entry: none of the
	// kind at or after the key, or one whose alignment is 0.
	ErrNoAlignment
	// ErrArrayLength indicates an array length that does not fit the size domain.
	ErrArrayLength
	// ErrNotStruct indicates a struct layout query on a non-struct type.
	ErrNotStruct
	// ErrNotPointer indicates an indexed-offset walk that does not start at a pointer.
	ErrNotPointer
	// ErrFieldRange indicates a struct index outside the field list.
	ErrFieldRange
	// ErrNotIndexable indicates an index applied to a non-composite type.
	ErrNotIndexable
	// ErrPointerSize indicates a pointer size with no matching integer type.
	ErrPointerSize
)

// Error represents an error during a layout query.
type Error struct {
	Kind  ErrorKind
	Type  types.TypeID
	Bits  uint32    // for ErrIntegerTooWide, ErrNoAlignment
	Align AlignKind // for ErrNoAlignment
	Index int64     // for ErrFieldRange, ErrNotIndexable
	Size  int       // for ErrPointerSize (pointer size in bytes)
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnsized:
		return fmt.Sprintf("cannot compute layout of unsized type (type#%d)", e.Type)
	case ErrUnsupportedKind:
		return fmt.Sprintf("unsupported type kind for layout (type#%d)", e.Type)
	case ErrIntegerTooWide:
		return fmt.Sprintf("integer types wider than 64 bits are not supported (i%d, type#%d)", e.Bits, e.Type)
	case ErrNoAlignment:
		return fmt.Sprintf("no %s alignment entry at or after %d bits (type#%d)", e.Align, e.Bits, e.Type)
	case ErrArrayLength:
		return fmt.Sprintf("array length out of range (type#%d)", e.Type)
	case ErrNotStruct:
		return fmt.Sprintf("struct layout requested for non-struct type (type#%d)", e.Type)
	case ErrNotPointer:
		return fmt.Sprintf("indexed offset must start at a pointer type (type#%d)", e.Type)
	case ErrFieldRange:
		return fmt.Sprintf("struct field index %d out of range (type#%d)", e.Index, e.Type)
	case ErrNotIndexable:
		return fmt.Sprintf("index %d applied to non-indexable type (type#%d)", e.Index, e.Type)
	case ErrPointerSize:
		return fmt.Sprintf("no integer type matches pointer size %d", e.Size)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}
