package layout

import (
	"datalayout/internal/types"
)

// IndexedOffset walks a list of indices through the pointee of ptr and
// returns the accumulated byte offset from the base address. The first
// index steps through the pointee; each later index either selects a
// struct field or an element of a sequential type. Sequential indices are
// signed and scale by the element size; struct indices must address an
// existing field.
func (e *Engine) IndexedOffset(ptr types.TypeID, indices []int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("indexed-offset", ptr)

	tt, ok := e.types.Lookup(ptr)
	if !ok || tt.Kind != types.KindPointer {
		return 0, wrap(&Error{Kind: ErrNotPointer, Type: ptr})
	}

	cur := ptr
	var offset int64
	for _, idx := range indices {
		ct, ok := e.types.Lookup(cur)
		if !ok {
			return 0, wrap(&Error{Kind: ErrUnsupportedKind, Type: cur})
		}
		switch ct.Kind {
		case types.KindStruct:
			if !e.types.IsSized(cur) {
				return 0, wrap(&Error{Kind: ErrUnsized, Type: cur})
			}
			fieldType, ok := e.types.FieldType(cur, fieldIndex(idx))
			if !ok {
				return 0, wrap(&Error{Kind: ErrFieldRange, Type: cur, Index: idx})
			}
			sl, err := e.structLayout(cur)
			if err != nil {
				return 0, wrap(err)
			}
			offset += sl.Offsets[idx]
			cur = fieldType

		case types.KindPointer, types.KindArray, types.KindVector:
			elem := ct.Elem
			if elem == types.NoTypeID {
				return 0, wrap(&Error{Kind: ErrNotIndexable, Type: cur, Index: idx})
			}
			elemSize, err := e.sizeOf(elem)
			if err != nil {
				return 0, wrap(err)
			}
			offset += idx * elemSize
			cur = elem

		default:
			return 0, wrap(&Error{Kind: ErrNotIndexable, Type: cur, Index: idx})
		}
	}
	return offset, nil
}

// fieldIndex narrows a signed index to a field position; negative values
// map to -1 so the field lookup rejects them.
func fieldIndex(idx int64) int {
	if idx < 0 || idx > int64(int(^uint(0)>>1)) {
		return -1
	}
	return int(idx)
}
