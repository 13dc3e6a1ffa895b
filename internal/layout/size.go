package layout

import (
	"fmt"

	"fortio.org/safecast"

	"datalayout/internal/trace"
	"datalayout/internal/types"
)

// wrap converts a typed layout error into a plain error without producing
// a non-nil interface around a nil pointer.
func wrap(err *Error) error {
	if err == nil {
		return nil
	}
	return err
}

// SizeOf returns the number of bytes a value of the type occupies in
// memory, including any interior padding for composites.
func (e *Engine) SizeOf(t types.TypeID) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("size", t)
	if !e.types.IsSized(t) {
		return 0, wrap(&Error{Kind: ErrUnsized, Type: t})
	}
	size, err := e.sizeOf(t)
	return size, wrap(err)
}

// BitSizeOf returns the size of the type in bits. Integer types report
// their declared bit width (i1 is 1 bit, i24 is 24); every other type
// reports eight times its byte size.
func (e *Engine) BitSizeOf(t types.TypeID) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("bitsize", t)
	if !e.types.IsSized(t) {
		return 0, wrap(&Error{Kind: ErrUnsized, Type: t})
	}
	if tt, ok := e.types.Lookup(t); ok && tt.Kind == types.KindInteger {
		return int64(tt.Bits), nil
	}
	size, err := e.sizeOf(t)
	if err != nil {
		return 0, wrap(err)
	}
	return size * 8, nil
}

// ABIAlignOf returns the alignment in bytes the type must have inside an
// aggregate or when passed as an argument.
func (e *Engine) ABIAlignOf(t types.TypeID) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("abi-align", t)
	if !e.types.IsSized(t) {
		return 0, wrap(&Error{Kind: ErrUnsized, Type: t})
	}
	align, err := e.alignOf(t, true)
	return align, wrap(err)
}

// PrefAlignOf returns the alignment in bytes preferred when a value of
// the type is emitted standalone, such as a global.
func (e *Engine) PrefAlignOf(t types.TypeID) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("pref-align", t)
	if !e.types.IsSized(t) {
		return 0, wrap(&Error{Kind: ErrUnsized, Type: t})
	}
	align, err := e.alignOf(t, false)
	return align, wrap(err)
}

func (e *Engine) emitQuery(name string, t types.TypeID) {
	if e.tracer.Enabled() {
		e.tracer.Emit(&trace.Event{Scope: trace.ScopeQuery, Name: name, Detail: fmt.Sprintf("type#%d", t)})
	}
}

// sizeOf computes byte sizes with e.mu held.
func (e *Engine) sizeOf(t types.TypeID) (int64, *Error) {
	tt, ok := e.types.Lookup(t)
	if !ok {
		return 0, &Error{Kind: ErrUnsupportedKind, Type: t}
	}
	switch tt.Kind {
	case types.KindLabel, types.KindPointer:
		return int64(e.ptrSize), nil

	case types.KindVoid:
		if e.unsizedVoid {
			return 0, &Error{Kind: ErrUnsized, Type: t}
		}
		// One byte, so pointer arithmetic over void remains byte
		// arithmetic.
		return 1, nil

	case types.KindFloat:
		return 4, nil

	case types.KindDouble:
		return 8, nil

	case types.KindInteger:
		switch {
		case tt.Bits <= 8:
			return 1, nil
		case tt.Bits <= 16:
			return 2, nil
		case tt.Bits <= 32:
			return 4, nil
		case tt.Bits <= 64:
			return 8, nil
		default:
			return 0, &Error{Kind: ErrIntegerTooWide, Type: t, Bits: tt.Bits}
		}

	case types.KindVector:
		return int64(tt.Bits / 8), nil

	case types.KindArray:
		elemSize, err := e.sizeOf(tt.Elem)
		if err != nil {
			return 0, err
		}
		elemAlign, err := e.alignOf(tt.Elem, true)
		if err != nil {
			return 0, err
		}
		stride := roundUp(elemSize, int64(elemAlign))
		count, convErr := safecast.Conv[int64](tt.Count)
		if convErr != nil {
			return 0, &Error{Kind: ErrArrayLength, Type: t}
		}
		return stride * count, nil

	case types.KindStruct:
		sl, err := e.structLayout(t)
		if err != nil {
			return 0, err
		}
		return sl.Size, nil

	default:
		return 0, &Error{Kind: ErrUnsupportedKind, Type: t}
	}
}

// alignOf computes alignments with e.mu held. abi selects between the ABI
// and preferred flavors.
func (e *Engine) alignOf(t types.TypeID, abi bool) (int, *Error) {
	tt, ok := e.types.Lookup(t)
	if !ok {
		return 0, &Error{Kind: ErrUnsupportedKind, Type: t}
	}
	switch tt.Kind {
	case types.KindLabel, types.KindPointer:
		if abi {
			return e.ptrABIAlign, nil
		}
		return e.ptrPrefAlign, nil

	case types.KindArray:
		// Arrays inherit the alignment of their element.
		return e.alignOf(tt.Elem, abi)

	case types.KindStruct:
		sl, err := e.structLayout(t)
		if err != nil {
			return 0, err
		}
		agg, ok := e.aligns.lookup(AlignAggregate, 0)
		if !ok {
			return 0, &Error{Kind: ErrNoAlignment, Type: t, Align: AlignAggregate}
		}
		// The aggregate entry can raise the alignment dictated by the
		// fields, never lower it.
		chosen := agg.ABI
		if !abi {
			chosen = agg.Pref
		}
		if chosen < sl.Align {
			return sl.Align, nil
		}
		return chosen, nil

	case types.KindInteger, types.KindVoid:
		return e.tableAlign(AlignInteger, t, abi)

	case types.KindFloat, types.KindDouble:
		return e.tableAlign(AlignFloat, t, abi)

	case types.KindVector:
		return e.tableAlign(AlignVector, t, abi)

	default:
		return 0, &Error{Kind: ErrUnsupportedKind, Type: t}
	}
}

// tableAlign looks up the alignment entry for the type's byte size. A
// width missing from the table resolves to the next declared entry of the
// same kind, so an i24 query answers with the i32 alignment.
func (e *Engine) tableAlign(kind AlignKind, t types.TypeID, abi bool) (int, *Error) {
	size, err := e.sizeOf(t)
	if err != nil {
		return 0, err
	}
	bits, convErr := safecast.Conv[uint32](size * 8)
	if convErr != nil {
		return 0, &Error{Kind: ErrNoAlignment, Type: t, Align: kind}
	}
	spec, ok := e.aligns.lookup(kind, bits)
	if !ok {
		return 0, &Error{Kind: ErrNoAlignment, Type: t, Bits: bits, Align: kind}
	}
	align := spec.ABI
	if !abi {
		align = spec.Pref
	}
	if align == 0 {
		// Only the aggregate entry may carry a 0; for numeric kinds the
		// oracle must not fabricate an alignment.
		return 0, &Error{Kind: ErrNoAlignment, Type: t, Bits: bits, Align: kind}
	}
	return align, nil
}

// roundUp rounds n up to the next multiple of align.
func roundUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}
