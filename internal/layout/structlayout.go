package layout

import (
	"fmt"
	"sort"

	"datalayout/internal/trace"
	"datalayout/internal/types"
)

// StructLayout is the computed placement of one struct type: the byte
// offset of every field, the total size including tail padding, and the
// alignment the field list dictates. Layouts are immutable once built and
// may be shared by reference.
type StructLayout struct {
	Size    int64
	Align   int
	Offsets []int64
}

// NumFields returns the number of fields the layout covers.
func (sl *StructLayout) NumFields() int {
	return len(sl.Offsets)
}

// FieldContainingOffset returns the index of the field whose byte range
// contains the given offset. ok is false for negative offsets, offsets
// past the struct, and empty structs.
func (sl *StructLayout) FieldContainingOffset(offset int64) (int, bool) {
	if len(sl.Offsets) == 0 || offset < 0 || offset >= sl.Size {
		return 0, false
	}
	// First field starting past the offset, then step back one.
	idx := sort.Search(len(sl.Offsets), func(i int) bool {
		return sl.Offsets[i] > offset
	})
	return idx - 1, true
}

// StructLayoutOf returns the layout of a struct type, computing and
// caching it on first use. The returned layout is shared: callers must
// not modify it.
func (e *Engine) StructLayoutOf(t types.TypeID) (*StructLayout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitQuery("struct-layout", t)
	if !e.types.IsSized(t) {
		return nil, wrap(&Error{Kind: ErrUnsized, Type: t})
	}
	sl, err := e.structLayout(t)
	if err != nil {
		return nil, wrap(err)
	}
	return sl, nil
}

// Invalidate drops the cached layout for a struct type. The type system
// must call this before mutating or destroying a struct type the engine
// has seen.
func (e *Engine) Invalidate(t types.TypeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.structs, t)
	if e.tracer.Enabled() {
		e.tracer.Emit(&trace.Event{Scope: trace.ScopeStruct, Name: "invalidate", Detail: fmt.Sprintf("type#%d", t)})
	}
}

// InvalidateAll drops every cached layout.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.structs = make(map[types.TypeID]*StructLayout, 16)
}

// structLayout returns the cached layout or builds it, with e.mu held.
// Field element types may themselves be structs; the recursion terminates
// because struct types cannot contain themselves by value.
func (e *Engine) structLayout(t types.TypeID) (*StructLayout, *Error) {
	if sl, ok := e.structs[t]; ok {
		return sl, nil
	}
	info, ok := e.types.StructInfo(t)
	if !ok {
		return nil, &Error{Kind: ErrNotStruct, Type: t}
	}

	sl := &StructLayout{
		Offsets: make([]int64, len(info.Fields)),
	}
	for i, f := range info.Fields {
		fieldAlign, err := e.alignOf(f.Type, true)
		if err != nil {
			return nil, err
		}
		fieldSize, err := e.sizeOf(f.Type)
		if err != nil {
			return nil, err
		}
		sl.Size = roundUp(sl.Size, int64(fieldAlign))
		sl.Offsets[i] = sl.Size
		sl.Size += fieldSize
		if fieldAlign > sl.Align {
			sl.Align = fieldAlign
		}
	}

	// Empty structures have alignment of 1 byte.
	if sl.Align == 0 {
		sl.Align = 1
	}
	// Tail padding, so array elements of this struct stay aligned.
	sl.Size = roundUp(sl.Size, int64(sl.Align))

	e.structs[t] = sl
	if e.tracer.Enabled() {
		e.tracer.Emit(&trace.Event{
			Scope:  trace.ScopeStruct,
			Name:   "layout",
			Detail: fmt.Sprintf("type#%d size=%d align=%d fields=%d", t, sl.Size, sl.Align, len(sl.Offsets)),
		})
	}
	return sl, nil
}
