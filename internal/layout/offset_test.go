package layout_test

import (
	"errors"
	"testing"

	"datalayout/internal/layout"
	"datalayout/internal/types"
)

// nestedStruct builds { i32, {i16, i64}, i8 } and returns a pointer to it
// plus the outer struct itself.
func nestedStruct(in *types.Interner) (ptr, outer types.TypeID) {
	b := in.Builtins()
	inner := makeStruct(in, b.Int16, b.Int64)
	outer = makeStruct(in, b.Int32, inner, b.Int8)
	return in.Pointer(outer), outer
}

func TestIndexedOffsetNestedStruct(t *testing.T) {
	e, in := newDefaultEngine(t)
	ptr, outer := nestedStruct(in)

	// With 8-byte pointers: inner {i16, i64} has offsets [0, 8]; the
	// outer struct places it at offset 8.
	outerSize, err := e.SizeOf(outer)
	if err != nil {
		t.Fatalf("SizeOf(outer): %v", err)
	}
	if outerSize != 32 {
		t.Fatalf("outer size = %d, want 32", outerSize)
	}

	cases := []struct {
		indices []int64
		want    int64
	}{
		{[]int64{0}, 0},
		{[]int64{0, 0}, 0},
		{[]int64{0, 1}, 8},        // inner struct
		{[]int64{0, 1, 1}, 16},    // inner i64
		{[]int64{0, 2}, 24},       // trailing i8
		{[]int64{1, 1, 1}, 48},    // one whole outer struct first
		{[]int64{-1, 1, 0}, -24},  // negative pointee steps are signed
		{[]int64{2}, 2 * 32},      // pure pointer displacement
	}
	for _, tc := range cases {
		got, err := e.IndexedOffset(ptr, tc.indices)
		if err != nil {
			t.Fatalf("IndexedOffset(%v): %v", tc.indices, err)
		}
		if got != tc.want {
			t.Errorf("IndexedOffset(%v) = %d, want %d", tc.indices, got, tc.want)
		}
	}
}

func TestIndexedOffsetNestedStruct32BitPointers(t *testing.T) {
	in := types.NewInterner()
	e := layout.Parse("e-p:32:32:32", in)
	ptr, _ := nestedStruct(in)

	// i64 alignment capped at 4: inner {i16, i64} is [0, 4] and the
	// outer struct places it at offset 4.
	got, err := e.IndexedOffset(ptr, []int64{0, 1, 1})
	if err != nil {
		t.Fatalf("IndexedOffset: %v", err)
	}
	if got != 8 {
		t.Errorf("IndexedOffset = %d, want 8", got)
	}
}

func TestIndexedOffsetThroughArray(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	s := makeStruct(in, b.Int8, b.Int32, b.Int8) // size 12
	arr := in.Array(s, 4)
	ptr := in.Pointer(arr)

	// ptr -> array -> element 2 -> field 1.
	got, err := e.IndexedOffset(ptr, []int64{0, 2, 1})
	if err != nil {
		t.Fatalf("IndexedOffset: %v", err)
	}
	if got != 2*12+4 {
		t.Errorf("IndexedOffset = %d, want %d", got, 2*12+4)
	}
}

func TestIndexedOffsetThroughVector(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	vec, ok := in.VectorOf(b.Int32, 4)
	if !ok {
		t.Fatal("VectorOf failed")
	}
	ptr := in.Pointer(vec)
	got, err := e.IndexedOffset(ptr, []int64{0, 3})
	if err != nil {
		t.Fatalf("IndexedOffset: %v", err)
	}
	if got != 12 {
		t.Errorf("IndexedOffset = %d, want 12", got)
	}
}

func TestIndexedOffsetErrors(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()
	ptr, _ := nestedStruct(in)

	assertKind := func(err error, want layout.ErrorKind, label string) {
		t.Helper()
		var lerr *layout.Error
		if !errors.As(err, &lerr) {
			t.Fatalf("%s: expected *layout.Error, got %T (%v)", label, err, err)
		}
		if lerr.Kind != want {
			t.Errorf("%s: error kind = %d, want %d", label, lerr.Kind, want)
		}
	}

	_, err := e.IndexedOffset(b.Int32, []int64{0})
	assertKind(err, layout.ErrNotPointer, "non-pointer base")

	_, err = e.IndexedOffset(ptr, []int64{0, 3})
	assertKind(err, layout.ErrFieldRange, "field index past the list")

	_, err = e.IndexedOffset(ptr, []int64{0, -1})
	assertKind(err, layout.ErrFieldRange, "negative field index")

	// Indexing past a scalar has nothing left to descend into.
	_, err = e.IndexedOffset(ptr, []int64{0, 0, 0})
	assertKind(err, layout.ErrNotIndexable, "indexing into i32")
}
