package layout_test

import (
	"errors"
	"sync"
	"testing"

	"datalayout/internal/layout"
	"datalayout/internal/types"
)

func makeStruct(in *types.Interner, fields ...types.TypeID) types.TypeID {
	id := in.RegisterStruct("")
	fs := make([]types.StructField, len(fields))
	for i, f := range fields {
		fs[i] = types.StructField{Type: f}
	}
	in.SetStructFields(id, fs)
	return id
}

func assertLayout(t *testing.T, e *layout.Engine, id types.TypeID, wantOffsets []int64, wantSize int64, wantAlign int) {
	t.Helper()
	sl, err := e.StructLayoutOf(id)
	if err != nil {
		t.Fatalf("StructLayoutOf: %v", err)
	}
	if len(sl.Offsets) != len(wantOffsets) {
		t.Fatalf("offset count = %d, want %d", len(sl.Offsets), len(wantOffsets))
	}
	for i := range wantOffsets {
		if sl.Offsets[i] != wantOffsets[i] {
			t.Errorf("offset[%d] = %d, want %d", i, sl.Offsets[i], wantOffsets[i])
		}
	}
	if sl.Size != wantSize {
		t.Errorf("size = %d, want %d", sl.Size, wantSize)
	}
	if sl.Align != wantAlign {
		t.Errorf("align = %d, want %d", sl.Align, wantAlign)
	}
}

func TestStructLayoutBytesIntsByte(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()
	// { i8, i32, i8 } on the default target.
	s := makeStruct(in, b.Int8, b.Int32, b.Int8)
	assertLayout(t, e, s, []int64{0, 4, 8}, 12, 4)
}

func TestStructLayoutLongOn64BitPointers(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()
	// { i8, i64, i8 } with 8-byte pointers: i64 alignment is 8.
	s := makeStruct(in, b.Int8, b.Int64, b.Int8)
	assertLayout(t, e, s, []int64{0, 8, 16}, 24, 8)
}

func TestStructLayoutLongOn32BitPointers(t *testing.T) {
	in := types.NewInterner()
	e := layout.Parse("e-p:32:32:32", in)
	b := in.Builtins()
	// Same struct, 4-byte pointers: the fixup caps i64 alignment at 4.
	s := makeStruct(in, b.Int8, b.Int64, b.Int8)
	assertLayout(t, e, s, []int64{0, 4, 12}, 16, 4)
}

func TestEmptyStructLayout(t *testing.T) {
	e, in := newDefaultEngine(t)
	s := makeStruct(in)
	assertLayout(t, e, s, nil, 0, 1)

	// The oracle view agrees: zero size, one-byte alignment.
	assertSizeAlign(t, e, s, 0, 1, "{}")
}

func TestStructLayoutInvariants(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	inner := makeStruct(in, b.Int16, b.Int64)
	structs := []types.TypeID{
		makeStruct(in, b.Int8, b.Int32, b.Int8),
		makeStruct(in, b.Int8, b.Int64, b.Int8),
		makeStruct(in, b.Int32, inner, b.Int8),
		makeStruct(in, b.Int1, b.Int1, b.Int16, b.Double),
		makeStruct(in, in.Array(b.Int8, 3), b.Int32),
	}
	for _, s := range structs {
		sl, err := e.StructLayoutOf(s)
		if err != nil {
			t.Fatalf("StructLayoutOf: %v", err)
		}
		info, _ := in.StructInfo(s)
		for i, f := range info.Fields {
			fieldAlign, err := e.ABIAlignOf(f.Type)
			if err != nil {
				t.Fatalf("ABIAlignOf(field %d): %v", i, err)
			}
			if sl.Offsets[i]%int64(fieldAlign) != 0 {
				t.Errorf("offset[%d] = %d not aligned to %d", i, sl.Offsets[i], fieldAlign)
			}
			if i > 0 {
				prevSize, err := e.SizeOf(info.Fields[i-1].Type)
				if err != nil {
					t.Fatalf("SizeOf(field %d): %v", i-1, err)
				}
				if sl.Offsets[i] < sl.Offsets[i-1]+prevSize {
					t.Errorf("offset[%d] = %d overlaps field %d", i, sl.Offsets[i], i-1)
				}
			}
		}
		if sl.Align < 1 {
			t.Error("struct alignment must be at least 1")
		}
		if sl.Size%int64(sl.Align) != 0 {
			t.Errorf("size %d not a multiple of alignment %d", sl.Size, sl.Align)
		}
	}
}

func TestStructArrayElementOffsets(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	// [3 x {i8, i32, i8}]: stride 12, so element 2 starts at byte 24.
	s := makeStruct(in, b.Int8, b.Int32, b.Int8)
	arr := in.Array(s, 3)
	assertSizeAlign(t, e, arr, 36, 4, "[3 x {i8, i32, i8}]")

	off, err := e.IndexedOffset(in.Pointer(arr), []int64{0, 2})
	if err != nil {
		t.Fatalf("IndexedOffset: %v", err)
	}
	if off != 24 {
		t.Errorf("element 2 offset = %d, want 24", off)
	}
}

func TestAggregateEntryCanRaiseStructAlignment(t *testing.T) {
	// An a0 entry with a nonzero alignment raises the alignment the
	// fields dictate, but never lowers it.
	in := types.NewInterner()
	e := layout.Parse("e-a0:64:64", in)
	b := in.Builtins()

	small := makeStruct(in, b.Int8)
	align, err := e.ABIAlignOf(small)
	if err != nil {
		t.Fatalf("ABIAlignOf: %v", err)
	}
	if align != 8 {
		t.Errorf("raised struct align = %d, want 8", align)
	}

	in2 := types.NewInterner()
	e2 := layout.Parse("e-a0:8:8", in2)
	b2 := in2.Builtins()
	wide := makeStruct(in2, b2.Int64, b2.Int64)
	align, err = e2.ABIAlignOf(wide)
	if err != nil {
		t.Fatalf("ABIAlignOf: %v", err)
	}
	if align != 8 {
		t.Errorf("a0 entry must not lower field alignment: got %d, want 8", align)
	}
}

func TestFieldContainingOffset(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()
	s := makeStruct(in, b.Int8, b.Int32, b.Int8)
	sl, err := e.StructLayoutOf(s)
	if err != nil {
		t.Fatalf("StructLayoutOf: %v", err)
	}

	cases := []struct {
		offset int64
		want   int
		ok     bool
	}{
		{0, 0, true},
		{3, 0, true}, // padding before field 1 still belongs to field 0's span
		{4, 1, true},
		{7, 1, true},
		{8, 2, true},
		{11, 2, true},
		{-1, 0, false},
		{12, 0, false},
	}
	for _, tc := range cases {
		got, ok := sl.FieldContainingOffset(tc.offset)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("FieldContainingOffset(%d) = %d,%v, want %d,%v", tc.offset, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStructLayoutCacheAndInvalidate(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	s := in.RegisterStruct("node")
	in.SetStructFields(s, []types.StructField{{Type: b.Int8}})
	sl1, err := e.StructLayoutOf(s)
	if err != nil {
		t.Fatalf("StructLayoutOf: %v", err)
	}
	if sl1.Size != 1 {
		t.Fatalf("initial size = %d, want 1", sl1.Size)
	}

	// The cache returns the same published object on repeat queries.
	sl2, err := e.StructLayoutOf(s)
	if err != nil {
		t.Fatalf("StructLayoutOf: %v", err)
	}
	if sl1 != sl2 {
		t.Error("repeat query must return the cached layout object")
	}

	// Mutating the field list requires invalidation; after it the
	// engine recomputes.
	e.Invalidate(s)
	in.SetStructFields(s, []types.StructField{{Type: b.Int64}})
	sl3, err := e.StructLayoutOf(s)
	if err != nil {
		t.Fatalf("StructLayoutOf: %v", err)
	}
	if sl3.Size != 8 {
		t.Errorf("post-invalidate size = %d, want 8", sl3.Size)
	}
}

func TestStructLayoutOfNonStruct(t *testing.T) {
	e, in := newDefaultEngine(t)
	_, err := e.StructLayoutOf(in.Builtins().Int32)
	var lerr *layout.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.ErrNotStruct {
		t.Errorf("expected ErrNotStruct, got kind=%d", lerr.Kind)
	}
}

func TestConcurrentQueries(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	inner := makeStruct(in, b.Int16, b.Int64)
	outer := makeStruct(in, b.Int32, inner, b.Int8)
	arr := in.Array(outer, 16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := e.SizeOf(arr); err != nil {
					t.Errorf("SizeOf: %v", err)
					return
				}
				if _, err := e.StructLayoutOf(outer); err != nil {
					t.Errorf("StructLayoutOf: %v", err)
					return
				}
				if _, err := e.ABIAlignOf(inner); err != nil {
					t.Errorf("ABIAlignOf: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
