package layout_test

import (
	"errors"
	"testing"

	"datalayout/internal/layout"
	"datalayout/internal/types"
)

func newDefaultEngine(t *testing.T) (*layout.Engine, *types.Interner) {
	t.Helper()
	in := types.NewInterner()
	return layout.Parse("", in), in
}

func assertSizeAlign(t *testing.T, e *layout.Engine, id types.TypeID, wantSize int64, wantAlign int, label string) {
	t.Helper()
	size, err := e.SizeOf(id)
	if err != nil {
		t.Fatalf("%s: SizeOf: %v", label, err)
	}
	if size != wantSize {
		t.Errorf("%s: size = %d, want %d", label, size, wantSize)
	}
	align, err := e.ABIAlignOf(id)
	if err != nil {
		t.Fatalf("%s: ABIAlignOf: %v", label, err)
	}
	if align != wantAlign {
		t.Errorf("%s: align = %d, want %d", label, align, wantAlign)
	}
}

func TestSizeOfPrimitives(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	cases := []struct {
		label     string
		id        types.TypeID
		wantSize  int64
		wantAlign int
	}{
		{"i1", b.Int1, 1, 1},
		{"i8", b.Int8, 1, 1},
		{"i16", b.Int16, 2, 2},
		{"i32", b.Int32, 4, 4},
		{"i64", b.Int64, 8, 8},
		{"float", b.Float, 4, 4},
		{"double", b.Double, 8, 8},
		{"void", b.Void, 1, 1},
		{"label", b.Label, 8, 8},
		{"i32*", in.Pointer(b.Int32), 8, 8},
	}
	for _, tc := range cases {
		assertSizeAlign(t, e, tc.id, tc.wantSize, tc.wantAlign, tc.label)
	}
}

func TestSizeOfOddIntegers(t *testing.T) {
	e, in := newDefaultEngine(t)

	// Widths round up to the next power-of-two byte count, and the
	// alignment answer comes from the entry for that rounded width.
	cases := []struct {
		bits      uint32
		wantSize  int64
		wantAlign int
	}{
		{7, 1, 1},
		{13, 2, 2},
		{24, 4, 4},
		{36, 8, 8},
		{63, 8, 8},
	}
	for _, tc := range cases {
		assertSizeAlign(t, e, in.Integer(tc.bits), tc.wantSize, tc.wantAlign, "odd integer")
	}
}

func TestSizeOfWideIntegerFails(t *testing.T) {
	e, in := newDefaultEngine(t)
	_, err := e.SizeOf(in.Integer(65))
	var lerr *layout.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.ErrIntegerTooWide {
		t.Errorf("expected ErrIntegerTooWide, got kind=%d", lerr.Kind)
	}
}

func TestBitSizeOf(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	// Integers report their declared width; everything else reports
	// eight times the byte size.
	cases := []struct {
		label string
		id    types.TypeID
		want  int64
	}{
		{"i1", b.Int1, 1},
		{"i24", in.Integer(24), 24},
		{"i64", b.Int64, 64},
		{"float", b.Float, 32},
		{"double", b.Double, 64},
		{"void", b.Void, 8},
		{"i16*", in.Pointer(b.Int16), 64},
	}
	for _, tc := range cases {
		got, err := e.BitSizeOf(tc.id)
		if err != nil {
			t.Fatalf("%s: BitSizeOf: %v", tc.label, err)
		}
		if got != tc.want {
			t.Errorf("%s: bit size = %d, want %d", tc.label, got, tc.want)
		}
	}
}

func TestSizeOfVectors(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	v128, ok := in.VectorOf(b.Int32, 4)
	if !ok {
		t.Fatal("VectorOf(i32, 4) failed")
	}
	assertSizeAlign(t, e, v128, 16, 16, "<4 x i32>")

	v64, ok := in.VectorOf(b.Int16, 4)
	if !ok {
		t.Fatal("VectorOf(i16, 4) failed")
	}
	assertSizeAlign(t, e, v64, 8, 8, "<4 x i16>")
}

func TestVectorAlignmentRoundsUpToNextEntry(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	// 96 bits sits between the declared v64 and v128 entries; the
	// lookup answers with the next declared alignment.
	v96, ok := in.VectorOf(b.Int32, 3)
	if !ok {
		t.Fatal("VectorOf(i32, 3) failed")
	}
	assertSizeAlign(t, e, v96, 12, 16, "<3 x i32>")
}

func TestVectorAlignmentPastTableFails(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	// 256 bits is past every vector entry: the oracle must not
	// fabricate an alignment.
	v256, ok := in.VectorOf(b.Int64, 4)
	if !ok {
		t.Fatal("VectorOf(i64, 4) failed")
	}
	if _, err := e.SizeOf(v256); err != nil {
		t.Fatalf("SizeOf(<4 x i64>): %v", err)
	}
	_, err := e.ABIAlignOf(v256)
	var lerr *layout.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.ErrNoAlignment {
		t.Errorf("expected ErrNoAlignment, got kind=%d", lerr.Kind)
	}
}

func TestSizeOfArrays(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	cases := []struct {
		label     string
		elem      types.TypeID
		count     uint64
		wantSize  int64
		wantAlign int
	}{
		{"[5 x i1]", b.Int1, 5, 5, 1},
		{"[4 x i32]", b.Int32, 4, 16, 4},
		{"[3 x i64]", b.Int64, 3, 24, 8},
		{"[0 x i32]", b.Int32, 0, 0, 4},
		{"[2 x double]", b.Double, 2, 16, 8},
	}
	for _, tc := range cases {
		assertSizeAlign(t, e, in.Array(tc.elem, tc.count), tc.wantSize, tc.wantAlign, tc.label)
	}
}

func TestArrayStrideIsPaddedElementSize(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	// size(array(T, n)) == n * roundUp(size(T), abiAlign(T)) for a
	// struct element whose natural size needs tail padding.
	s := in.RegisterStruct("")
	in.SetStructFields(s, []types.StructField{{Type: b.Int32}, {Type: b.Int8}})
	elemSize, err := e.SizeOf(s)
	if err != nil {
		t.Fatalf("SizeOf(elem): %v", err)
	}
	if elemSize != 8 {
		t.Fatalf("elem size = %d, want 8", elemSize)
	}
	arr := in.Array(s, 7)
	assertSizeAlign(t, e, arr, 7*8, 4, "[7 x {i32, i8}]")
}

func TestPreferredAlignmentCanExceedABI(t *testing.T) {
	in := types.NewInterner()
	e := layout.Parse("e-i32:32:64", in)
	b := in.Builtins()

	abi, err := e.ABIAlignOf(b.Int32)
	if err != nil {
		t.Fatalf("ABIAlignOf: %v", err)
	}
	pref, err := e.PrefAlignOf(b.Int32)
	if err != nil {
		t.Fatalf("PrefAlignOf: %v", err)
	}
	if abi != 4 || pref != 8 {
		t.Errorf("i32 abi/pref = %d/%d, want 4/8", abi, pref)
	}
	if pref < abi {
		t.Error("preferred alignment must never be below ABI alignment")
	}
}

func TestUnsizedVoidPolicy(t *testing.T) {
	in := types.NewInterner()
	e := layout.Parse("", in, layout.WithUnsizedVoid())
	_, err := e.SizeOf(in.Builtins().Void)
	var lerr *layout.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.ErrUnsized {
		t.Errorf("expected ErrUnsized, got kind=%d", lerr.Kind)
	}
}
