package layout_test

import (
	"errors"
	"testing"

	"datalayout/internal/layout"
	"datalayout/internal/types"
)

func TestPrefAlignLog2(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	cases := []struct {
		label string
		id    types.TypeID
		want  int
	}{
		{"i8", b.Int8, 0},
		{"i16", b.Int16, 1},
		{"i32", b.Int32, 2},
		{"double", b.Double, 3},
		{"i64*", in.Pointer(b.Int64), 3},
	}
	for _, tc := range cases {
		got, err := e.PrefAlignLog2(tc.id)
		if err != nil {
			t.Fatalf("%s: PrefAlignLog2: %v", tc.label, err)
		}
		if got != tc.want {
			t.Errorf("%s: log2 pref align = %d, want %d", tc.label, got, tc.want)
		}
	}
}

func TestIntPtrType(t *testing.T) {
	cases := []struct {
		spec string
		want func(types.Builtins) types.TypeID
	}{
		{"e-p:16:16:16", func(b types.Builtins) types.TypeID { return b.Int16 }},
		{"e-p:32:32:32", func(b types.Builtins) types.TypeID { return b.Int32 }},
		{"e-p:64:64:64", func(b types.Builtins) types.TypeID { return b.Int64 }},
	}
	for _, tc := range cases {
		in := types.NewInterner()
		e := layout.Parse(tc.spec, in)
		got, err := e.IntPtrType()
		if err != nil {
			t.Fatalf("%s: IntPtrType: %v", tc.spec, err)
		}
		if got != tc.want(in.Builtins()) {
			t.Errorf("%s: IntPtrType = %d, want %d", tc.spec, got, tc.want(in.Builtins()))
		}
	}

	// A 3-byte pointer has no matching integer type.
	in := types.NewInterner()
	e := layout.Parse("e-p:24:24:24", in)
	_, err := e.IntPtrType()
	var lerr *layout.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.ErrPointerSize {
		t.Errorf("expected ErrPointerSize, got kind=%d", lerr.Kind)
	}
}

func TestGlobalPrefAlignLog2(t *testing.T) {
	e, in := newDefaultEngine(t)
	b := in.Builtins()

	big := in.Array(b.Int32, 64)   // 256 bytes
	small := in.Array(b.Int32, 4)  // 16 bytes

	cases := []struct {
		label string
		g     types.Global
		want  int
	}{
		{"large defined global gets 16-byte alignment", types.Global{Elem: big, HasInitializer: true}, 4},
		{"large external global keeps type alignment", types.Global{Elem: big}, 2},
		{"small defined global keeps type alignment", types.Global{Elem: small, HasInitializer: true}, 2},
		{"explicit alignment raises", types.Global{Elem: small, Align: 32, HasInitializer: true}, 5},
		{"explicit alignment below type alignment is ignored", types.Global{Elem: big, Align: 2}, 2},
		{"explicit alignment beats the heuristic", types.Global{Elem: big, Align: 64, HasInitializer: true}, 6},
	}
	for _, tc := range cases {
		g := tc.g
		got, err := e.GlobalPrefAlignLog2(&g)
		if err != nil {
			t.Fatalf("%s: GlobalPrefAlignLog2: %v", tc.label, err)
		}
		if got != tc.want {
			t.Errorf("%s: log2 align = %d, want %d", tc.label, got, tc.want)
		}
	}
}
