package layout

import (
	"fmt"
	"math/bits"

	"datalayout/internal/types"
)

// PrefAlignLog2 returns log2 of the preferred alignment of the type.
// Alignments are powers of two by construction; a table entry that is not
// is an invariant violation.
func (e *Engine) PrefAlignLog2(t types.TypeID) (int, error) {
	align, err := e.PrefAlignOf(t)
	if err != nil {
		return 0, err
	}
	if align&(align-1) != 0 {
		panic(fmt.Sprintf("layout: preferred alignment %d of type#%d is not a power of two", align, t))
	}
	return log2(align), nil
}

// IntPtrType returns the unsigned integer type with the same width as a
// pointer. Only 2-, 4- and 8-byte pointers have a matching integer type.
func (e *Engine) IntPtrType() (types.TypeID, error) {
	b := e.types.Builtins()
	switch e.ptrSize {
	case 2:
		return b.Int16, nil
	case 4:
		return b.Int32, nil
	case 8:
		return b.Int64, nil
	default:
		return types.NoTypeID, wrap(&Error{Kind: ErrPointerSize, Size: e.ptrSize})
	}
}

// GlobalPrefAlignLog2 returns the preferred alignment of a global
// variable in log form. An explicit alignment attribute can raise it, and
// defined globals larger than 128 bytes are raised to 16-byte alignment
// so they start on a cache line. Externally defined globals keep the type
// alignment: their final size may differ.
func (e *Engine) GlobalPrefAlignLog2(g *types.Global) (int, error) {
	align, err := e.PrefAlignLog2(g.Elem)
	if err != nil {
		return 0, err
	}
	if g.Align > 1<<align {
		align = log2(g.Align)
	}
	if g.HasInitializer && align < 4 {
		size, err := e.SizeOf(g.Elem)
		if err != nil {
			return 0, err
		}
		if size > 128 {
			align = 4 // 16-byte alignment
		}
	}
	return align, nil
}

func log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}
