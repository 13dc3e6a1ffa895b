package layout

import (
	"sync"

	"datalayout/internal/trace"
	"datalayout/internal/types"
)

// Module is the collaborator that carries a target description string,
// typically the compilation unit being lowered.
type Module interface {
	DataLayout() string
}

// Engine answers size, alignment and offset questions about IR types for
// one target. It is immutable after construction apart from the struct
// layout cache, so any number of goroutines may query it concurrently.
type Engine struct {
	types  *types.Interner
	tracer trace.Tracer

	littleEndian bool
	ptrSize      int // bytes
	ptrABIAlign  int // bytes
	ptrPrefAlign int // bytes
	aligns       alignTable

	unsizedVoid bool

	mu      sync.Mutex
	structs map[types.TypeID]*StructLayout
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTracer attaches a tracer for parse and layout events.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithUnsizedVoid makes size and alignment queries on void fail instead of
// treating void values as single bytes.
func WithUnsizedVoid() Option {
	return func(e *Engine) {
		e.unsizedVoid = true
	}
}

// Parse builds an Engine from a target description string. Parsing is
// best-effort: malformed or unknown tokens are skipped and the seeded
// defaults stand, matching how hand-edited partial descriptions have
// historically been accepted.
func Parse(spec string, in *types.Interner, opts ...Option) *Engine {
	e := newDefault(in, opts...)
	e.applySpec(spec, nil)
	e.fixup()
	return e
}

// ParseStrict builds an Engine from a target description string and
// reports every token Parse would silently skip.
func ParseStrict(spec string, in *types.Interner, opts ...Option) (*Engine, error) {
	e := newDefault(in, opts...)
	var errs specErrors
	e.applySpec(spec, &errs)
	e.fixup()
	if err := errs.join(spec); err != nil {
		return nil, err
	}
	return e, nil
}

// NewFromModule builds an Engine from the module's data layout string.
func NewFromModule(m Module, in *types.Interner, opts ...Option) *Engine {
	return Parse(m.DataLayout(), in, opts...)
}

// newDefault seeds the descriptor that an empty specification string
// denotes: big-endian, 64-bit pointers, and the standard alignments for
// the fixed integer, float, vector and aggregate entries.
func newDefault(in *types.Interner, opts ...Option) *Engine {
	e := &Engine{
		types:        in,
		tracer:       trace.Nop,
		littleEndian: false,
		ptrSize:      8,
		ptrABIAlign:  8,
		ptrPrefAlign: 8,
		structs:      make(map[types.TypeID]*StructLayout, 16),
	}
	e.aligns.set(AlignInteger, 1, 1, 1)
	e.aligns.set(AlignInteger, 8, 1, 1)
	e.aligns.set(AlignInteger, 16, 2, 2)
	e.aligns.set(AlignInteger, 32, 4, 4)
	e.aligns.set(AlignInteger, 64, 0, 8) // ABI 0: capped by pointer size after parse
	e.aligns.set(AlignFloat, 32, 4, 4)
	e.aligns.set(AlignFloat, 64, 0, 8) // ABI 0: capped by pointer size after parse
	e.aligns.set(AlignVector, 64, 8, 8)
	e.aligns.set(AlignVector, 128, 16, 16)
	e.aligns.set(AlignAggregate, 0, 0, 0) // 0 defers to the computed field alignment
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fixup caps 64-bit integer and double alignment at pointer size unless
// the specification set them explicitly. A remaining ABI value of 0 means
// "not specified".
func (e *Engine) fixup() {
	if spec, ok := e.aligns.lookup(AlignInteger, 64); ok && spec.Bits == 64 && spec.ABI == 0 {
		e.aligns.set(AlignInteger, 64, e.ptrSize, e.ptrSize)
	}
	if spec, ok := e.aligns.lookup(AlignFloat, 64); ok && spec.Bits == 64 && spec.ABI == 0 {
		e.aligns.set(AlignFloat, 64, e.ptrSize, e.ptrSize)
	}
}

// Types returns the interner the engine resolves TypeIDs against.
func (e *Engine) Types() *types.Interner {
	return e.types
}

// LittleEndian reports the target byte order.
func (e *Engine) LittleEndian() bool {
	return e.littleEndian
}

// PointerSize returns the pointer size in bytes.
func (e *Engine) PointerSize() int {
	return e.ptrSize
}

// PointerABIAlign returns the pointer ABI alignment in bytes.
func (e *Engine) PointerABIAlign() int {
	return e.ptrABIAlign
}

// PointerPrefAlign returns the pointer preferred alignment in bytes.
func (e *Engine) PointerPrefAlign() int {
	return e.ptrPrefAlign
}

// Alignments returns a copy of the alignment table in sorted order.
func (e *Engine) Alignments() []AlignSpec {
	return e.aligns.clone()
}

// Equal reports whether two engines describe the same target: endianness,
// pointer parameters and alignment table all match.
func (e *Engine) Equal(other *Engine) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.littleEndian != other.littleEndian ||
		e.ptrSize != other.ptrSize ||
		e.ptrABIAlign != other.ptrABIAlign ||
		e.ptrPrefAlign != other.ptrPrefAlign {
		return false
	}
	if len(e.aligns) != len(other.aligns) {
		return false
	}
	for i := range e.aligns {
		if e.aligns[i] != other.aligns[i] {
			return false
		}
	}
	return true
}
