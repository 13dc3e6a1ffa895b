package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"datalayout/internal/layout"
	"datalayout/internal/typeexpr"
	"datalayout/internal/types"
)

// QueryResult is the answer for one type expression.
type QueryResult struct {
	Expr      string  `json:"expr" msgpack:"expr"`
	Type      string  `json:"type,omitempty" msgpack:"type"`
	SizeBytes int64   `json:"size_bytes" msgpack:"size_bytes"`
	SizeBits  int64   `json:"size_bits" msgpack:"size_bits"`
	ABIAlign  int     `json:"abi_align" msgpack:"abi_align"`
	PrefAlign int     `json:"pref_align" msgpack:"pref_align"`
	Offsets   []int64 `json:"offsets,omitempty" msgpack:"offsets"`
	Err       string  `json:"err,omitempty" msgpack:"err"`
}

// Evaluate answers size, alignment and (for structs) field offset
// questions for one already-interned type.
func Evaluate(e *layout.Engine, expr string, id types.TypeID) QueryResult {
	res := QueryResult{
		Expr: expr,
		Type: typeexpr.Format(e.Types(), id),
	}
	size, err := e.SizeOf(id)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.SizeBytes = size

	bits, err := e.BitSizeOf(id)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.SizeBits = bits

	res.ABIAlign, err = e.ABIAlignOf(id)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.PrefAlign, err = e.PrefAlignOf(id)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	if e.Types().Kind(id) == types.KindStruct {
		sl, err := e.StructLayoutOf(id)
		if err != nil {
			res.Err = err.Error()
			return res
		}
		res.Offsets = append([]int64(nil), sl.Offsets...)
	}
	return res
}

// EvaluateExpr parses and answers one type expression.
func EvaluateExpr(e *layout.Engine, expr string) QueryResult {
	id, err := typeexpr.Parse(expr, e.Types())
	if err != nil {
		return QueryResult{Expr: expr, Err: err.Error()}
	}
	return Evaluate(e, expr, id)
}

// BatchOptions tunes Batch.
type BatchOptions struct {
	Jobs int // max concurrent evaluations; 0 means GOMAXPROCS
}

// Batch evaluates many type expressions against one engine. Parsing
// happens up front on the calling goroutine (the interner is not
// goroutine-safe); the layout queries then run concurrently, bounded by
// Jobs. The result slice is index-aligned with exprs.
func Batch(ctx context.Context, e *layout.Engine, exprs []string, opts BatchOptions) ([]QueryResult, error) {
	results := make([]QueryResult, len(exprs))
	if len(exprs) == 0 {
		return results, nil
	}

	ids := make([]types.TypeID, len(exprs))
	for i, expr := range exprs {
		id, err := typeexpr.Parse(expr, e.Types())
		if err != nil {
			results[i] = QueryResult{Expr: expr, Err: err.Error()}
			continue
		}
		ids[i] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(exprs)))

	for i, expr := range exprs {
		if ids[i] == types.NoTypeID {
			continue // parse error already recorded
		}
		i, expr := i, expr
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Index i is unique per goroutine, so no mutex is needed.
			results[i] = Evaluate(e, expr, ids[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
