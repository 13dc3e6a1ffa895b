package layout

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"datalayout/internal/trace"
)

// specErrors accumulates problems found by strict parsing. The silent
// parser passes nil and skips the bookkeeping entirely.
type specErrors []string

func (se *specErrors) addf(format string, args ...any) {
	if se == nil {
		return
	}
	*se = append(*se, fmt.Sprintf(format, args...))
}

func (se *specErrors) join(spec string) error {
	if se == nil || len(*se) == 0 {
		return nil
	}
	return fmt.Errorf("malformed data layout %q: %s", spec, strings.Join(*se, "; "))
}

// applySpec folds the hyphen-delimited specification string over the
// seeded defaults. Tokens the grammar does not know are skipped.
func (e *Engine) applySpec(spec string, errs *specErrors) {
	for _, token := range strings.Split(spec, "-") {
		if token == "" {
			continue
		}
		fields := strings.Split(token, ":")
		head := fields[0]
		if head == "" {
			e.skipToken(token, errs)
			continue
		}
		switch head[0] {
		case 'E':
			e.littleEndian = false
		case 'e':
			e.littleEndian = true
		case 'p':
			e.ptrSize = parseBits(field(fields, 1), token, errs) / 8
			e.ptrABIAlign = parseBits(field(fields, 2), token, errs) / 8
			e.ptrPrefAlign = parseBits(field(fields, 3), token, errs) / 8
			if e.ptrPrefAlign == 0 {
				e.ptrPrefAlign = e.ptrABIAlign
			}
		case 'i', 'f', 'v', 'a':
			kind := alignKindForChar(head[0])
			bits, err := safecast.Conv[uint32](parseBits(head[1:], token, errs))
			if err != nil {
				errs.addf("bit width overflow in token %q", token)
				continue
			}
			abi := parseBits(field(fields, 1), token, errs) / 8
			pref := parseBits(field(fields, 2), token, errs) / 8
			if pref == 0 {
				pref = abi
			}
			e.aligns.set(kind, bits, abi, pref)
		default:
			e.skipToken(token, errs)
		}
	}
}

func alignKindForChar(c byte) AlignKind {
	switch c {
	case 'i':
		return AlignInteger
	case 'f':
		return AlignFloat
	case 'v':
		return AlignVector
	default:
		return AlignAggregate
	}
}

// field returns the i-th colon-delimited field, or "" when the token is
// shorter. A missing field parses as 0, which downstream means "use the
// default".
func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

// parseBits parses a bit count. Malformed or negative values degrade to 0.
func parseBits(s, token string, errs *specErrors) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		errs.addf("bad bit count %q in token %q", s, token)
		return 0
	}
	return n
}

func (e *Engine) skipToken(token string, errs *specErrors) {
	errs.addf("unknown token %q", token)
	if e.tracer.Enabled() {
		e.tracer.Emit(&trace.Event{Scope: trace.ScopeToken, Name: "parse:skip", Detail: token})
	}
}

// String renders the canonical form of the descriptor: endianness, the
// pointer triple, then every alignment record in table order, all widths
// and alignments in bits. Parsing the result reproduces the descriptor.
func (e *Engine) String() string {
	var b strings.Builder
	if e.littleEndian {
		b.WriteByte('e')
	} else {
		b.WriteByte('E')
	}
	fmt.Fprintf(&b, "-p:%d:%d:%d", e.ptrSize*8, e.ptrABIAlign*8, e.ptrPrefAlign*8)
	for _, spec := range e.aligns {
		fmt.Fprintf(&b, "-%c%d:%d:%d", spec.Kind.Char(), spec.Bits, spec.ABI*8, spec.Pref*8)
	}
	return b.String()
}
