// Package typeexpr parses the textual type syntax the command line and
// tests use to name IR types:
//
//	i32  f32  f64  void  label
//	i32*           pointer
//	[4 x i32]      array
//	<4 x i32>      vector
//	{i8, i64, i8}  struct (anonymous)
//
// The star binds to the whole preceding type, so "[2 x i8*]" is an array
// of pointers and "{i8, i32}*" a pointer to a struct.
package typeexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"fortio.org/safecast"

	"datalayout/internal/types"
)

// Parse interns the type denoted by src and returns its TypeID.
func Parse(src string, in *types.Interner) (types.TypeID, error) {
	p := &parser{src: src, in: in}
	id, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, p.errorf("trailing input %q", p.src[p.pos:])
	}
	return id, nil
}

type parser struct {
	src string
	pos int
	in  *types.Interner
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("typeexpr: %s (at offset %d in %q)", fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", string(c))
	}
	p.pos++
	return nil
}

func (p *parser) parseType() (types.TypeID, error) {
	id, err := p.parsePrimary()
	if err != nil {
		return types.NoTypeID, err
	}
	for {
		p.skipSpace()
		if p.peek() != '*' {
			return id, nil
		}
		p.pos++
		id = p.in.Pointer(id)
	}
}

func (p *parser) parsePrimary() (types.TypeID, error) {
	p.skipSpace()
	b := p.in.Builtins()
	switch c := p.peek(); {
	case c == '[':
		p.pos++
		count, err := p.parseCount()
		if err != nil {
			return types.NoTypeID, err
		}
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		if err := p.expect(']'); err != nil {
			return types.NoTypeID, err
		}
		return p.in.Array(elem, count), nil

	case c == '<':
		p.pos++
		count, err := p.parseCount()
		if err != nil {
			return types.NoTypeID, err
		}
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		if err := p.expect('>'); err != nil {
			return types.NoTypeID, err
		}
		id, ok := p.in.VectorOf(elem, count)
		if !ok {
			return types.NoTypeID, p.errorf("vector elements must be integer or floating-point")
		}
		return id, nil

	case c == '{':
		p.pos++
		fields, err := p.parseFieldList()
		if err != nil {
			return types.NoTypeID, err
		}
		id := p.in.RegisterStruct("")
		p.in.SetStructFields(id, fields)
		return id, nil

	case c == 'i' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
		p.pos++
		bits, err := p.parseInt()
		if err != nil {
			return types.NoTypeID, err
		}
		width, convErr := safecast.Conv[uint32](bits)
		if convErr != nil || width == 0 {
			return types.NoTypeID, p.errorf("bad integer width %d", bits)
		}
		return p.in.Integer(width), nil

	default:
		return p.parseWord(b)
	}
}

func (p *parser) parseWord(b types.Builtins) (types.TypeID, error) {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	word := p.src[start:p.pos]
	switch word {
	case "void":
		return b.Void, nil
	case "label":
		return b.Label, nil
	case "float", "f32":
		return b.Float, nil
	case "double", "f64":
		return b.Double, nil
	case "":
		return types.NoTypeID, p.errorf("expected a type")
	default:
		return types.NoTypeID, p.errorf("unknown type %q", word)
	}
}

// parseCount parses the "<N> x" prefix of array and vector types.
func (p *parser) parseCount() (uint64, error) {
	p.skipSpace()
	n, err := p.parseInt()
	if err != nil {
		return 0, err
	}
	count, convErr := safecast.Conv[uint64](n)
	if convErr != nil {
		return 0, p.errorf("bad element count %d", n)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != 'x' {
		return 0, p.errorf("expected \"x\" after element count")
	}
	p.pos++
	return count, nil
}

func (p *parser) parseFieldList() ([]types.StructField, error) {
	var fields []types.StructField
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return fields, nil
	}
	for {
		ft, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.StructField{Type: ft})
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return fields, nil
		default:
			return nil, p.errorf("expected \",\" or \"}\" in field list")
		}
	}
}

func (p *parser) parseInt() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return n, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Format renders a type back to the expression syntax, mainly for
// reports and error messages.
func Format(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case types.KindVoid:
		return "void"
	case types.KindLabel:
		return "label"
	case types.KindFloat:
		return "float"
	case types.KindDouble:
		return "double"
	case types.KindInteger:
		return fmt.Sprintf("i%d", tt.Bits)
	case types.KindVector:
		if tt.Elem != types.NoTypeID {
			return fmt.Sprintf("<%d x %s>", tt.Count, Format(in, tt.Elem))
		}
		return fmt.Sprintf("<%d bits>", tt.Bits)
	case types.KindPointer:
		return Format(in, tt.Elem) + "*"
	case types.KindArray:
		return fmt.Sprintf("[%d x %s]", tt.Count, Format(in, tt.Elem))
	case types.KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return "<struct>"
		}
		if info.Name != "" {
			return "%" + info.Name
		}
		parts := make([]string, len(info.Fields))
		for i, f := range info.Fields {
			parts[i] = Format(in, f.Type)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}
