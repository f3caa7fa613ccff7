package idl

import (
	"strings"

	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/idl/internal/token"
)

// Declarations as parsed, before name resolution. Type expressions keep
// their source line so resolution errors can point back at the input.
type typeDecl struct {
	name string
	expr *typeExpr
	line int
}

type funcDecl struct {
	name    string
	params  []fieldDecl
	results []fieldDecl
	line    int
}

type fieldDecl struct {
	name string
	expr *typeExpr
	line int
}

type exprKind int

const (
	exprPrim exprKind = iota
	exprRef
	exprHandle
	exprEnum
	exprFlags
	exprRecord
	exprArray
)

type typeExpr struct {
	elem   *typeExpr
	prim   string // exprPrim: primitive keyword; exprRef: referenced name
	width  string // exprEnum/exprFlags representation keyword
	names  []string
	fields []fieldDecl
	kind   exprKind
	line   int
}

type parser struct {
	tokens []token.Token
	pos    int
}

func newParser(tokens []token.Token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseParse, "unexpected end of input")
	}
	if t.Type != typ {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("line %d: expected %v, got %q", t.Line, typ, t.Value).
			Build()
	}
	return t, nil
}

// expectKeyword consumes an identifier with the exact given value.
func (p *parser) expectKeyword(kw string) (*token.Token, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if t.Value != kw {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("line %d: expected %q, got %q", t.Line, kw, t.Value).
			Build()
	}
	return t, nil
}

// expectName consumes a $-prefixed identifier and returns it without the
// sigil.
func (p *parser) expectName() (string, int, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return "", 0, err
	}
	if !strings.HasPrefix(t.Value, "$") || len(t.Value) == 1 {
		return "", 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("line %d: expected $name, got %q", t.Line, t.Value).
			Build()
	}
	return t.Value[1:], t.Line, nil
}

// parse consumes the whole token stream as a sequence of top-level
// (typename …) and (func …) forms, in source order.
func (p *parser) parse() ([]typeDecl, []funcDecl, error) {
	var types []typeDecl
	var funcs []funcDecl

	for p.peek() != nil {
		if _, err := p.expect(token.LParen); err != nil {
			return nil, nil, err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, nil, err
		}
		switch kw.Value {
		case "typename":
			td, err := p.parseTypename()
			if err != nil {
				return nil, nil, err
			}
			types = append(types, td)
		case "func":
			fd, err := p.parseFunc()
			if err != nil {
				return nil, nil, err
			}
			funcs = append(funcs, fd)
		default:
			return nil, nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Detail("line %d: expected typename or func, got %q", kw.Line, kw.Value).
				Build()
		}
	}

	return types, funcs, nil
}

func (p *parser) parseTypename() (typeDecl, error) {
	name, line, err := p.expectName()
	if err != nil {
		return typeDecl{}, err
	}
	expr, err := p.parseTypeExpr()
	if err != nil {
		return typeDecl{}, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return typeDecl{}, err
	}
	return typeDecl{name: name, expr: expr, line: line}, nil
}

func (p *parser) parseFunc() (funcDecl, error) {
	name, line, err := p.expectName()
	if err != nil {
		return funcDecl{}, err
	}
	fd := funcDecl{name: name, line: line}

	for {
		t := p.peek()
		if t == nil {
			return funcDecl{}, errors.InvalidInput(errors.PhaseParse, "unexpected end of input")
		}
		if t.Type == token.RParen {
			p.next()
			return fd, nil
		}
		if _, err := p.expect(token.LParen); err != nil {
			return funcDecl{}, err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return funcDecl{}, err
		}
		switch kw.Value {
		case "param":
			f, err := p.parseField()
			if err != nil {
				return funcDecl{}, err
			}
			if len(fd.results) > 0 {
				return funcDecl{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Detail("line %d: param after result in func %q", f.line, fd.name).
					Build()
			}
			fd.params = append(fd.params, f)
		case "result":
			f, err := p.parseField()
			if err != nil {
				return funcDecl{}, err
			}
			fd.results = append(fd.results, f)
		default:
			return funcDecl{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Detail("line %d: expected param or result, got %q", kw.Line, kw.Value).
				Build()
		}
	}
}

// parseField parses the tail of a (param $name <type>) or
// (result $name <type>) form, consuming the closing paren.
func (p *parser) parseField() (fieldDecl, error) {
	name, line, err := p.expectName()
	if err != nil {
		return fieldDecl{}, err
	}
	expr, err := p.parseTypeExpr()
	if err != nil {
		return fieldDecl{}, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return fieldDecl{}, err
	}
	return fieldDecl{name: name, expr: expr, line: line}, nil
}

func (p *parser) parseTypeExpr() (*typeExpr, error) {
	t := p.peek()
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseParse, "unexpected end of input")
	}

	if t.Type == token.Ident {
		p.next()
		if strings.HasPrefix(t.Value, "$") {
			if len(t.Value) == 1 {
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Detail("line %d: empty $name", t.Line).
					Build()
			}
			return &typeExpr{kind: exprRef, prim: t.Value[1:], line: t.Line}, nil
		}
		if !isPrimitive(t.Value) {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Detail("line %d: unknown primitive %q", t.Line, t.Value).
				Build()
		}
		return &typeExpr{kind: exprPrim, prim: t.Value, line: t.Line}, nil
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	switch kw.Value {
	case "handle":
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &typeExpr{kind: exprHandle, line: kw.Line}, nil

	case "enum", "flags":
		kind := exprEnum
		if kw.Value == "flags" {
			kind = exprFlags
		}
		width, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		expr := &typeExpr{kind: kind, width: width.Value, line: kw.Line}
		for {
			t := p.peek()
			if t == nil {
				return nil, errors.InvalidInput(errors.PhaseParse, "unexpected end of input")
			}
			if t.Type == token.RParen {
				p.next()
				return expr, nil
			}
			name, _, err := p.expectName()
			if err != nil {
				return nil, err
			}
			expr.names = append(expr.names, name)
		}

	case "record":
		expr := &typeExpr{kind: exprRecord, line: kw.Line}
		for {
			t := p.peek()
			if t == nil {
				return nil, errors.InvalidInput(errors.PhaseParse, "unexpected end of input")
			}
			if t.Type == token.RParen {
				p.next()
				return expr, nil
			}
			if _, err := p.expect(token.LParen); err != nil {
				return nil, err
			}
			if _, err := p.expectKeyword("field"); err != nil {
				return nil, err
			}
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			expr.fields = append(expr.fields, f)
		}

	case "array":
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &typeExpr{kind: exprArray, elem: elem, line: kw.Line}, nil

	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("line %d: unknown type form %q", kw.Line, kw.Value).
			Build()
	}
}

func isPrimitive(name string) bool {
	switch name {
	case "bool", "u8", "s8", "u16", "s16", "u32", "s32", "u64", "s64",
		"string", "timestamp":
		return true
	}
	return false
}
