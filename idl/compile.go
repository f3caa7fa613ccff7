package idl

import (
	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/idl/internal/token"
)

// Interface is a compiled IDL document: the named types and functions it
// declares, in declaration order. Compiling the same source always yields
// the same descriptors with the same computed layouts.
type Interface struct {
	Types     []*abi.Type
	Functions []Function

	byName map[string]int
}

// Function describes one syscall signature with fully resolved types.
type Function struct {
	Name    string
	Params  []Param
	Results []Param
}

// Param is one named parameter or result slot.
type Param struct {
	Type *abi.Type
	Name string
}

// Function returns the named function, or false when the interface does
// not declare it.
func (i *Interface) Function(name string) (Function, bool) {
	idx, ok := i.byName[name]
	if !ok {
		return Function{}, false
	}
	return i.Functions[idx], true
}

// Compile parses and resolves witx source. Type references may point
// forward; a record that contains itself, directly or through other
// typenames, fails with cyclic_record.
func Compile(source string) (*Interface, error) {
	p := newParser(token.Tokenize(source))
	typeDecls, funcDecls, err := p.parse()
	if err != nil {
		return nil, err
	}

	r := &resolver{
		decls:    make(map[string]*typeDecl, len(typeDecls)),
		resolved: make(map[string]*abi.Type, len(typeDecls)),
		visiting: make(map[string]bool),
	}
	for i := range typeDecls {
		d := &typeDecls[i]
		if _, dup := r.decls[d.name]; dup {
			return nil, errors.DuplicateFunction(errors.PhaseCompile, "typename", d.name)
		}
		r.decls[d.name] = d
	}

	iface := &Interface{byName: make(map[string]int, len(funcDecls))}

	// Resolve in declaration order so layout computation and error
	// reporting never depend on map iteration.
	for i := range typeDecls {
		t, err := r.resolveName(typeDecls[i].name, nil)
		if err != nil {
			return nil, err
		}
		iface.Types = append(iface.Types, t)
	}

	for _, fd := range funcDecls {
		if _, dup := iface.byName[fd.name]; dup {
			return nil, errors.DuplicateFunction(errors.PhaseCompile, "function", fd.name)
		}
		fn := Function{Name: fd.name}
		for _, pd := range fd.params {
			t, err := r.resolve(pd.expr, pd.name, []string{fd.name, pd.name})
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, Param{Name: pd.name, Type: t})
		}
		for _, rd := range fd.results {
			t, err := r.resolve(rd.expr, rd.name, []string{fd.name, rd.name})
			if err != nil {
				return nil, err
			}
			fn.Results = append(fn.Results, Param{Name: rd.name, Type: t})
		}
		iface.byName[fd.name] = len(iface.Functions)
		iface.Functions = append(iface.Functions, fn)
	}

	return iface, nil
}

type resolver struct {
	decls    map[string]*typeDecl
	resolved map[string]*abi.Type
	visiting map[string]bool
}

func (r *resolver) resolveName(name string, path []string) (*abi.Type, error) {
	if t, ok := r.resolved[name]; ok {
		return t, nil
	}
	d, ok := r.decls[name]
	if !ok {
		return nil, errors.UnknownType(errors.PhaseCompile, path, name)
	}
	if r.visiting[name] {
		return nil, errors.CyclicRecord(errors.PhaseCompile, path, name)
	}
	r.visiting[name] = true
	t, err := r.resolve(d.expr, name, append(path, name))
	delete(r.visiting, name)
	if err != nil {
		return nil, err
	}
	r.resolved[name] = t
	return t, nil
}

// resolve builds the abi descriptor for one type expression. name is the
// typename or field name the expression appears under; anonymous forms
// take it as their type name.
func (r *resolver) resolve(e *typeExpr, name string, path []string) (*abi.Type, error) {
	switch e.kind {
	case exprPrim:
		return renamed(primType(e.prim), name), nil

	case exprRef:
		return r.resolveName(e.prim, path)

	case exprHandle:
		return abi.Handle(name), nil

	case exprEnum:
		width, err := widthBytes(e.width, e.line)
		if err != nil {
			return nil, err
		}
		if max := maxCases(width); uint64(len(e.names)) > max {
			return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(path...).
				Detail("line %d: enum %q has %d cases, %s holds at most %d", e.line, name, len(e.names), e.width, max).
				Build()
		}
		return abi.Enum(name, width, e.names...), nil

	case exprFlags:
		width, err := widthBytes(e.width, e.line)
		if err != nil {
			return nil, err
		}
		if uint32(len(e.names)) > width*8 {
			return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(path...).
				Detail("line %d: flags %q has %d flags, %s holds at most %d", e.line, name, len(e.names), e.width, width*8).
				Build()
		}
		return abi.Flags(name, width, e.names...), nil

	case exprRecord:
		fields := make([]abi.Field, 0, len(e.fields))
		for _, fd := range e.fields {
			ft, err := r.resolve(fd.expr, fd.name, append(path, fd.name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, abi.F(fd.name, ft))
		}
		return abi.Record(name, fields...), nil

	case exprArray:
		elem, err := r.resolve(e.elem, name+"-elem", append(path, "[elem]"))
		if err != nil {
			return nil, err
		}
		return abi.Array(elem), nil
	}

	return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
		Path(path...).
		Detail("line %d: unresolvable type expression", e.line).
		Build()
}

func primType(name string) *abi.Type {
	switch name {
	case "bool":
		return abi.Bool()
	case "u8":
		return abi.U8()
	case "s8":
		return abi.S8()
	case "u16":
		return abi.U16()
	case "s16":
		return abi.S16()
	case "u32":
		return abi.U32()
	case "s32":
		return abi.S32()
	case "u64":
		return abi.U64()
	case "s64":
		return abi.S64()
	case "string":
		return abi.String()
	case "timestamp":
		return abi.Timestamp()
	}
	return nil
}

// renamed gives a primitive the name it is declared under, e.g.
// (typename $filesize u64) yields a u64 named "filesize". The descriptor
// is freshly constructed per use, so the rename never leaks into another
// declaration.
func renamed(t *abi.Type, name string) *abi.Type {
	if t != nil && name != "" {
		t.Name = name
	}
	return t
}

func widthBytes(kw string, line int) (uint32, error) {
	switch kw {
	case "u8":
		return 1, nil
	case "u16":
		return 2, nil
	case "u32":
		return 4, nil
	case "u64":
		return 8, nil
	}
	return 0, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
		Detail("line %d: invalid representation %q, want u8/u16/u32/u64", line, kw).
		Build()
}

func maxCases(width uint32) uint64 {
	if width >= 8 {
		return 1<<63 - 1
	}
	return 1 << (width * 8)
}
