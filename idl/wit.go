package idl

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/internal/layout"
)

// FromWIT builds a resolved function descriptor from WIT parameter lists,
// so interfaces defined in WIT documents can feed the same binding path
// as witx source.
func FromWIT(name string, params, results []wit.Param) (Function, error) {
	fn := Function{Name: name}
	for _, p := range params {
		t, err := typeFromWIT(p.Type, p.Name)
		if err != nil {
			return Function{}, err
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: t})
	}
	for _, r := range results {
		t, err := typeFromWIT(r.Type, r.Name)
		if err != nil {
			return Function{}, err
		}
		fn.Results = append(fn.Results, Param{Name: r.Name, Type: t})
	}
	return fn, nil
}

// TypeFromWIT maps a WIT type onto an abi descriptor. Kinds with no
// fixed-layout ABI representation (floats, char, variant, option, result,
// tuple, resource internals) fail with unsupported.
func TypeFromWIT(t wit.Type) (*abi.Type, error) {
	return typeFromWIT(t, "")
}

func typeFromWIT(t wit.Type, name string) (*abi.Type, error) {
	switch wt := t.(type) {
	case wit.Bool:
		return renamed(abi.Bool(), name), nil
	case wit.U8:
		return renamed(abi.U8(), name), nil
	case wit.S8:
		return renamed(abi.S8(), name), nil
	case wit.U16:
		return renamed(abi.U16(), name), nil
	case wit.S16:
		return renamed(abi.S16(), name), nil
	case wit.U32:
		return renamed(abi.U32(), name), nil
	case wit.S32:
		return renamed(abi.S32(), name), nil
	case wit.U64:
		return renamed(abi.U64(), name), nil
	case wit.S64:
		return renamed(abi.S64(), name), nil
	case wit.String:
		return abi.String(), nil
	case *wit.TypeDef:
		return typeDefFromWIT(wt, name)
	default:
		return nil, errors.Unsupported(errors.PhaseCompile, fmt.Sprintf("WIT type %T", t))
	}
}

func typeDefFromWIT(td *wit.TypeDef, name string) (*abi.Type, error) {
	if td.Name != nil && *td.Name != "" {
		name = *td.Name
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]abi.Field, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := typeFromWIT(f.Type, f.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, abi.F(f.Name, ft))
		}
		return abi.Record(name, fields...), nil

	case *wit.List:
		elem, err := typeFromWIT(kind.Type, "")
		if err != nil {
			return nil, err
		}
		return abi.Array(elem), nil

	case *wit.Enum:
		cases := make([]string, len(kind.Cases))
		for i, c := range kind.Cases {
			cases[i] = c.Name
		}
		return abi.Enum(name, layout.DiscriminantSize(len(cases)), cases...), nil

	case *wit.Flags:
		names := make([]string, len(kind.Flags))
		for i, f := range kind.Flags {
			names[i] = f.Name
		}
		if len(names) > 64 {
			return nil, errors.Unsupported(errors.PhaseCompile, fmt.Sprintf("flags type with %d flags", len(names)))
		}
		return abi.Flags(name, layout.FlagsSize(len(names)), names...), nil

	case *wit.Own, *wit.Borrow:
		return abi.Handle(name), nil

	case wit.Type:
		// Type alias: unwrap to the aliased type, keeping the outer name.
		return typeFromWIT(kind, name)

	default:
		return nil, errors.Unsupported(errors.PhaseCompile, fmt.Sprintf("WIT TypeDef kind %T", td.Kind))
	}
}
