package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasi-abi/bind"
	"github.com/wippyai/wasi-abi/idl"
)

// RegisterModule instantiates a binding table as a wazero host module.
// Each binding becomes one exported host function with the core signature
// of its call plan: 32-bit words for pointers and lengths, 64-bit words
// for wide scalars, and the direct result pushed back on the stack.
func RegisterModule(ctx context.Context, rt wazero.Runtime, name string, reg *bind.Registry) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(name)

	for _, b := range reg.Bindings() {
		plan := b.Plan()
		builder.NewFunctionBuilder().
			WithGoModuleFunction(hostFunc(b), paramTypes(plan), resultTypes(plan)).
			Export(b.Func().Name)
	}

	return builder.Instantiate(ctx)
}

func hostFunc(b *bind.Binding) api.GoModuleFunc {
	direct := b.Plan().Direct != nil
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ret := b.Invoke(ctx, NewWazeroMemory(mod.Memory()), stack)
		if direct {
			stack[0] = ret
		}
	}
}

func paramTypes(plan idl.Plan) []api.ValueType {
	out := make([]api.ValueType, len(plan.Words))
	for i, w := range plan.Words {
		if w.Wide() {
			out[i] = api.ValueTypeI64
		} else {
			out[i] = api.ValueTypeI32
		}
	}
	return out
}

func resultTypes(plan idl.Plan) []api.ValueType {
	if plan.Direct == nil {
		return nil
	}
	if plan.Direct.Size == 8 {
		return []api.ValueType{api.ValueTypeI64}
	}
	return []api.ValueType{api.ValueTypeI32}
}
