package bind

import (
	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/idl"
)

// Registry is the binding table for one host module. It is populated at
// startup and read-only afterwards; lookups at call time never lock.
type Registry struct {
	byName map[string]*Binding
	order  []*Binding
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Binding)}
}

// Register binds fn to impl and adds it to the table. Registering the
// same function name twice fails.
func (r *Registry) Register(fn idl.Function, impl Impl) error {
	if _, dup := r.byName[fn.Name]; dup {
		return errors.DuplicateFunction(errors.PhaseBind, "binding", fn.Name)
	}
	b, err := Bind(fn, impl)
	if err != nil {
		return err
	}
	r.byName[fn.Name] = b
	r.order = append(r.order, b)
	return nil
}

// RegisterInterface binds every function of a compiled interface. Each
// function must have an implementation in impls; a missing one fails with
// not_found so a partially wired syscall table is caught at startup.
func (r *Registry) RegisterInterface(iface *idl.Interface, impls map[string]Impl) error {
	for _, fn := range iface.Functions {
		impl, ok := impls[fn.Name]
		if !ok {
			return errors.NotFound(errors.PhaseBind, "implementation", fn.Name)
		}
		if err := r.Register(fn, impl); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the binding for name, or false when none is registered.
func (r *Registry) Lookup(name string) (*Binding, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Bindings returns all bindings in registration order.
func (r *Registry) Bindings() []*Binding {
	return r.order
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	return len(r.order)
}
