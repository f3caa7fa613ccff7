// Package engine adapts the syscall layer to a wazero runtime.
//
// WazeroMemory exposes a module's linear memory as the wasiabi.Memory
// capability the marshaller works over. RegisterModule turns a
// bind.Registry into an instantiated host module, one exported function
// per binding:
//
//	rt := wazero.NewRuntime(ctx)
//	mod, err := engine.RegisterModule(ctx, rt, "wasi_snapshot_preview1", reg)
//
// Guest modules that import functions from the given module name are then
// linked against the bindings when instantiated on the same runtime.
package engine
