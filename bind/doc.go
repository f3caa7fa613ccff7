// Package bind turns compiled function signatures into invokable host
// bindings.
//
// A Binding is built once at startup from an idl.Function and a native
// implementation, then invoked for every guest call:
//
//	reg := bind.NewRegistry()
//	err := reg.RegisterInterface(iface, map[string]bind.Impl{
//		"fd_filestat_get": func(ctx context.Context, call *bind.Call) abi.Errno {
//			fd := call.Handle(0)
//			stat, errno := lookupStat(fd)
//			if errno != abi.ESUCCESS {
//				return errno
//			}
//			call.SetResult(1, stat.Value())
//			return abi.ESUCCESS
//		},
//	})
//
// Invoke follows the function's lowered plan: scalar words are validated,
// record pointers are read through the marshaller, string and array
// arguments are bounds-checked and decoded, the implementation runs, and
// on ESUCCESS the results it set are written back through the guest's
// out-pointers.
//
// Failure never crosses the boundary as anything but an errno:
// out-of-bounds and misaligned accesses become EFAULT, size overflows
// EOVERFLOW, malformed text EILSEQ, and every other invalid encoding
// EINVAL. A panic inside an implementation is recovered, logged, and
// surfaced as EFAULT.
package bind
