// Package wasiabi defines the binary ABI for a WASI-style system-call
// surface: the byte-level contract by which a sandboxed guest and a trusted
// host exchange syscall arguments and results through guest linear memory.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	wasiabi/        Root package with the guest memory capability interface
//	├── abi/        ABI type descriptors, values, and the WASI preview1 catalog
//	├── marshal/    Bounds/alignment checked typed access to guest memory
//	├── idl/        Interface compiler: witx-style IDL and WIT front ends
//	├── bind/       Host binding table: read-marshal, invoke, write-marshal
//	├── engine/     wazero memory adapter and host module registration
//	├── resource/   Descriptor table mapping guest handles to host values
//	└── errors/     Structured error types shared by all layers
//
// # Trust Model
//
// Everything reaching this layer from the guest side is untrusted: offsets,
// lengths, counts, discriminants, and flag bits are validated before any
// byte is interpreted. A malformed guest value is reported as a structured
// error and, at the call boundary, translated into a WASI errno. It is never
// allowed to become a host-level fault.
//
// # Quick Start
//
// Compile an interface and bind a syscall implementation:
//
//	iface, err := idl.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fn, ok := iface.Function("fd_filestat_get")
//	if !ok {
//	    log.Fatal("fd_filestat_get not declared")
//	}
//
//	reg := bind.NewRegistry()
//	err = reg.Register(fn, func(ctx context.Context, call *bind.Call) abi.Errno {
//	    call.SetResult(0, stat.Value())
//	    return abi.ESUCCESS
//	})
//
// # Memory Model
//
// Guest linear memory can grow at any point between two marshalling calls.
// The Memory capability is therefore re-queried for its current size before
// every bounds check; no length is ever cached inside this layer.
package wasiabi
