// Package errors provides structured error types for the wasi-abi library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/ABI type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
//		Path("filestat", "filetype").
//		AbiType("filetype").
//		Detail("discriminant 9 out of range").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseMarshal, path, offset, size, regionLen)
//	err := errors.Misaligned(errors.PhaseMarshal, path, offset, align)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
