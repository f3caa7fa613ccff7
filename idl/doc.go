// Package idl compiles syscall interface definitions into resolved type
// descriptors.
//
// The primary front end is a witx-flavoured s-expression grammar:
//
//	iface, err := idl.Compile(`
//		(typename $fd (handle))
//		(typename $errno (enum u16 $success $toobig $acces))
//		(func $fd_close
//			(param $fd $fd)
//			(result $error $errno))
//	`)
//
// Top-level forms:
//   - (typename $name <type>) declares a named type
//   - (func $name (param $n <type>)... (result $n <type>)...) declares a
//     function
//
// Type expressions:
//   - primitives: bool, u8, s8, u16, s16, u32, s32, u64, s64, string,
//     timestamp
//   - (handle): opaque host resource index
//   - (enum <repr> $case...) and (flags <repr> $flag...) with repr one of
//     u8, u16, u32, u64
//   - (record (field $name <type>)...)
//   - (array <type>)
//   - $name: reference to a typename, forward references allowed
//   - comments: line (;;) and block (; ;)
//
// Compilation resolves every reference to an immutable abi.Type with
// computed layout. A record containing itself, directly or through other
// typenames, is rejected. Output is deterministic: declaration order
// drives all iteration, so compiling the same source twice yields
// identical descriptors and offsets.
//
// Function.Plan lowers a signature to flat core words the way preview1
// syscalls are called: scalars direct, strings and arrays as pointer plus
// length, records by guest pointer, results through out-pointers with a
// scalar first result returned directly.
//
// A second front end, FromWIT and TypeFromWIT, accepts WIT types and
// parameter lists from go.bytecodealliance.org/wit for interfaces defined
// in WIT documents.
package idl
