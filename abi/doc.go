// Package abi defines the ABI value types of the WASI system-call surface:
// fixed-layout descriptors for every primitive and aggregate, and the
// encode/decode between host-native values and guest byte layouts.
//
// # Memory Layout
//
// Every type has a fixed, statically known guest-side size and alignment,
// independent of host platform word size:
//
//	Type            Size    Alignment
//	──────────────────────────────────
//	bool            1       1
//	u8/s8           1       1
//	u16/s16         2       2
//	u32/s32         4       4
//	u64/s64         8       8
//	handle          4       4
//	timestamp       8       8
//	enum            width   width (1/2/4)
//	flags           width   width (1/2/4/8)
//	string          8       4 (ptr + len)
//	array<T>        8       4 (ptr + count)
//	record          sum     max field align
//
// Integers use little-endian byte order on the wire regardless of host
// order. Record offsets are computed from field order and field alignment;
// padding bytes are zero on encode and ignored on decode.
//
// # Validation
//
// Decode rejects any byte pattern that is not a valid value of the declared
// type: enum discriminants outside the declared range, flag bits outside
// the declared mask, bool bytes other than 0/1. Encode applies the same
// domain checks so an invalid host value can never reach guest memory.
// decode(encode(v)) == v for every valid v.
//
// # WASI catalog
//
// The concrete WASI snapshot types (errno, rights, filestat, fdstat, iovec,
// dirent, prestat, …) are provided as pre-built descriptors with the
// published field orders and widths, plus host-native structs convertible
// to and from Value.
package abi
