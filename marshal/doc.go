// Package marshal bridges ABI byte layouts and a bounded, possibly-growing
// guest memory region.
//
// Every operation validates alignment and bounds before touching memory,
// using overflow-safe arithmetic on guest-controlled sizes, and re-queries
// the region's current length immediately before each bounds check: guest
// memory may grow between two calls, so no cached length is ever reused.
//
// Failures are structured errors (out_of_bounds, misaligned, overflow,
// invalid_encoding, invalid_text), never panics, and a failed write leaves
// no partial bytes behind - values are encoded into a scratch buffer and
// committed with a single write.
package marshal
