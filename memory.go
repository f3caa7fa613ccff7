package wasiabi

// Memory is the guest linear memory capability handed to the marshalling
// layer by the execution engine for the duration of a single call. The
// engine owns the backing storage and its bounds; this layer never keeps a
// Memory beyond the call it was granted for.
//
// Size must always reflect the current length of the region in bytes. Guest
// memory can grow between two accesses, so callers re-query Size before
// every bounds check instead of caching it.
//
// Read and Write are themselves bounds-checked by the engine; the marshal
// package performs its own validation first so that failures carry the
// structured error taxonomy rather than an engine-specific error.
type Memory interface {
	Size() uint32
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}
