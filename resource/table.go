package resource

import (
	"sync"

	"github.com/wippyai/wasi-abi/errors"
)

// Dropper is implemented by values that need cleanup when removed
// from a table.
type Dropper interface {
	Drop()
}

type entry struct {
	value  any
	typeID uint32
	valid  bool
}

// Table maps guest-visible descriptor handles to host values.
// Handles are dense small integers allocated from a free list, so a
// removed handle's number is reused by a later Insert. Handle 0 is a
// valid descriptor.
//
// All methods are safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	entries  []entry
	freeList []uint32
	closed   bool
}

// NewTable creates an empty descriptor table.
func NewTable() *Table {
	return &Table{}
}

// Insert stores a value and returns its handle. Freed handles are
// reused before the table grows.
func (t *Table) Insert(typeID uint32, value any) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, errors.InvalidInput(errors.PhaseBind, "insert into closed table")
	}

	if n := len(t.freeList); n > 0 {
		h := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h] = entry{value: value, typeID: typeID, valid: true}
		return h, nil
	}

	h := uint32(len(t.entries))
	t.entries = append(t.entries, entry{value: value, typeID: typeID, valid: true})
	return h, nil
}

// InsertAt stores a value at a specific handle, growing the table if
// needed. It is used to pin well-known descriptors before the guest
// runs. Inserting over a live handle is an error.
func (t *Table) InsertAt(handle, typeID uint32, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errors.InvalidInput(errors.PhaseBind, "insert into closed table")
	}

	for uint32(len(t.entries)) <= handle {
		t.freeList = append(t.freeList, uint32(len(t.entries)))
		t.entries = append(t.entries, entry{})
	}
	if t.entries[handle].valid {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Detail("handle %d already in use", handle).
			Build()
	}

	for i, h := range t.freeList {
		if h == handle {
			t.freeList = append(t.freeList[:i], t.freeList[i+1:]...)
			break
		}
	}
	t.entries[handle] = entry{value: value, typeID: typeID, valid: true}
	return nil
}

// Get retrieves a value by handle.
func (t *Table) Get(handle uint32) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed || handle >= uint32(len(t.entries)) || !t.entries[handle].valid {
		return nil, false
	}
	return t.entries[handle].value, true
}

// GetTyped retrieves a value only if it was inserted with the expected
// type ID.
func (t *Table) GetTyped(handle, typeID uint32) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed || handle >= uint32(len(t.entries)) || !t.entries[handle].valid {
		return nil, false
	}
	e := t.entries[handle]
	if e.typeID != typeID {
		return nil, false
	}
	return e.value, true
}

// Remove drops a handle and returns its value. If the value implements
// Dropper its Drop method is called before Remove returns.
func (t *Table) Remove(handle uint32) (any, bool) {
	t.mu.Lock()

	if t.closed || handle >= uint32(len(t.entries)) || !t.entries[handle].valid {
		t.mu.Unlock()
		return nil, false
	}
	v := t.entries[handle].value
	t.entries[handle] = entry{}
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	if d, ok := v.(Dropper); ok {
		d.Drop()
	}
	return v, true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.entries {
		if e.valid {
			n++
		}
	}
	return n
}

// Close drops every live handle, calling Drop on values that implement
// Dropper. Further operations on the table fail.
func (t *Table) Close() error {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	var dropped []any
	for i, e := range t.entries {
		if e.valid {
			dropped = append(dropped, e.value)
			t.entries[i] = entry{}
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range dropped {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}
