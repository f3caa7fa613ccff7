package engine

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	wasiabi "github.com/wippyai/wasi-abi"
)

var _ wasiabi.Memory = (*WazeroMemory)(nil)

// WazeroMemory wraps wazero memory to implement wasiabi.Memory. Size
// delegates on every call, so growth inside the engine is always visible
// to the marshaller.
type WazeroMemory struct {
	mem api.Memory
}

func NewWazeroMemory(mem api.Memory) *WazeroMemory {
	return &WazeroMemory{mem: mem}
}

func (m *WazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}
