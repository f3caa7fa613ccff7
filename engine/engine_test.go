package engine

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/bind"
	"github.com/wippyai/wasi-abi/idl"
	"github.com/wippyai/wasi-abi/marshal"
	"github.com/wippyai/wasi-abi/resource"
)

// (module (memory (export "memory") 1))
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

// (module
//
//	(import "wasi_test" "fd_filestat_get" (func $get (param i32 i32) (result i32)))
//	(memory (export "memory") 1)
//	(func (export "call") (param i32 i32) (result i32)
//		(call $get (local.get 0) (local.get 1))))
var guestModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32, i32) -> i32
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	// import wasi_test.fd_filestat_get
	0x02, 0x1d, 0x01,
	0x09, 'w', 'a', 's', 'i', '_', 't', 'e', 's', 't',
	0x0f, 'f', 'd', '_', 'f', 'i', 'l', 'e', 's', 't', 'a', 't', '_', 'g', 'e', 't',
	0x00, 0x00,
	// one defined function of type 0
	0x03, 0x02, 0x01, 0x00,
	// memory, min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,
	// exports: memory, call
	0x07, 0x11, 0x02,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x04, 'c', 'a', 'l', 'l', 0x00, 0x01,
	// body: local.get 0, local.get 1, call 0
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x00, 0x0b,
}

func newRuntime(t *testing.T) (context.Context, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { rt.Close(ctx) })
	return ctx, rt
}

func TestWazeroMemory(t *testing.T) {
	ctx, rt := newRuntime(t)

	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	mem := NewWazeroMemory(mod.Memory())
	if mem.Size() != 65536 {
		t.Fatalf("Size = %d, want one page", mem.Size())
	}

	if err := mem.Write(100, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := mem.Read(100, 3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if data[0] != 1 || data[2] != 3 {
		t.Errorf("Read = %v", data)
	}

	if _, err := mem.Read(65534, 4); err == nil {
		t.Error("Read past end should fail")
	}
	if err := mem.Write(65535, []byte{1, 2}); err == nil {
		t.Error("Write past end should fail")
	}

	// growth is visible without re-wrapping
	if _, ok := mod.Memory().Grow(1); !ok {
		t.Fatal("Grow failed")
	}
	if mem.Size() != 2*65536 {
		t.Errorf("Size after grow = %d, want two pages", mem.Size())
	}
	if _, err := mem.Read(65534, 4); err != nil {
		t.Errorf("Read across old boundary after grow: %v", err)
	}
}

func TestWazeroMemoryNil(t *testing.T) {
	mem := NewWazeroMemory(nil)
	if mem.Size() != 0 {
		t.Errorf("Size of nil memory = %d, want 0", mem.Size())
	}
}

const statIDL = `
(typename $fd (handle))
(typename $errno (enum u16 $success $toobig $acces $addrinuse $addrnotavail
	$afnosupport $again $already $badf))
(typename $filetype (enum u8
	$unknown $block_device $character_device $directory
	$regular_file $socket_dgram $socket_stream $symbolic_link))
(typename $filestat (record
	(field $dev u64)
	(field $ino u64)
	(field $filetype $filetype)
	(field $nlink u64)
	(field $size u64)
	(field $atim u64)
	(field $mtim u64)
	(field $ctim u64)))
(func $fd_filestat_get
	(param $fd $fd)
	(param $buf u32)
	(result $error $errno))
`

const fileTypeID = 1

// buildRegistry wires fd_filestat_get to look descriptors up in a
// resource table and write their filestat through the buf pointer.
func buildRegistry(t *testing.T) *bind.Registry {
	t.Helper()
	iface, err := idl.Compile(statIDL)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	files := resource.NewTable()
	t.Cleanup(func() { files.Close() })
	err = files.InsertAt(3, fileTypeID, &abi.Filestat{
		Dev: 7, Ino: 42, Filetype: abi.FiletypeRegularFile,
		Nlink: 1, Size: 4096, Atim: 100, Mtim: 200, Ctim: 300,
	})
	if err != nil {
		t.Fatalf("InsertAt: %v", err)
	}

	reg := bind.NewRegistry()
	err = reg.RegisterInterface(iface, map[string]bind.Impl{
		"fd_filestat_get": func(ctx context.Context, call *bind.Call) abi.Errno {
			v, ok := files.GetTyped(call.Handle(0), fileTypeID)
			if !ok {
				return abi.EBADF
			}
			stat := v.(*abi.Filestat)
			if err := marshal.Write(call.Memory(), call.U32(1), stat.Value()); err != nil {
				return abi.EFAULT
			}
			return abi.ESUCCESS
		},
	})
	if err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	return reg
}

func TestRegisterModuleEndToEnd(t *testing.T) {
	ctx, rt := newRuntime(t)

	if _, err := RegisterModule(ctx, rt, "wasi_test", buildRegistry(t)); err != nil {
		t.Fatalf("RegisterModule: %v", err)
	}

	guest, err := rt.Instantiate(ctx, guestModule)
	if err != nil {
		t.Fatalf("Instantiate guest: %v", err)
	}

	results, err := guest.ExportedFunction("call").Call(ctx, 3, 1024)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if abi.Errno(results[0]) != abi.ESUCCESS {
		t.Fatalf("errno = %v", abi.Errno(results[0]))
	}

	buf, ok := guest.Memory().Read(1024, 64)
	if !ok {
		t.Fatal("guest memory read failed")
	}
	if got := binary.LittleEndian.Uint64(buf[0:]); got != 7 {
		t.Errorf("dev = %d, want 7", got)
	}
	if buf[16] != uint8(abi.FiletypeRegularFile) {
		t.Errorf("filetype = %d, want %d", buf[16], abi.FiletypeRegularFile)
	}
	if got := binary.LittleEndian.Uint64(buf[32:]); got != 4096 {
		t.Errorf("size = %d, want 4096", got)
	}

	t.Run("bad_fd", func(t *testing.T) {
		results, err := guest.ExportedFunction("call").Call(ctx, 9, 1024)
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		if abi.Errno(results[0]) != abi.EBADF {
			t.Errorf("errno = %v, want EBADF", abi.Errno(results[0]))
		}
	})

	t.Run("bad_pointer", func(t *testing.T) {
		// misaligned out-pointer faults inside the impl's write
		results, err := guest.ExportedFunction("call").Call(ctx, 3, 1025)
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		if abi.Errno(results[0]) != abi.EFAULT {
			t.Errorf("errno = %v, want EFAULT", abi.Errno(results[0]))
		}
	})
}
