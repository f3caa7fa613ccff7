package idl

import (
	"reflect"
	"testing"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
)

const statSource = `
;; minimal stat surface
(typename $fd (handle))
(typename $errno (enum u16 $success $toobig $acces $badf))
(typename $filesize u64)
(typename $timestamp u64)
(typename $filetype (enum u8
	$unknown $block_device $character_device $directory
	$regular_file $socket_dgram $socket_stream $symbolic_link))
(typename $filestat (record
	(field $dev u64)
	(field $ino u64)
	(field $filetype $filetype)
	(field $nlink u64)
	(field $size $filesize)
	(field $atim $timestamp)
	(field $mtim $timestamp)
	(field $ctim $timestamp)))
(func $fd_filestat_get
	(param $fd $fd)
	(param $buf u32)
	(result $error $errno))
`

func TestCompileStatInterface(t *testing.T) {
	iface, err := Compile(statSource)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(iface.Types) != 6 {
		t.Fatalf("types = %d, want 6", len(iface.Types))
	}
	if len(iface.Functions) != 1 {
		t.Fatalf("functions = %d, want 1", len(iface.Functions))
	}

	// declaration order preserved
	wantNames := []string{"fd", "errno", "filesize", "timestamp", "filetype", "filestat"}
	for i, want := range wantNames {
		if iface.Types[i].Name != want {
			t.Errorf("types[%d] = %q, want %q", i, iface.Types[i].Name, want)
		}
	}

	filestat := iface.Types[5]
	if filestat.Size != 64 || filestat.Align != 8 {
		t.Errorf("filestat layout = %d/%d, want 64/8", filestat.Size, filestat.Align)
	}
	wantOffsets := map[string]uint32{
		"dev": 0, "ino": 8, "filetype": 16, "nlink": 24,
		"size": 32, "atim": 40, "mtim": 48, "ctim": 56,
	}
	for _, f := range filestat.Fields {
		if f.Offset != wantOffsets[f.Name] {
			t.Errorf("filestat.%s offset = %d, want %d", f.Name, f.Offset, wantOffsets[f.Name])
		}
	}

	fn, ok := iface.Function("fd_filestat_get")
	if !ok {
		t.Fatal("fd_filestat_get not found")
	}
	if len(fn.Params) != 2 || len(fn.Results) != 1 {
		t.Fatalf("signature = %d params, %d results", len(fn.Params), len(fn.Results))
	}
	if fn.Params[0].Type.Kind != abi.KindHandle {
		t.Errorf("param fd kind = %v, want handle", fn.Params[0].Type.Kind)
	}
	if fn.Results[0].Type.Kind != abi.KindEnum || fn.Results[0].Type.Size != 2 {
		t.Errorf("result errno = %v size %d, want u16 enum", fn.Results[0].Type.Kind, fn.Results[0].Type.Size)
	}
}

func TestCompileForwardReference(t *testing.T) {
	iface, err := Compile(`
		(typename $pair (record (field $a $inner) (field $b $inner)))
		(typename $inner u32)
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	pair := iface.Types[0]
	if pair.Size != 8 || pair.Fields[1].Offset != 4 {
		t.Errorf("pair = %d bytes, b at %d; want 8 bytes, b at 4", pair.Size, pair.Fields[1].Offset)
	}
}

func TestCompileTypeAliasShared(t *testing.T) {
	iface, err := Compile(`
		(typename $filesize u64)
		(typename $filestat (record (field $size $filesize)))
		(func $f (param $a $filesize) (param $b $filesize))
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	fn := iface.Functions[0]
	if fn.Params[0].Type != fn.Params[1].Type {
		t.Error("references to the same typename should share one descriptor")
	}
	if fn.Params[0].Type.Name != "filesize" {
		t.Errorf("alias name = %q, want filesize", fn.Params[0].Type.Name)
	}
}

func TestCompileDeterministic(t *testing.T) {
	a, err := Compile(statSource)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile(statSource)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Types, b.Types) {
		t.Error("types differ between two compilations of the same source")
	}
	if !reflect.DeepEqual(a.Functions, b.Functions) {
		t.Error("functions differ between two compilations of the same source")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   errors.Kind
	}{
		{
			"unknown_type",
			`(func $f (param $x $nope))`,
			errors.KindUnknownType,
		},
		{
			"unknown_type_in_record",
			`(typename $r (record (field $x $nope)))`,
			errors.KindUnknownType,
		},
		{
			"duplicate_typename",
			`(typename $x u8) (typename $x u16)`,
			errors.KindDuplicateFunction,
		},
		{
			"duplicate_function",
			`(func $f) (func $f)`,
			errors.KindDuplicateFunction,
		},
		{
			"cyclic_record_direct",
			`(typename $a (record (field $x $a)))`,
			errors.KindCyclicRecord,
		},
		{
			"cyclic_record_indirect",
			`(typename $a (record (field $x $b)))
			 (typename $b (record (field $y $a)))`,
			errors.KindCyclicRecord,
		},
		{
			"cyclic_through_array",
			`(typename $a (record (field $x (array $a))))`,
			errors.KindCyclicRecord,
		},
		{
			"enum_too_many_cases",
			`(typename $e (enum u8 ` + manyCases(257) + `))`,
			errors.KindInvalidInput,
		},
		{
			"flags_too_many",
			`(typename $f (flags u8 ` + manyCases(9) + `))`,
			errors.KindInvalidInput,
		},
		{
			"bad_width",
			`(typename $e (enum u12 $a))`,
			errors.KindInvalidInput,
		},
		{
			"param_after_result",
			`(func $f (result $e u16) (param $x u32))`,
			errors.KindInvalidInput,
		},
		{
			"unknown_primitive",
			`(typename $x f32)`,
			errors.KindInvalidInput,
		},
		{
			"unknown_form",
			`(typename $x (variant $a $b))`,
			errors.KindInvalidInput,
		},
		{
			"top_level_junk",
			`(module)`,
			errors.KindInvalidInput,
		},
		{
			"truncated",
			`(typename $x (record`,
			errors.KindInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.source)
			if !errors.IsKind(err, tc.kind) {
				t.Errorf("Compile = %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func manyCases(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += " $c" + string(rune('a'+i%26)) + itoa(i)
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestCompileComments(t *testing.T) {
	iface, err := Compile(`
		;; a handle
		(typename $fd (handle)) (; inline (; nested ;) note ;)
		(func $fd_close (param $fd $fd) (result $error u16))
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(iface.Types) != 1 || len(iface.Functions) != 1 {
		t.Errorf("got %d types, %d functions", len(iface.Types), len(iface.Functions))
	}
}
