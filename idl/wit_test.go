package idl

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
)

func named(s string) *string { return &s }

func TestTypeFromWITPrimitives(t *testing.T) {
	tests := []struct {
		wit  wit.Type
		kind abi.Kind
		size uint32
	}{
		{wit.Bool{}, abi.KindBool, 1},
		{wit.U8{}, abi.KindU8, 1},
		{wit.S8{}, abi.KindS8, 1},
		{wit.U16{}, abi.KindU16, 2},
		{wit.S16{}, abi.KindS16, 2},
		{wit.U32{}, abi.KindU32, 4},
		{wit.S32{}, abi.KindS32, 4},
		{wit.U64{}, abi.KindU64, 8},
		{wit.S64{}, abi.KindS64, 8},
		{wit.String{}, abi.KindString, 8},
	}

	for _, tc := range tests {
		got, err := TypeFromWIT(tc.wit)
		if err != nil {
			t.Errorf("TypeFromWIT(%T): %v", tc.wit, err)
			continue
		}
		if got.Kind != tc.kind || got.Size != tc.size {
			t.Errorf("TypeFromWIT(%T) = %v/%d, want %v/%d", tc.wit, got.Kind, got.Size, tc.kind, tc.size)
		}
	}
}

func TestTypeFromWITRecord(t *testing.T) {
	td := &wit.TypeDef{
		Name: named("filestat"),
		Kind: &wit.Record{
			Fields: []wit.Field{
				{Name: "dev", Type: wit.U64{}},
				{Name: "filetype", Type: wit.U8{}},
				{Name: "size", Type: wit.U64{}},
			},
		},
	}

	got, err := TypeFromWIT(td)
	if err != nil {
		t.Fatalf("TypeFromWIT: %v", err)
	}
	if got.Name != "filestat" || got.Kind != abi.KindRecord {
		t.Fatalf("type = %v", got)
	}
	if got.Size != 24 || got.Align != 8 {
		t.Errorf("layout = %d/%d, want 24/8", got.Size, got.Align)
	}
	if got.Fields[2].Offset != 16 {
		t.Errorf("size offset = %d, want 16 (u8 padded to next u64 slot)", got.Fields[2].Offset)
	}
}

func TestTypeFromWITEnum(t *testing.T) {
	small := &wit.TypeDef{
		Name: named("filetype"),
		Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "unknown"}, {Name: "regular"}}},
	}
	got, err := TypeFromWIT(small)
	if err != nil {
		t.Fatal(err)
	}
	if got.Size != 1 || got.NumCases != 2 {
		t.Errorf("small enum = size %d cases %d, want 1/2", got.Size, got.NumCases)
	}

	var cases []wit.EnumCase
	for i := 0; i < 300; i++ {
		cases = append(cases, wit.EnumCase{Name: "c" + itoa(i)})
	}
	big := &wit.TypeDef{Name: named("big"), Kind: &wit.Enum{Cases: cases}}
	got, err = TypeFromWIT(big)
	if err != nil {
		t.Fatal(err)
	}
	if got.Size != 2 {
		t.Errorf("300-case enum discriminant = %d bytes, want 2", got.Size)
	}
}

func TestTypeFromWITFlagsAndList(t *testing.T) {
	flags := &wit.TypeDef{
		Name: named("rights"),
		Kind: &wit.Flags{Flags: []wit.Flag{
			{Name: "read"}, {Name: "write"}, {Name: "seek"},
			{Name: "tell"}, {Name: "sync"}, {Name: "advise"},
			{Name: "allocate"}, {Name: "datasync"}, {Name: "stat"},
		}},
	}
	got, err := TypeFromWIT(flags)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != abi.KindFlags || got.Size != 2 {
		t.Errorf("9-flag type = %v/%d, want flags/2", got.Kind, got.Size)
	}

	list := &wit.TypeDef{Kind: &wit.List{Type: wit.U32{}}}
	got, err = TypeFromWIT(list)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != abi.KindArray || got.Elem.Kind != abi.KindU32 {
		t.Errorf("list<u32> = %v of %v", got.Kind, got.Elem.Kind)
	}
}

func TestTypeFromWITUnsupported(t *testing.T) {
	tests := []wit.Type{
		wit.F32{},
		wit.F64{},
		wit.Char{},
		&wit.TypeDef{Kind: &wit.Variant{}},
		&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}},
	}
	for _, w := range tests {
		if _, err := TypeFromWIT(w); !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("TypeFromWIT(%T) = %v, want unsupported", w, err)
		}
	}
}

func TestFromWITFunction(t *testing.T) {
	errno := &wit.TypeDef{
		Name: named("errno"),
		Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "success"}, {Name: "badf"}}},
	}
	params := []wit.Param{
		{Name: "fd", Type: wit.U32{}},
		{Name: "offset", Type: wit.U64{}},
	}
	results := []wit.Param{
		{Name: "error", Type: errno},
	}

	fn, err := FromWIT("fd_pread", params, results)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	if fn.Name != "fd_pread" || len(fn.Params) != 2 || len(fn.Results) != 1 {
		t.Fatalf("fn = %+v", fn)
	}
	if fn.Results[0].Type.Name != "errno" {
		t.Errorf("result type = %q, want errno", fn.Results[0].Type.Name)
	}

	p := fn.Plan()
	if p.Direct == nil || len(p.Words) != 2 {
		t.Errorf("plan = direct %v, %d words; want direct errno, 2 words", p.Direct, len(p.Words))
	}
}
