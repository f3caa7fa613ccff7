package abi

import (
	"strings"

	"github.com/wippyai/wasi-abi/internal/layout"
)

// Type is an immutable descriptor for one ABI type: its kind, its fixed
// guest-side byte size and alignment, and its kind-specific shape (record
// fields with computed offsets, enum case names, flags mask, array element).
//
// Descriptors are built once, at interface-compilation time, and treated as
// read-only thereafter. Every Type flattens to a statically known size; the
// constructors make unsized or self-referential layouts unrepresentable.
type Type struct {
	Elem     *Type   // array element type
	Name     string  // catalog name, e.g. "filestat"; empty for anonymous types
	Fields   []Field // record fields in declaration order
	Cases    []string
	Mask     uint64 // flags: the set of valid bits
	Size     uint32
	Align    uint32
	NumCases uint32 // enum: number of valid discriminants
	Kind     Kind
}

// Field is one named record member at a fixed guest-side offset.
type Field struct {
	Type   *Type
	Name   string
	Offset uint32
}

func scalar(name string, kind Kind, size uint32) *Type {
	return &Type{Name: name, Kind: kind, Size: size, Align: size}
}

func Bool() *Type { return scalar("bool", KindBool, 1) }
func U8() *Type   { return scalar("u8", KindU8, 1) }
func S8() *Type   { return scalar("s8", KindS8, 1) }
func U16() *Type  { return scalar("u16", KindU16, 2) }
func S16() *Type  { return scalar("s16", KindS16, 2) }
func U32() *Type  { return scalar("u32", KindU32, 4) }
func S32() *Type  { return scalar("s32", KindS32, 4) }
func U64() *Type  { return scalar("u64", KindU64, 8) }
func S64() *Type  { return scalar("s64", KindS64, 8) }

// Handle is an opaque 32-bit guest-visible resource identifier. This layer
// encodes and decodes the integer; it never dereferences it.
func Handle(name string) *Type {
	return &Type{Name: name, Kind: KindHandle, Size: 4, Align: 4}
}

// Timestamp is a u64 count of nanoseconds since an unspecified epoch.
func Timestamp() *Type {
	return &Type{Name: "timestamp", Kind: KindTimestamp, Size: 8, Align: 8}
}

// Enum builds an enum with the given discriminant width in bytes (1, 2 or 4)
// and case names. Decoding rejects discriminants >= len(cases).
func Enum(name string, width uint32, cases ...string) *Type {
	return &Type{
		Name:     name,
		Kind:     KindEnum,
		Size:     width,
		Align:    width,
		Cases:    cases,
		NumCases: uint32(len(cases)),
	}
}

// Flags builds a bit vector of the given width in bytes (1, 2, 4 or 8).
// One bit per name, starting at bit 0. Decoding rejects any set bit outside
// the named set, so rights a guest was never granted cannot be forged
// through reserved bits.
func Flags(name string, width uint32, names ...string) *Type {
	var mask uint64
	for i := range names {
		mask |= 1 << uint(i)
	}
	return &Type{
		Name:  name,
		Kind:  KindFlags,
		Size:  width,
		Align: width,
		Cases: names,
		Mask:  mask,
	}
}

// Record builds a composite with explicit per-field offsets computed from
// field order and each field's alignment.
func Record(name string, fields ...Field) *Type {
	infos := make([]layout.Info, len(fields))
	for i, f := range fields {
		infos[i] = layout.Info{Size: f.Type.Size, Align: f.Type.Align}
	}
	info, offsets := layout.Record(infos)

	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Name: f.Name, Type: f.Type, Offset: offsets[i]}
	}
	return &Type{
		Name:   name,
		Kind:   KindRecord,
		Size:   info.Size,
		Align:  info.Align,
		Fields: out,
	}
}

// String is a guest pointer + byte length pair. The pointed-at bytes are
// read through the marshaller, not here.
func String() *Type {
	return &Type{Name: "string", Kind: KindString, Size: 8, Align: 4}
}

// Array is a guest pointer + element count pair over a fixed-size element.
func Array(elem *Type) *Type {
	return &Type{
		Name:  "array<" + elem.Name + ">",
		Kind:  KindArray,
		Size:  8,
		Align: 4,
		Elem:  elem,
	}
}

// F is shorthand for constructing a Field before offsets are computed.
func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// FieldByName returns the record field with the given name.
func (t *Type) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SameShape reports whether two descriptors describe the same wire layout:
// kind, size, alignment, and recursively record field offsets and element
// shapes. Names are not compared, so a catalog descriptor matches a
// structurally identical type compiled from an interface definition.
func (t *Type) SameShape(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Kind != o.Kind || t.Size != o.Size || t.Align != o.Align {
		return false
	}
	switch t.Kind {
	case KindRecord:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Offset != o.Fields[i].Offset {
				return false
			}
			if !t.Fields[i].Type.SameShape(o.Fields[i].Type) {
				return false
			}
		}
	case KindEnum:
		return t.NumCases == o.NumCases
	case KindFlags:
		return t.Mask == o.Mask
	case KindArray:
		return t.Elem.SameShape(o.Elem)
	}
	return true
}

// CaseName returns the name of an enum discriminant, for diagnostics.
func (t *Type) CaseName(disc uint32) string {
	if int(disc) < len(t.Cases) {
		return t.Cases[disc]
	}
	return "invalid"
}

// FlagBit returns the bit position of a named flag.
func (t *Type) FlagBit(name string) (uint, bool) {
	for i, n := range t.Cases {
		if n == name {
			return uint(i), true
		}
	}
	return 0, false
}

// String renders a compact human-readable form, e.g.
// "filestat(record, 64/8)" or "u32".
func (t *Type) String() string {
	var b strings.Builder
	if t.Name != "" {
		b.WriteString(t.Name)
	} else {
		b.WriteString(t.Kind.String())
	}
	if !t.Kind.IsScalar() || t.Kind == KindEnum || t.Kind == KindFlags {
		b.WriteByte('(')
		b.WriteString(t.Kind.String())
		b.WriteString(", ")
		writeUint(&b, t.Size)
		b.WriteByte('/')
		writeUint(&b, t.Align)
		b.WriteByte(')')
	}
	return b.String()
}

func writeUint(b *strings.Builder, v uint32) {
	if v >= 10 {
		writeUint(b, v/10)
	}
	b.WriteByte(byte('0' + v%10))
}
