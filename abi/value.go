package abi

// Value is a transient host-native value of one ABI type, materialized for
// the duration of a single marshalling operation. Scalars live in bits;
// string and array values hold only the guest pointer + length header (the
// pointed-at bytes are the marshaller's business); records hold their
// fields positionally.
type Value struct {
	typ    *Type
	fields []Value
	bits   uint64
}

// Scalar builds a value for any scalar kind. For signed kinds bits is the
// two's-complement representation; for bool it must be 0 or 1.
func Scalar(t *Type, bits uint64) Value {
	return Value{typ: t, bits: bits}
}

// PtrLen builds a string or array header value.
func PtrLen(t *Type, ptr, length uint32) Value {
	return Value{typ: t, bits: uint64(length)<<32 | uint64(ptr)}
}

// RecordOf builds a record value from positional field values.
func RecordOf(t *Type, fields ...Value) Value {
	return Value{typ: t, fields: fields}
}

// Type returns the descriptor this value belongs to.
func (v Value) Type() *Type {
	return v.typ
}

// Bits returns the raw scalar payload.
func (v Value) Bits() uint64 {
	return v.bits
}

func (v Value) Bool() bool     { return v.bits != 0 }
func (v Value) U8() uint8      { return uint8(v.bits) }
func (v Value) U16() uint16    { return uint16(v.bits) }
func (v Value) U32() uint32    { return uint32(v.bits) }
func (v Value) U64() uint64    { return v.bits }
func (v Value) S64() int64     { return signExtend(v.bits, v.typ.Size) }
func (v Value) Handle() uint32 { return uint32(v.bits) }

// Ptr returns the guest pointer of a string or array header.
func (v Value) Ptr() uint32 {
	return uint32(v.bits)
}

// DataLen returns the byte length (string) or element count (array) of a
// pointer+length header.
func (v Value) DataLen() uint32 {
	return uint32(v.bits >> 32)
}

// NumFields returns the number of record fields.
func (v Value) NumFields() int {
	return len(v.fields)
}

// Field returns the i-th record field value.
func (v Value) Field(i int) Value {
	return v.fields[i]
}

// FieldByName returns a record field value by name.
func (v Value) FieldByName(name string) (Value, bool) {
	for i, f := range v.typ.Fields {
		if f.Name == name {
			return v.fields[i], true
		}
	}
	return Value{}, false
}

// Equal reports whether two values have identical type identity shape and
// payload. Used by round-trip tests and the bind layer.
func (v Value) Equal(o Value) bool {
	if v.typ == nil || o.typ == nil {
		return v.typ == o.typ
	}
	if v.typ.Kind != o.typ.Kind || v.typ.Size != o.typ.Size {
		return false
	}
	if v.typ.Kind == KindRecord {
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if !v.fields[i].Equal(o.fields[i]) {
				return false
			}
		}
		return true
	}
	return v.bits == o.bits
}

func signExtend(bits uint64, size uint32) int64 {
	shift := 64 - size*8
	return int64(bits<<shift) >> shift
}
