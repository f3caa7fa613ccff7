package abi

import (
	"encoding/binary"

	"github.com/wippyai/wasi-abi/errors"
)

// Byte order is fixed to little-endian across the whole ABI, matching
// WebAssembly's native order, regardless of host platform order.

// Encode serializes a value into a freshly allocated buffer of the type's
// exact byte size. Padding bytes are zero.
func Encode(v Value) ([]byte, error) {
	buf := make([]byte, v.typ.Size)
	if err := encodeInto(v, buf, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeInto serializes a value into buf, which must hold at least
// Type.Size bytes. The full Type.Size prefix is overwritten, padding
// included; no byte outside that prefix is touched.
func EncodeInto(v Value, buf []byte) error {
	if uint32(len(buf)) < v.typ.Size {
		return errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			AbiType(v.typ.Name).
			Detail("buffer of %d bytes cannot hold %d-byte value", len(buf), v.typ.Size).
			Build()
	}
	for i := uint32(0); i < v.typ.Size; i++ {
		buf[i] = 0
	}
	return encodeInto(v, buf, nil)
}

func encodeInto(v Value, buf []byte, path []string) error {
	t := v.typ
	if t == nil {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Detail("value has no type descriptor").
			Build()
	}

	switch t.Kind {
	case KindRecord:
		if len(v.fields) != len(t.Fields) {
			return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				AbiType(t.Name).
				Detail("record has %d fields, value has %d", len(t.Fields), len(v.fields)).
				Build()
		}
		for i, f := range t.Fields {
			fv := v.fields[i]
			if fv.typ == nil || fv.typ.Kind != f.Type.Kind {
				return errors.TypeMismatch(errors.PhaseEncode, appendPath(path, f.Name), fieldKind(fv), f.Type.Name)
			}
			if err := encodeInto(fv, buf[f.Offset:f.Offset+f.Type.Size], appendPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case KindString, KindArray:
		binary.LittleEndian.PutUint32(buf[0:4], v.Ptr())
		binary.LittleEndian.PutUint32(buf[4:8], v.DataLen())
		return nil

	default:
		if err := validateScalar(t, v.bits, errors.PhaseEncode, path); err != nil {
			return err
		}
		putScalar(buf, t.Size, v.bits)
		return nil
	}
}

// Decode deserializes a value of the given type from buf. It rejects any
// byte pattern that does not correspond to a valid value and never reads
// past the supplied slice.
func Decode(t *Type, buf []byte) (Value, error) {
	return decode(t, buf, nil)
}

func decode(t *Type, buf []byte, path []string) (Value, error) {
	if uint32(len(buf)) < t.Size {
		return Value{}, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
			Path(path...).
			AbiType(t.Name).
			Detail("need %d bytes, have %d", t.Size, len(buf)).
			Build()
	}

	switch t.Kind {
	case KindRecord:
		fields := make([]Value, len(t.Fields))
		for i, f := range t.Fields {
			fv, err := decode(f.Type, buf[f.Offset:f.Offset+f.Type.Size], appendPath(path, f.Name))
			if err != nil {
				return Value{}, err
			}
			fields[i] = fv
		}
		// Padding bytes between fields are ignored, not validated.
		return Value{typ: t, fields: fields}, nil

	case KindString, KindArray:
		ptr := binary.LittleEndian.Uint32(buf[0:4])
		length := binary.LittleEndian.Uint32(buf[4:8])
		return PtrLen(t, ptr, length), nil

	default:
		bits := getScalar(buf, t.Size)
		if err := validateScalar(t, bits, errors.PhaseDecode, path); err != nil {
			return Value{}, err
		}
		return Value{typ: t, bits: bits}, nil
	}
}

// validateScalar enforces value-domain rules shared by encode and decode:
// bool bytes are 0/1, enum discriminants are in range, and flag bits
// outside the declared mask are rejected so reserved rights cannot be
// forged.
func validateScalar(t *Type, bits uint64, phase errors.Phase, path []string) error {
	if t.Size < 8 && bits >= 1<<(8*t.Size) {
		return errors.New(phase, errors.KindOverflow).
			Path(path...).
			AbiType(t.Name).
			Detail("value %#x does not fit in %d bytes", bits, t.Size).
			Value(bits).
			Build()
	}

	switch t.Kind {
	case KindBool:
		if bits > 1 {
			return errors.InvalidEncoding(phase, path, t.Name, "bool byte must be 0 or 1")
		}
	case KindEnum:
		if uint32(bits) >= t.NumCases || bits>>32 != 0 {
			return errors.InvalidDiscriminant(phase, path, t.Name, uint32(bits), t.NumCases)
		}
	case KindFlags:
		if bits&^t.Mask != 0 {
			return errors.InvalidEncoding(phase, path, t.Name,
				"reserved bits set: "+hexBits(bits&^t.Mask))
		}
	}
	return nil
}

func putScalar(buf []byte, size uint32, bits uint64) {
	switch size {
	case 1:
		buf[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(bits))
	default:
		binary.LittleEndian.PutUint64(buf, bits)
	}
}

func getScalar(buf []byte, size uint32) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	default:
		return binary.LittleEndian.Uint64(buf)
	}
}

func appendPath(path []string, elem string) []string {
	return append(append([]string{}, path...), elem)
}

func fieldKind(v Value) string {
	if v.typ == nil {
		return "untyped"
	}
	return v.typ.Name
}

const hexDigits = "0123456789abcdef"

func hexBits(v uint64) string {
	if v == 0 {
		return "0x0"
	}
	var b [18]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return "0x" + string(b[i:])
}
