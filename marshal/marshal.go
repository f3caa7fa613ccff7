package marshal

import (
	"math"
	"unicode/utf8"

	wasiabi "github.com/wippyai/wasi-abi"
	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/internal/layout"
)

// checkAccess validates one guest memory access: alignment first, then
// bounds against the region's length as of right now. The length is
// re-queried on every call; a region can grow between two accesses and a
// stale length would let a later access pass or fail wrongly.
func checkAccess(mem wasiabi.Memory, offset, size, align uint32) error {
	if align > 1 && offset%align != 0 {
		return errors.Misaligned(errors.PhaseMarshal, nil, offset, align)
	}
	length := mem.Size()
	if uint64(offset)+uint64(size) > uint64(length) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, offset, size, length)
	}
	return nil
}

// Read decodes one value of type t at the given guest offset.
func Read(mem wasiabi.Memory, t *abi.Type, offset uint32) (abi.Value, error) {
	if err := checkAccess(mem, offset, t.Size, t.Align); err != nil {
		return abi.Value{}, err
	}
	if t.Size == 0 {
		return abi.Decode(t, nil)
	}
	data, err := mem.Read(offset, t.Size)
	if err != nil {
		return abi.Value{}, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region read failed")
	}
	return abi.Decode(t, data)
}

// Write encodes one value at the given guest offset. The value is encoded
// into a scratch buffer first and committed with a single region write, so
// no byte inside the validated range is modified if encoding fails.
func Write(mem wasiabi.Memory, offset uint32, v abi.Value) error {
	t := v.Type()
	if err := checkAccess(mem, offset, t.Size, t.Align); err != nil {
		return err
	}
	if t.Size == 0 {
		return nil
	}
	buf := getBuf(t.Size)
	defer putBuf(buf)
	if err := abi.EncodeInto(v, buf); err != nil {
		return err
	}
	if err := mem.Write(offset, buf); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region write failed")
	}
	return nil
}

// ReadBytes reads length raw bytes at ptr. The returned slice is a copy;
// it stays valid after the region grows or is reused.
func ReadBytes(mem wasiabi.Memory, ptr, length uint32) ([]byte, error) {
	if err := checkAccess(mem, ptr, length, 1); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region read failed")
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteBytes writes raw bytes at ptr.
func WriteBytes(mem wasiabi.Memory, ptr uint32, data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseMarshal, nil, uint32(math.MaxUint32), 1)
	}
	if err := checkAccess(mem, ptr, uint32(len(data)), 1); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := mem.Write(ptr, data); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region write failed")
	}
	return nil
}

// ReadString reads length bytes at ptr and decodes them as text. Guest
// strings are byte-preserved: bytes that are not valid UTF-8 fail with
// invalid_text rather than being silently replaced, since altered text in
// a security-relevant path would change what the host acts on.
func ReadString(mem wasiabi.Memory, ptr, length uint32) (string, error) {
	data, err := ReadBytes(mem, ptr, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidText(errors.PhaseMarshal, nil, data)
	}
	return string(data), nil
}

// ReadArray reads count elements of type t laid out contiguously at ptr.
// count is guest-controlled: the total byte size is computed in 64-bit
// arithmetic and rejected with overflow before any bounds check, so a
// large count can never wrap around and pass validation for the wrong
// range.
func ReadArray(mem wasiabi.Memory, t *abi.Type, ptr, count uint32) ([]abi.Value, error) {
	total, err := arraySize(t, count)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(mem, ptr, total, t.Align); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	data, err := mem.Read(ptr, total)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region read failed")
	}
	out := make([]abi.Value, count)
	for i := uint32(0); i < count; i++ {
		v, err := abi.Decode(t, data[i*t.Size:(i+1)*t.Size])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteArray writes elements of type t contiguously at ptr. All elements
// are encoded before the single region write; an invalid element leaves
// guest memory untouched.
func WriteArray(mem wasiabi.Memory, t *abi.Type, ptr uint32, elems []abi.Value) error {
	if uint64(len(elems)) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseMarshal, nil, math.MaxUint32, t.Size)
	}
	count := uint32(len(elems))
	total, err := arraySize(t, count)
	if err != nil {
		return err
	}
	if err := checkAccess(mem, ptr, total, t.Align); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	buf := getBuf(total)
	defer putBuf(buf)
	for i, v := range elems {
		if err := abi.EncodeInto(v, buf[uint32(i)*t.Size:(uint32(i)+1)*t.Size]); err != nil {
			return err
		}
	}
	if err := mem.Write(ptr, buf); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "region write failed")
	}
	return nil
}

func arraySize(t *abi.Type, count uint32) (uint32, error) {
	total, ok := layout.SafeMulU32(count, t.Size)
	if !ok {
		return 0, errors.Overflow(errors.PhaseMarshal, nil, count, t.Size)
	}
	return total, nil
}

// FollowString resolves a string header value (ptr + byte length) to the
// text it points at.
func FollowString(mem wasiabi.Memory, v abi.Value) (string, error) {
	if v.Type() == nil || v.Type().Kind != abi.KindString {
		return "", errors.TypeMismatch(errors.PhaseMarshal, nil, "", "string")
	}
	return ReadString(mem, v.Ptr(), v.DataLen())
}

// FollowArray resolves an array header value (ptr + element count) to its
// decoded elements.
func FollowArray(mem wasiabi.Memory, v abi.Value) ([]abi.Value, error) {
	if v.Type() == nil || v.Type().Kind != abi.KindArray {
		return nil, errors.TypeMismatch(errors.PhaseMarshal, nil, "", "array")
	}
	return ReadArray(mem, v.Type().Elem, v.Ptr(), v.DataLen())
}

// ReadIovecs reads the guest's scatter/gather list: count iovec records at
// ptr. The buffers themselves are not dereferenced here.
func ReadIovecs(mem wasiabi.Memory, ptr, count uint32) ([]abi.Iovec, error) {
	values, err := ReadArray(mem, abi.IovecType, ptr, count)
	if err != nil {
		return nil, err
	}
	out := make([]abi.Iovec, len(values))
	for i, v := range values {
		iov, err := abi.IovecFromValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = iov
	}
	return out, nil
}
