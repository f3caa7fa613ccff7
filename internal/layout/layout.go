package layout

import "math"

// Info describes the guest-side footprint of a type: fixed byte size and
// required alignment, independent of host platform word size.
type Info struct {
	Size  uint32
	Align uint32
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// SafeMulU32 multiplies element count by element size, reporting overflow
// instead of wrapping.
func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

// Record computes per-field offsets for the given field layouts, plus the
// overall record layout. Offsets come from field order and each field's
// alignment only; there is no compiler-dependent padding.
func Record(fields []Info) (Info, []uint32) {
	if len(fields) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	offsets := make([]uint32, len(fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, f := range fields {
		offset = AlignTo(offset, f.Align)
		offsets[i] = offset

		if f.Align > maxAlign {
			maxAlign = f.Align
		}

		offset += f.Size
	}

	return Info{Size: AlignTo(offset, maxAlign), Align: maxAlign}, offsets
}

// DiscriminantSize returns the byte width needed for an enum of n cases.
func DiscriminantSize(n int) uint32 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// FlagsSize returns the byte width needed for a bit vector of n flags.
func FlagsSize(n int) uint32 {
	switch {
	case n <= 8:
		return 1
	case n <= 16:
		return 2
	case n <= 32:
		return 4
	default:
		return 8
	}
}
