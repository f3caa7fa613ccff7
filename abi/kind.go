package abi

// Kind discriminates the ABI type variants.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindHandle
	KindTimestamp
	KindEnum
	KindFlags
	KindRecord
	KindString
	KindArray
)

var kindNames = [...]string{
	KindBool:      "bool",
	KindU8:        "u8",
	KindS8:        "s8",
	KindU16:       "u16",
	KindS16:       "s16",
	KindU32:       "u32",
	KindS32:       "s32",
	KindU64:       "u64",
	KindS64:       "s64",
	KindHandle:    "handle",
	KindTimestamp: "timestamp",
	KindEnum:      "enum",
	KindFlags:     "flags",
	KindRecord:    "record",
	KindString:    "string",
	KindArray:     "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether the kind occupies a single integer slot
// (everything except records and pointer+length pairs).
func (k Kind) IsScalar() bool {
	switch k {
	case KindRecord, KindString, KindArray:
		return false
	default:
		return true
	}
}

// IsSigned reports whether scalar values of this kind sign-extend.
func (k Kind) IsSigned() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	default:
		return false
	}
}
