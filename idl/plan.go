package idl

import "github.com/wippyai/wasi-abi/abi"

// WordKind says how one core stack word of a lowered signature is used.
type WordKind uint8

const (
	// WordValue carries a scalar argument directly.
	WordValue WordKind = iota
	// WordPointer carries a guest pointer to a record argument; the
	// record is read through the marshaller.
	WordPointer
	// WordDataPointer carries the contents pointer of a string or array
	// argument. Always followed by a WordLength word.
	WordDataPointer
	// WordLength carries the byte length of a string or the element
	// count of an array.
	WordLength
	// WordOutPointer carries a guest pointer the host writes a result
	// through after the implementation returns.
	WordOutPointer
)

func (k WordKind) String() string {
	switch k {
	case WordValue:
		return "value"
	case WordPointer:
		return "pointer"
	case WordDataPointer:
		return "data_pointer"
	case WordLength:
		return "length"
	case WordOutPointer:
		return "out_pointer"
	}
	return "unknown"
}

// Word is one core parameter word of a lowered function signature.
// Index points into Params, or into Results for out-pointer words.
type Word struct {
	Type  *abi.Type
	Name  string
	Kind  WordKind
	Index int
}

// Wide reports whether the word occupies a 64-bit core slot. Pointers and
// lengths are always 32-bit; only direct 8-byte scalars widen.
func (w Word) Wide() bool {
	return w.Kind == WordValue && w.Type.Size == 8
}

// Plan is the lowered core signature of a function: the flat parameter
// words in call order, plus an optional directly returned scalar result.
type Plan struct {
	Direct *abi.Type
	Words  []Word
}

// Plan lowers the function signature to core words. Scalar params take one
// word, strings and arrays take pointer+length, records pass by guest
// pointer. A scalar first result is returned directly; every other result
// becomes a trailing out-pointer word.
func (f Function) Plan() Plan {
	var p Plan

	for i, param := range f.Params {
		switch param.Type.Kind {
		case abi.KindString, abi.KindArray:
			p.Words = append(p.Words,
				Word{Type: param.Type, Name: param.Name, Kind: WordDataPointer, Index: i},
				Word{Type: param.Type, Name: param.Name, Kind: WordLength, Index: i})
		case abi.KindRecord:
			p.Words = append(p.Words, Word{Type: param.Type, Name: param.Name, Kind: WordPointer, Index: i})
		default:
			p.Words = append(p.Words, Word{Type: param.Type, Name: param.Name, Kind: WordValue, Index: i})
		}
	}

	for i, res := range f.Results {
		if i == 0 && res.Type.Kind.IsScalar() {
			p.Direct = res.Type
			continue
		}
		p.Words = append(p.Words, Word{Type: res.Type, Name: res.Name, Kind: WordOutPointer, Index: i})
	}

	return p
}
