package bind

import (
	"context"

	"go.uber.org/zap"

	wasiabi "github.com/wippyai/wasi-abi"
	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/errors"
	"github.com/wippyai/wasi-abi/idl"
	"github.com/wippyai/wasi-abi/marshal"
)

// Impl is one native syscall implementation. It receives fully marshalled
// arguments through the Call and reports completion as an errno; results
// it sets are written back to guest memory only on ESUCCESS.
type Impl func(ctx context.Context, call *Call) abi.Errno

// Binding pairs a compiled function signature with its implementation and
// lowered call plan. Bindings are immutable once built.
type Binding struct {
	impl Impl
	fn   idl.Function
	plan idl.Plan
}

// Bind builds the call glue for one function.
func Bind(fn idl.Function, impl Impl) (*Binding, error) {
	if impl == nil {
		return nil, errors.InvalidInput(errors.PhaseBind, "nil implementation for "+fn.Name)
	}
	return &Binding{fn: fn, impl: impl, plan: fn.Plan()}, nil
}

// Func returns the bound function descriptor.
func (b *Binding) Func() idl.Function { return b.fn }

// Plan returns the lowered core signature.
func (b *Binding) Plan() idl.Plan { return b.plan }

// Invoke runs one guest call: arguments are read and validated from the
// stack words and guest memory, the implementation runs, and on success
// its results are written back through the out-pointers. Every failure
// surfaces as an errno; a panicking implementation is recovered and
// reported as EFAULT, never propagated into the engine.
func (b *Binding) Invoke(ctx context.Context, mem wasiabi.Memory, stack []uint64) (ret uint64) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("recovered panic in syscall implementation",
				zap.String("func", b.fn.Name),
				zap.Any("panic", r))
			ret = uint64(abi.EFAULT)
		}
	}()

	if len(stack) < len(b.plan.Words) {
		Logger().Error("stack shorter than call plan",
			zap.String("func", b.fn.Name),
			zap.Int("stack", len(stack)),
			zap.Int("words", len(b.plan.Words)))
		return uint64(abi.EFAULT)
	}

	call, errno := b.prepare(mem, stack)
	if errno != abi.ESUCCESS {
		return uint64(errno)
	}

	errno = b.impl(ctx, call)
	if errno != abi.ESUCCESS {
		return uint64(errno)
	}

	if errno := b.commit(mem, call); errno != abi.ESUCCESS {
		return uint64(errno)
	}
	return uint64(abi.ESUCCESS)
}

// prepare reads every argument out of the stack words and guest memory.
func (b *Binding) prepare(mem wasiabi.Memory, stack []uint64) (*Call, abi.Errno) {
	call := &Call{
		fn:      &b.fn,
		mem:     mem,
		args:    make([]abi.Value, len(b.fn.Params)),
		strs:    make(map[int]string),
		arrays:  make(map[int][]abi.Value),
		results: make([]abi.Value, len(b.fn.Results)),
		set:     make([]bool, len(b.fn.Results)),
		outPtrs: make(map[int]uint32),
	}

	for i := 0; i < len(b.plan.Words); i++ {
		w := b.plan.Words[i]
		word := stack[i]

		switch w.Kind {
		case idl.WordValue:
			v := abi.Scalar(w.Type, word)
			var tmp [8]byte
			if err := abi.EncodeInto(v, tmp[:w.Type.Size]); err != nil {
				return nil, errnoFor(err)
			}
			call.args[w.Index] = v

		case idl.WordPointer:
			v, err := marshal.Read(mem, w.Type, uint32(word))
			if err != nil {
				return nil, errnoFor(err)
			}
			call.args[w.Index] = v

		case idl.WordDataPointer:
			// consume the paired length word as well
			ptr, length := uint32(word), uint32(stack[i+1])
			i++
			hdr := abi.PtrLen(w.Type, ptr, length)
			call.args[w.Index] = hdr
			if w.Type.Kind == abi.KindString {
				s, err := marshal.ReadString(mem, ptr, length)
				if err != nil {
					return nil, errnoFor(err)
				}
				call.strs[w.Index] = s
			} else {
				elems, err := marshal.ReadArray(mem, w.Type.Elem, ptr, length)
				if err != nil {
					return nil, errnoFor(err)
				}
				call.arrays[w.Index] = elems
			}

		case idl.WordOutPointer:
			call.outPtrs[w.Index] = uint32(word)
		}
	}

	return call, abi.ESUCCESS
}

// commit writes the results the implementation set through their
// out-pointers. A result left unset on success is an implementation bug;
// it is logged and surfaced as EFAULT rather than leaving the guest's
// buffer silently stale.
func (b *Binding) commit(mem wasiabi.Memory, call *Call) abi.Errno {
	for i := range b.fn.Results {
		ptr, viaPointer := call.outPtrs[i]
		if !viaPointer {
			continue
		}
		if !call.set[i] {
			Logger().Error("result not set by implementation",
				zap.String("func", b.fn.Name),
				zap.String("result", b.fn.Results[i].Name))
			return abi.EFAULT
		}
		if err := marshal.Write(mem, ptr, call.results[i]); err != nil {
			return errnoFor(err)
		}
	}
	return abi.ESUCCESS
}

// errnoFor translates marshalling failures into the errno the guest sees.
func errnoFor(err error) abi.Errno {
	switch {
	case errors.IsKind(err, errors.KindOutOfBounds),
		errors.IsKind(err, errors.KindMisaligned):
		return abi.EFAULT
	case errors.IsKind(err, errors.KindOverflow):
		return abi.EOVERFLOW
	case errors.IsKind(err, errors.KindInvalidText):
		return abi.EILSEQ
	default:
		return abi.EINVAL
	}
}

// Call carries one invocation's marshalled arguments and collects the
// results the implementation produces.
type Call struct {
	mem     wasiabi.Memory
	fn      *idl.Function
	strs    map[int]string
	arrays  map[int][]abi.Value
	outPtrs map[int]uint32
	args    []abi.Value
	results []abi.Value
	set     []bool
}

// NumArgs returns the number of declared parameters.
func (c *Call) NumArgs() int { return len(c.args) }

// Arg returns the i-th argument. Records arrive fully read from guest
// memory; strings and arrays arrive as their pointer+length header, with
// contents available via String and Array.
func (c *Call) Arg(i int) abi.Value { return c.args[i] }

// Handle returns the i-th argument as a resource handle.
func (c *Call) Handle(i int) uint32 { return c.args[i].Handle() }

// U32 returns the i-th argument as a 32-bit scalar.
func (c *Call) U32(i int) uint32 { return c.args[i].U32() }

// U64 returns the i-th argument as a 64-bit scalar.
func (c *Call) U64(i int) uint64 { return c.args[i].U64() }

// String returns the contents of the i-th string argument, already
// bounds-checked and UTF-8 validated.
func (c *Call) String(i int) string { return c.strs[i] }

// Array returns the decoded elements of the i-th array argument.
func (c *Call) Array(i int) []abi.Value { return c.arrays[i] }

// Iovecs converts the i-th argument, an array of iovec records, into the
// typed scatter/gather list.
func (c *Call) Iovecs(i int) ([]abi.Iovec, error) {
	elems := c.arrays[i]
	out := make([]abi.Iovec, len(elems))
	for j, v := range elems {
		iov, err := abi.IovecFromValue(v)
		if err != nil {
			return nil, err
		}
		out[j] = iov
	}
	return out, nil
}

// Memory exposes the guest memory capability for implementations that
// transfer buffer contents directly, such as reads into iovec targets.
func (c *Call) Memory() wasiabi.Memory { return c.mem }

// SetResult records the i-th result for write-back after the
// implementation returns successfully.
func (c *Call) SetResult(i int, v abi.Value) error {
	if i < 0 || i >= len(c.results) {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Detail("result index %d out of range, func %s has %d results", i, c.fn.Name, len(c.results)).
			Build()
	}
	want := c.fn.Results[i].Type
	if v.Type() == nil || v.Type().Kind != want.Kind || v.Type().Size != want.Size {
		got := "nil"
		if v.Type() != nil {
			got = v.Type().String()
		}
		return errors.TypeMismatch(errors.PhaseBind, []string{c.fn.Name, c.fn.Results[i].Name}, got, want.String())
	}
	c.results[i] = v
	c.set[i] = true
	return nil
}
