package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // IDL parsing
	PhaseCompile Phase = "compile" // interface compilation
	PhaseEncode  Phase = "encode"  // host to guest bytes
	PhaseDecode  Phase = "decode"  // guest bytes to host
	PhaseMarshal Phase = "marshal" // guest memory access
	PhaseBind    Phase = "bind"    // host binding construction and dispatch
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds       Kind = "out_of_bounds"
	KindMisaligned        Kind = "misaligned"
	KindOverflow          Kind = "overflow"
	KindInvalidEncoding   Kind = "invalid_encoding"
	KindInvalidText       Kind = "invalid_text"
	KindUnknownType       Kind = "unknown_type"
	KindDuplicateFunction Kind = "duplicate_function"
	KindCyclicRecord      Kind = "cyclic_record"
	KindTypeMismatch      Kind = "type_mismatch"
	KindInvalidInput      Kind = "invalid_input"
	KindUnsupported       Kind = "unsupported"
	KindNotFound          Kind = "not_found"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	AbiType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.AbiType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.AbiType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", ABI type ")
			b.WriteString(e.AbiType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("ABI type ")
			b.WriteString(e.AbiType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.AbiType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind, regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// AbiType sets the ABI type name
func (b *Builder) AbiType(t string) *Builder {
	b.err.AbiType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds creates a bounds violation error for a guest memory access.
func OutOfBounds(phase Phase, path []string, offset, size, regionLen uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("access of %d bytes at offset %d exceeds region of %d bytes", size, offset, regionLen),
		Value:  offset,
	}
}

// Misaligned creates an alignment violation error.
func Misaligned(phase Phase, path []string, offset, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisaligned,
		Path:   path,
		Detail: fmt.Sprintf("offset %d is not %d-byte aligned", offset, align),
		Value:  offset,
	}
}

// Overflow creates an error for guest-controlled size arithmetic that would overflow.
func Overflow(phase Phase, path []string, count, elemSize uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("%d elements of %d bytes overflows address arithmetic", count, elemSize),
		Value:  count,
	}
}

// InvalidEncoding creates an error for bytes that do not form a valid value.
func InvalidEncoding(phase Phase, path []string, abiType, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidEncoding,
		Path:    path,
		AbiType: abiType,
		Detail:  detail,
	}
}

// InvalidDiscriminant creates an invalid enum discriminant error.
func InvalidDiscriminant(phase Phase, path []string, abiType string, disc, numCases uint32) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidEncoding,
		Path:    path,
		AbiType: abiType,
		Detail:  fmt.Sprintf("discriminant %d out of range (%d cases)", disc, numCases),
		Value:   disc,
	}
}

// InvalidText creates an error for string bytes that are not valid text.
func InvalidText(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidText,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// UnknownType creates an error for an unresolved type reference.
func UnknownType(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Path:   path,
		Detail: fmt.Sprintf("type %q is not declared", name),
	}
}

// DuplicateFunction creates an error for two declarations sharing a name.
func DuplicateFunction(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateFunction,
		Detail: fmt.Sprintf("%s %q declared more than once", what, name),
	}
}

// CyclicRecord creates an error for a record that contains itself.
func CyclicRecord(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCyclicRecord,
		Path:   path,
		Detail: fmt.Sprintf("record %q directly or indirectly contains itself", name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, abiType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		AbiType: abiType,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
