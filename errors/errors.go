package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase is the adapter surface an error came from.
type Phase string

const (
	PhaseFields   Phase = "fields"   // header collection operations
	PhaseRequest  Phase = "request"  // incoming request operations
	PhaseResponse Phase = "response" // outgoing response operations
	PhaseStream   Phase = "stream"   // byte stream operations
	PhaseOutparam Phase = "outparam" // response outparam slot
	PhaseClient   Phase = "client"   // outgoing requests and incoming responses
	PhaseHost     Phase = "host"     // legacy host ABI calls
	PhaseBind     Phase = "bind"     // guest binding and instantiation
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseServe    Phase = "serve"    // HTTP serving
)

// Kind is the error category.
type Kind string

const (
	KindUnknownHandle    Kind = "unknown_handle"
	KindIdentityMismatch Kind = "identity_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindHostFailure      Kind = "host_failure"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindAllocation       Kind = "allocation"
	KindMissingImport    Kind = "missing_import"
	KindNotFound         Kind = "not_found"
	KindRegistration     Kind = "registration"
	KindInstantiation    Kind = "instantiation"
	KindTrap             Kind = "trap"
)

// Error is the structured error type used across the adapter. Handle is
// meaningful only when HasHandle is set.
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Op        string
	Resource  string
	Detail    string
	Handle    uint32
	Expected  uint32
	HasHandle bool
}

// Error renders the error as a colon-separated chain:
//
//	fields: fields-get: unknown_handle fields #7: no live entry
func (e *Error) Error() string {
	parts := make([]string, 0, 5)
	parts = append(parts, string(e.Phase))
	if e.Op != "" {
		parts = append(parts, e.Op)
	}

	subject := string(e.Kind)
	if e.Resource != "" {
		subject += " " + e.Resource
	}
	if e.HasHandle {
		subject += " #" + strconv.FormatUint(uint64(e.Handle), 10)
	}
	parts = append(parts, subject)

	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same phase and kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder assembles an Error field by field.
type Builder struct {
	err Error
}

// New starts an error of the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Op names the interface operation that failed.
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Resource names the resource kind involved.
func (b *Builder) Resource(name string) *Builder {
	b.err.Resource = name
	return b
}

// Handle records the offending handle.
func (b *Builder) Handle(h uint32) *Builder {
	b.err.Handle, b.err.HasHandle = h, true
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	b.err.Detail = msg
	return b
}

func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// UnknownHandle reports a handle with no live table entry.
func UnknownHandle(phase Phase, resource string, h uint32) *Error {
	return New(phase, KindUnknownHandle).Resource(resource).Handle(h).Detail("no live entry").Build()
}

// IdentityMismatch reports a handle that is not the invocation's singleton.
func IdentityMismatch(phase Phase, resource string, got, want uint32) *Error {
	e := New(phase, KindIdentityMismatch).Resource(resource).Handle(got).Detail("expected #%d", want).Build()
	e.Expected = want
	return e
}

// Unsupported reports an operation the legacy host cannot express.
func Unsupported(phase Phase, op string) *Error {
	return New(phase, KindUnsupported).Op(op).Detail("not available on the legacy host").Build()
}

// HostFailure wraps a failed legacy host call.
func HostFailure(phase Phase, op string, cause error) *Error {
	return New(phase, KindHostFailure).Op(op).Cause(cause).Build()
}

// OutOfBounds reports a guest memory access past the end of memory.
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return New(phase, KindOutOfBounds).Detail("%d bytes at offset %d", length, offset).Build()
}

func AllocationFailed(phase Phase, size, align uint32) *Error {
	return New(phase, KindAllocation).Detail("cannot allocate %d bytes aligned to %d", size, align).Build()
}

// Wrap attaches phase, kind and detail to an error from outside the adapter.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return New(phase, kind).Detail(detail).Cause(cause).Build()
}

func NotFound(phase Phase, what, name string) *Error {
	return New(phase, KindNotFound).Detail("%s %q not found", what, name).Build()
}

func InvalidInput(phase Phase, detail string) *Error {
	return New(phase, KindInvalidInput).Detail(detail).Build()
}

// Registration reports a host module that could not be built.
func Registration(module, name string, cause error) *Error {
	return New(PhaseBind, KindRegistration).Op(module + "#" + name).Cause(cause).Build()
}

func Instantiation(cause error) *Error {
	return New(PhaseBind, KindInstantiation).Detail("instantiate guest").Cause(cause).Build()
}

// Trap reports a guest that trapped with no adapter error behind it.
func Trap(export string, cause error) *Error {
	return New(PhaseBind, KindTrap).Op(export).Detail("guest trapped").Cause(cause).Build()
}

// MissingImport is one guest import with no bound adapter function.
type MissingImport struct {
	Namespace string
	Function  string
}

func (m MissingImport) String() string {
	return m.Namespace + "#" + m.Function
}

// MissingImportsError lists every unbound adapter import of a guest.
type MissingImportsError struct {
	Imports []MissingImport
}

// NewMissingImportsError parses "module#function" paths.
func NewMissingImportsError(paths []string) *MissingImportsError {
	e := &MissingImportsError{Imports: make([]MissingImport, 0, len(paths))}
	for _, p := range paths {
		ns, fn, _ := strings.Cut(p, "#")
		e.Imports = append(e.Imports, MissingImport{Namespace: ns, Function: fn})
	}
	return e
}

// Error groups the missing functions by module, in first-seen order:
//
//	bind: missing_import: 2 unbound: wasi:http/types{fields-get, new-fields}
func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "bind: missing_import: none"
	}

	var modules []string
	byModule := make(map[string][]string)
	for _, imp := range e.Imports {
		if _, ok := byModule[imp.Namespace]; !ok {
			modules = append(modules, imp.Namespace)
		}
		byModule[imp.Namespace] = append(byModule[imp.Namespace], imp.Function)
	}

	groups := make([]string, len(modules))
	for i, m := range modules {
		groups[i] = m + "{" + strings.Join(byModule[m], ", ") + "}"
	}
	return fmt.Sprintf("bind: missing_import: %d unbound: %s", len(e.Imports), strings.Join(groups, " "))
}

func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
