// Package irerr defines the structured errors produced while loading and
// reconstructing foreign IR modules.
package irerr

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred.
type Phase string

const (
	PhaseLoad        Phase = "load"        // foreign parser
	PhaseReconstruct Phase = "reconstruct" // handle walk
	PhaseCache       Phase = "cache"       // snapshot cache
	PhaseRender      Phase = "render"      // output formatting
	PhaseConfig      Phase = "config"      // irgraph.toml
)

// Kind categorizes the error.
type Kind string

const (
	KindLoadFailure  Kind = "load_failure"
	KindPrecondition Kind = "precondition"
	KindInternal     Kind = "internal"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used across irgraph.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Detail string
	Path   []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" in ")
		b.WriteString(e.Module)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind, and on Phase too when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrLoadFailure  = &Error{Kind: KindLoadFailure}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrInternal     = &Error{Kind: KindInternal}
	ErrNotFound     = &Error{Kind: KindNotFound}
)

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Module sets the module name or path.
func (b *Builder) Module(name string) *Builder {
	b.err.Module = name
	return b
}

// Path sets the node path (function, block, ...).
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// LoadFailure reports that the foreign parser rejected a module.
func LoadFailure(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailure,
		Module: module,
		Detail: "foreign parser rejected the module",
		Cause:  cause,
	}
}

// Precondition reports a reconstruction function used on the wrong handle kind.
// It is a programmer error: callers raise it with panic and only the
// reconstruction boundary recovers it.
func Precondition(what string, args ...any) *Error {
	return &Error{
		Phase:  PhaseReconstruct,
		Kind:   KindPrecondition,
		Detail: fmt.Sprintf(what, args...),
	}
}

// Internal wraps a recovered panic value.
func Internal(module string, recovered any) *Error {
	e := &Error{
		Phase:  PhaseReconstruct,
		Kind:   KindInternal,
		Module: module,
	}
	switch v := recovered.(type) {
	case *Error:
		e.Detail = v.Detail
		e.Cause = v
	case error:
		e.Detail = "foreign graph walk panicked"
		e.Cause = v
	default:
		e.Detail = fmt.Sprintf("foreign graph walk panicked: %v", v)
	}
	return e
}

// Wrap wraps an existing error with additional context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
