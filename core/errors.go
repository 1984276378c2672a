package core

import (
	"errors"
	"fmt"
)

// Kind classifies failures crossing component boundaries.
type Kind int

const (
	// KindUnknown is the zero Kind.
	KindUnknown Kind = iota
	// KindInvalidInput marks missing or contradictory arguments.
	KindInvalidInput
	// KindNotFound marks a lookup without a match (geocoding, similarity hits, artifacts).
	KindNotFound
	// KindUnavailable marks a capability that is not configured for the session.
	KindUnavailable
	// KindUpstream marks an external capability call that errored or timed out.
	KindUpstream
	// KindUnmappedValue marks a value absent from a static table.
	KindUnmappedValue
	// KindConfig marks configuration errors detected before the orchestrator starts.
	KindConfig
)

// String returns the lower snake case name of k.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindUpstream:
		return "upstream_failure"
	case KindUnmappedValue:
		return "unmapped_value"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is against any *Error of the same Kind.
var (
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrUnavailable   = &Error{Kind: KindUnavailable}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrUnmappedValue = &Error{Kind: KindUnmappedValue}
	ErrConfig        = &Error{Kind: KindConfig}
)

// Error is a classified error carrying the failing operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E constructs an *Error. err may be nil.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf constructs an *Error with a formatted cause.
func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
