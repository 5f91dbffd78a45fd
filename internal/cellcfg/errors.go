// Package cellcfg holds the data shared by every stage of the uplink
// receive chain: the immutable cell descriptor, the per-subframe grant
// descriptor, and the error vocabulary used throughout this module
package cellcfg

import "fmt"

// Kind discriminates the handful of error conditions the receive chain
// surfaces. Per-subframe decode failures are not Kind errors at all --
// they are recorded as result flags (see internal/receiver) because a
// failed CRC is expected traffic, not a fault.
type Kind int

const (
	// InvalidConfig means the cell descriptor itself is inconsistent,
	// e.g. an out-of-table PRB count or a cell identity above 503.
	InvalidConfig Kind = iota
	// NotConfigured means a processing call arrived before a cell or
	// DMRS generator was bound.
	NotConfigured
	// OutOfBudget means a grant demands more code blocks than the
	// compile-time maximum softbuffer size supports.
	OutOfBudget
	// InvalidGrant means a grant's fields are individually malformed:
	// MCS out of table range, empty PRB set, UCI offset index outside
	// the standardized range.
	InvalidGrant
	// Unsupported marks a configuration this implementation declines to
	// process rather than silently mis-processing (the
	// intra-subframe frequency-hopping branch of the uplink estimator).
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case InvalidConfig:
		return "InvalidConfig"
	case NotConfigured:
		return "NotConfigured"
	case OutOfBudget:
		return "OutOfBudget"
	case InvalidGrant:
		return "InvalidGrant"
	case Unsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Error is the error type returned across component boundaries. Callers
// that care about the distinction should use errors.As and inspect Kind.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Newf builds an *Error with a formatted detail string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Is allows errors.Is(err, cellcfg.KindOf(cellcfg.InvalidConfig)) style
// checks by comparing Kind against a bare Kind value wrapped as an *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind sentinel usable with errors.Is, e.g.
// errors.Is(err, cellcfg.KindOf(cellcfg.OutOfBudget)).
func KindOf(k Kind) error { return &Error{Kind: k} }
