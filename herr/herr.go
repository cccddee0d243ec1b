// Package herr defines the shared error taxonomy used across every
// higra-go package: a closed set of sentinel errors classifying why an
// operation failed, plus small helpers for wrapping them with context.
//
// Callers branch on failure class with errors.Is(err, herr.ErrXxx), never
// by matching error strings. Every sentinel also has a Kind so a host
// binding can map failures to a stable wire code without parsing text.
package herr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the error surfaces of spec §7.
type Kind int

const (
	// KindInvalidShape: array/graph/tree dimensions incompatible with the operation.
	KindInvalidShape Kind = iota
	// KindMalformedTree: parents array violates the topological-sort invariants.
	KindMalformedTree
	// KindDisconnected: a connectivity-requiring operation saw a disconnected graph.
	KindDisconnected
	// KindPreconditionFailed: a required precondition (non-negative altitudes,
	// computed children, positive parameter, ...) was not met.
	KindPreconditionFailed
	// KindUnsupported: the requested accumulator/linkage/element type has no implementation.
	KindUnsupported
	// KindOutOfRange: a vertex or edge index fell outside its valid range.
	KindOutOfRange
	// KindNotFound: a lookup (oracle export, named preset, ...) found nothing.
	KindNotFound
)

// String renders a human-readable name for a Kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindInvalidShape:
		return "invalid_shape"
	case KindMalformedTree:
		return "malformed_tree"
	case KindDisconnected:
		return "disconnected"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindUnsupported:
		return "unsupported"
	case KindOutOfRange:
		return "out_of_range"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind. Every package in this module returns one
// of these (optionally wrapped with %w) rather than inventing new ones.
var (
	ErrInvalidShape       = errors.New("herr: invalid shape")
	ErrMalformedTree      = errors.New("herr: malformed tree")
	ErrDisconnected       = errors.New("herr: disconnected graph")
	ErrPreconditionFailed = errors.New("herr: precondition failed")
	ErrUnsupported        = errors.New("herr: unsupported")
	ErrOutOfRange         = errors.New("herr: index out of range")
	ErrNotFound           = errors.New("herr: not found")
)

// sentinelOf maps a Kind to its sentinel error; used by Wrap.
func sentinelOf(k Kind) error {
	switch k {
	case KindInvalidShape:
		return ErrInvalidShape
	case KindMalformedTree:
		return ErrMalformedTree
	case KindDisconnected:
		return ErrDisconnected
	case KindPreconditionFailed:
		return ErrPreconditionFailed
	case KindUnsupported:
		return ErrUnsupported
	case KindOutOfRange:
		return ErrOutOfRange
	case KindNotFound:
		return ErrNotFound
	default:
		return errors.New("herr: unknown error kind")
	}
}

// Wrap builds an error of the given Kind, prefixed with pkg (the
// producing package's name) and a formatted detail message. The
// sentinel for Kind is always reachable via errors.Is on the result.
//
//	return herr.Wrap(herr.KindOutOfRange, "tree", "child index %d >= %d", k, n)
func Wrap(k Kind, pkg, format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %s: %w", pkg, detail, sentinelOf(k))
}
