// Package instance provides the identity and validity state shared by
// services, renderers and app chunks.
//
// Validity is terminal: an instance starts valid, may be invalidated while it
// is being constructed, and never becomes valid again. Request handlers read
// the flag; only constructors write it.
package instance

import "sync/atomic"

// Validity is implemented by anything that can report whether it is usable.
// Callers treat values that do not implement it as valid.
type Validity interface {
	IsValid() bool
}

// Named carries an instance name and its validity flag.
// The zero value is a valid, unnamed instance.
type Named struct {
	name    string
	invalid atomic.Bool
}

// NewNamed returns a valid instance called name.
func NewNamed(name string) *Named {
	return &Named{name: name}
}

// Name returns the instance name.
func (n *Named) Name() string { return n.name }

// IsValid reports whether the instance has not been invalidated.
func (n *Named) IsValid() bool { return !n.invalid.Load() }

// Invalidate marks the instance invalid. It reports whether this call changed
// the state, so the first failure can be logged once.
func (n *Named) Invalidate() bool {
	return n.invalid.CompareAndSwap(false, true)
}

// IsValid reports v's validity, defaulting to true when v does not implement Validity.
func IsValid(v any) bool {
	if vv, ok := v.(Validity); ok {
		return vv.IsValid()
	}
	return true
}
