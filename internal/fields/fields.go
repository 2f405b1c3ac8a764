// internal/fields/fields.go

// Package fields holds the catalog of named device reads and builds the
// ordered field set polled each cycle.
package fields

import (
	"github.com/tamzrod/cnc-poller/internal/device"
)

// ReadFunc performs one device read. It takes only the handle.
type ReadFunc func(h device.Handle) (any, error)

// Spec is one named read operation.
type Spec struct {
	Name string
	Read ReadFunc
}

// Set is an immutable ordered list of Specs.
type Set struct {
	specs []Spec
}

// Len returns the number of fields.
func (s Set) Len() int { return len(s.specs) }

// At returns the i-th Spec.
func (s Set) At(i int) Spec { return s.specs[i] }

// Names returns field names in poll order.
func (s Set) Names() []string {
	out := make([]string, len(s.specs))
	for i, sp := range s.specs {
		out[i] = sp.Name
	}
	return out
}

// Of builds a Set from explicit specs. Used by callers that bring
// their own reads.
func Of(specs ...Spec) Set {
	cp := make([]Spec, len(specs))
	copy(cp, specs)
	return Set{specs: cp}
}
