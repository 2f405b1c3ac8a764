// internal/fields/build.go
package fields

import (
	"errors"
	"fmt"
)

// Selection picks fields from the catalog.
// A non-empty Include wins over Profile; Exclude is applied last.
type Selection struct {
	Profile string
	Include []string
	Exclude []string
}

// Build resolves a Selection into an ordered Set.
// No side effects: nothing touches the device here.
func Build(sel Selection) (Set, error) {
	var names []string

	if len(sel.Include) > 0 {
		names = sel.Include
	} else {
		p := sel.Profile
		if p == "" {
			p = DefaultProfile
		}
		var ok bool
		names, ok = Profile(p)
		if !ok {
			return Set{}, fmt.Errorf("fields: unknown profile %q", p)
		}
	}

	drop := make(map[string]bool, len(sel.Exclude))
	for _, n := range sel.Exclude {
		if !Known(n) {
			return Set{}, fmt.Errorf("fields: exclude: unknown field %q", n)
		}
		drop[n] = true
	}

	seen := make(map[string]bool, len(names))
	specs := make([]Spec, 0, len(names))
	for _, n := range names {
		sp, ok := lookup(n)
		if !ok {
			return Set{}, fmt.Errorf("fields: unknown field %q", n)
		}
		if seen[n] {
			return Set{}, fmt.Errorf("fields: duplicate field %q", n)
		}
		seen[n] = true
		if drop[n] {
			continue
		}
		specs = append(specs, sp)
	}

	if len(specs) == 0 {
		return Set{}, errors.New("fields: selection is empty")
	}

	return Set{specs: specs}, nil
}
