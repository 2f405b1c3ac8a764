// internal/status/snapshot.go
package status

import "slices"

// Snapshot is the current device health.
// It holds no memory of the past beyond current state.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	FailedFields  []string

	// CyclesInError counts consecutive cycles that were not OK.
	CyclesInError uint16
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.Health == o.Health &&
		s.LastErrorCode == o.LastErrorCode &&
		slices.Equal(s.FailedFields, o.FailedFields)
}
