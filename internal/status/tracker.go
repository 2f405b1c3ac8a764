// internal/status/tracker.go
package status

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/device"
	"github.com/tamzrod/cnc-poller/internal/metrics"
	"github.com/tamzrod/cnc-poller/internal/poller"
)

// Tracker derives device health from each cycle's Record.
// Runner-owned: not safe for concurrent use.
type Tracker struct {
	snap    Snapshot
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewTracker starts in HealthUnknown.
func NewTracker(log zerolog.Logger, m *metrics.Metrics) *Tracker {
	t := &Tracker{log: log, metrics: m}
	t.snap.Health = HealthUnknown
	m.Health(int(HealthUnknown))
	return t
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	s := t.snap
	s.FailedFields = append([]string(nil), t.snap.FailedFields...)
	return s
}

// Observe folds one Record into the state. It reports whether health,
// error code or the failing field set changed; only changes are logged.
func (t *Tracker) Observe(rec poller.Record) bool {
	next := t.snap

	failed := rec.Failed()
	switch {
	case len(failed) == 0:
		next.Health = HealthOK
		next.LastErrorCode = 0
		next.FailedFields = nil
		next.CyclesInError = 0

	default:
		if len(failed) == len(rec.Fields) {
			next.Health = HealthError
		} else {
			next.Health = HealthDegraded
		}
		first, _ := rec.Lookup(failed[0])
		next.LastErrorCode = device.ErrorCode(first.Err)
		next.FailedFields = failed
		if next.CyclesInError < MaxCyclesInError {
			next.CyclesInError++
		}
	}

	return t.apply(next)
}

// Fail records a session-fatal error.
func (t *Tracker) Fail(err error) bool {
	next := t.snap
	next.Health = HealthError
	next.LastErrorCode = device.ErrorCode(err)
	if next.CyclesInError < MaxCyclesInError {
		next.CyclesInError++
	}
	return t.apply(next)
}

func (t *Tracker) apply(next Snapshot) bool {
	changed := !next.equal(t.snap)
	t.snap = next
	if !changed {
		return false
	}

	t.metrics.Health(int(next.Health))

	ev := t.log.Warn()
	if next.Health == HealthOK {
		ev = t.log.Info()
	}
	ev.Str("health", HealthName(next.Health)).
		Uint16("last_error_code", next.LastErrorCode).
		Strs("failed_fields", next.FailedFields).
		Uint16("cycles_in_error", next.CyclesInError).
		Msg("device health changed")

	return true
}
