// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/clock"
	"github.com/tamzrod/cnc-poller/internal/device"
	"github.com/tamzrod/cnc-poller/internal/fields"
	"github.com/tamzrod/cnc-poller/internal/metrics"
)

// Executor runs the field set once per cycle against a borrowed handle.
type Executor struct {
	fields  fields.Set
	clock   clock.Clock
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewExecutor creates an executor with an immutable field set.
func NewExecutor(set fields.Set, clk clock.Clock, log zerolog.Logger, m *metrics.Metrics) (*Executor, error) {
	if set.Len() == 0 {
		return nil, errors.New("poller: at least one field required")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Executor{fields: set, clock: clk, log: log, metrics: m}, nil
}

// RunCycle performs exactly one poll cycle.
// Every field is attempted; a field failure is recorded, never returned.
// The only error is a session-fatal one, which aborts the cycle without a Record.
func (e *Executor) RunCycle(h device.Handle) (Record, error) {
	start := e.clock.Now()
	outcomes := make([]FieldOutcome, 0, e.fields.Len())

	for i := 0; i < e.fields.Len(); i++ {
		spec := e.fields.At(i)

		val, err := spec.Read(h)
		if err != nil {
			if device.IsSessionFatal(err) {
				return Record{}, fmt.Errorf("poller: read %s: %w", spec.Name, err)
			}
			e.log.Warn().
				Str("field", spec.Name).
				Uint16("code", device.ErrorCode(err)).
				Err(err).
				Msg("field read failed")
			e.metrics.FieldFailed(spec.Name)
			outcomes = append(outcomes, FieldOutcome{Name: spec.Name, Err: err})
			continue
		}
		outcomes = append(outcomes, FieldOutcome{Name: spec.Name, Value: val})
	}

	// stamped once, after every read
	now := e.clock.Now()
	e.metrics.CycleDone(now.Sub(start))

	return Record{Timestamp: now, Fields: outcomes}, nil
}
