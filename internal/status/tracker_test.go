// internal/status/tracker_test.go
package status

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tamzrod/cnc-poller/internal/device"
	"github.com/tamzrod/cnc-poller/internal/poller"
)

func rec(failed map[string]error, names ...string) poller.Record {
	r := poller.Record{Timestamp: time.Unix(0, 0)}
	for _, n := range names {
		r.Fields = append(r.Fields, poller.FieldOutcome{Name: n, Value: 1, Err: failed[n]})
	}
	return r
}

func TestTracker_Transitions(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(zerolog.New(&buf), nil)
	assert.Equal(t, HealthUnknown, tr.Snapshot().Health)

	ok := rec(nil, "id", "speed")
	assert.True(t, tr.Observe(ok))
	assert.Equal(t, HealthOK, tr.Snapshot().Health)

	// no change, no log line
	assert.False(t, tr.Observe(ok))

	degraded := rec(map[string]error{"speed": &device.Error{Op: "speed", Code: 4}}, "id", "speed")
	assert.True(t, tr.Observe(degraded))
	s := tr.Snapshot()
	assert.Equal(t, HealthDegraded, s.Health)
	assert.Equal(t, uint16(4), s.LastErrorCode)
	assert.Equal(t, []string{"speed"}, s.FailedFields)
	assert.Equal(t, uint16(1), s.CyclesInError)

	assert.False(t, tr.Observe(degraded))
	assert.Equal(t, uint16(2), tr.Snapshot().CyclesInError)

	all := rec(map[string]error{"id": errors.New("x"), "speed": errors.New("y")}, "id", "speed")
	assert.True(t, tr.Observe(all))
	assert.Equal(t, HealthError, tr.Snapshot().Health)
	assert.Equal(t, uint16(1), tr.Snapshot().LastErrorCode)

	assert.True(t, tr.Observe(ok))
	s = tr.Snapshot()
	assert.Equal(t, HealthOK, s.Health)
	assert.Zero(t, s.CyclesInError)
	assert.Zero(t, s.LastErrorCode)
	assert.Nil(t, s.FailedFields)

	assert.Equal(t, 4, strings.Count(buf.String(), "device health changed"))
}

func TestTracker_CyclesInErrorSaturates(t *testing.T) {
	tr := NewTracker(zerolog.Nop(), nil)
	tr.snap.Health = HealthDegraded
	tr.snap.CyclesInError = MaxCyclesInError - 1

	bad := rec(map[string]error{"id": errors.New("x")}, "id", "speed")
	tr.Observe(bad)
	tr.Observe(bad)
	assert.Equal(t, uint16(MaxCyclesInError), tr.Snapshot().CyclesInError)
}

func TestTracker_Fail(t *testing.T) {
	tr := NewTracker(zerolog.Nop(), nil)
	tr.Observe(rec(nil, "id"))

	changed := tr.Fail(&device.Error{Op: "id", Code: 0xFFFF, Err: fmt.Errorf("%w", device.ErrSessionLost)})
	assert.True(t, changed)
	assert.Equal(t, HealthError, tr.Snapshot().Health)
	assert.Equal(t, uint16(0xFFFF), tr.Snapshot().LastErrorCode)
}

func TestHealthName(t *testing.T) {
	assert.Equal(t, "degraded", HealthName(HealthDegraded))
	assert.Equal(t, "invalid", HealthName(42))
}
