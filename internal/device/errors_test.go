// internal/device/errors_test.go
package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, uint16(0), ErrorCode(nil))
	assert.Equal(t, uint16(1), ErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("read speed: %w", &Error{Op: "acts", Code: 6})
	assert.Equal(t, uint16(6), ErrorCode(wrapped))
}

func TestIsSessionFatal(t *testing.T) {
	assert.True(t, IsSessionFatal(fmt.Errorf("%w: connection reset", ErrSessionLost)))
	assert.True(t, IsSessionFatal(&Error{Op: "id", Code: 0xFFFF, Err: ErrSessionLost}))
	assert.False(t, IsSessionFatal(ErrTimeout))
	assert.False(t, IsSessionFatal(&Error{Op: "acts", Code: 2}))
}

func TestSpeedElementScaled(t *testing.T) {
	e := SpeedElement{Data: 12345, Dec: 2}
	assert.InDelta(t, 123.45, e.Scaled(), 1e-9)

	assert.InDelta(t, 800.0, SpeedElement{Data: 800}.Scaled(), 1e-9)
}

func TestBlockString(t *testing.T) {
	assert.Equal(t, "active", BlockActive.String())
	assert.False(t, Block(3).Valid())
	assert.True(t, BlockNext.Valid())
}
