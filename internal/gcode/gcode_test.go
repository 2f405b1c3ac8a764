// internal/gcode/gcode_test.go
package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModal(t *testing.T) {
	cases := []struct {
		group int
		value byte
		want  string
	}{
		{0, 0, "G00"},
		{0, 24, "G34"},
		{1, 8, "G18"},
		{5, 1, "G21(G71)"},
		{13, 5, "G59"},
		{20, 1, "G12.1(G112)"},
		{0, 9, Unknown},
		{21, 0, Unknown},
		{-1, 0, Unknown},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Modal(c.group, c.value), "group=%d value=%d", c.group, c.value)
	}
}

func TestOneShot(t *testing.T) {
	assert.Equal(t, "G04", OneShot(0))
	assert.Equal(t, "G92", OneShot(14))
	assert.Equal(t, "G37.3", OneShot(127))
	assert.Equal(t, Unknown, OneShot(2))

	_, ok := LookupOneShot(200)
	assert.False(t, ok)
}

func TestOtherAddress(t *testing.T) {
	assert.Equal(t, "B", OtherAddress(100))
	assert.Equal(t, "F", OtherAddress(103))
	assert.Equal(t, "S", OtherAddress(107))
	assert.Equal(t, "T", OtherAddress(108))
	assert.Equal(t, "Z", OtherAddress(124))
	assert.Equal(t, "M", OtherAddress(126))
	assert.Equal(t, Unknown, OtherAddress(99))
	assert.Equal(t, Unknown, OtherAddress(127))
}

func TestAxisName(t *testing.T) {
	assert.Equal(t, "AXIS1", AxisName(200))
	assert.Equal(t, "AXIS8", AxisName(207))
	assert.Equal(t, Unknown, AxisName(208))
}
