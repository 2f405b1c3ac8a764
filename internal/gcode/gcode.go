// internal/gcode/gcode.go

// Package gcode turns raw controller codes into G-code text.
// Pure lookups: no IO, no state.
package gcode

import "fmt"

// Unknown is returned for codes outside the tables.
const Unknown = "Unknown"

// LookupModal returns the G code for a modal group and raw value.
func LookupModal(group int, value byte) (string, bool) {
	if group < 0 || group >= ModalGroups {
		return "", false
	}
	s, ok := modal[group][value]
	return s, ok
}

// Modal is LookupModal with the Unknown fallback.
func Modal(group int, value byte) string {
	if s, ok := LookupModal(group, value); ok {
		return s
	}
	return Unknown
}

// LookupOneShot returns the one-shot G code for a raw value.
func LookupOneShot(value byte) (string, bool) {
	s, ok := oneShot[value]
	return s, ok
}

// OneShot is LookupOneShot with the Unknown fallback.
func OneShot(value byte) string {
	if s, ok := LookupOneShot(value); ok {
		return s
	}
	return Unknown
}

// OtherAddress returns the address letter for an other-data kind (100..126).
func OtherAddress(kind int) string {
	if kind < OtherFirst || kind > OtherLast {
		return Unknown
	}
	return otherAddress[kind-OtherFirst]
}

// AxisName returns the label used for an axis-data kind (200..207).
func AxisName(kind int) string {
	if kind < AxisFirst || kind > AxisLast {
		return Unknown
	}
	return fmt.Sprintf("AXIS%d", kind-AxisFirst+1)
}
