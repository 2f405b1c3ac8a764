// internal/status/constants.go
package status

// Device health codes. Exported as the device_health gauge,
// so the values MUST NOT change.

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first cycle.
const HealthUnknown uint16 = 0

// HealthOK means every field of the last cycle was read.
const HealthOK uint16 = 1

// HealthDegraded means some fields of the last cycle failed.
const HealthDegraded uint16 = 2

// HealthError means every field of the last cycle failed, or the session was lost.
const HealthError uint16 = 3

// ---- LIMITS ----

// MaxCyclesInError is where CyclesInError saturates.
const MaxCyclesInError = 65535

// HealthName returns a log label for a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthDegraded:
		return "degraded"
	case HealthError:
		return "error"
	default:
		return "invalid"
	}
}
