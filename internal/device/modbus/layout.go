// internal/device/modbus/layout.go
package modbus

// Gateway register map (holding registers, offsets relative to the
// configured base address). Multi-register integers are big-endian,
// high word first. Protocol-locked: MUST match the gateway firmware.

const (
	regID     uint16 = 0 // 8 regs: 4 x uint32
	regIDSize uint16 = 8

	regSpindleSpeed uint16 = 8  // int32
	regFeedRate     uint16 = 10 // int32

	regFeedDec       uint16 = 12
	regFeedUnit      uint16 = 13
	regSpindleDec    uint16 = 14
	regSpindleUnit   uint16 = 15
	regSpindleSuffix uint16 = 16 // ASCII in low byte, 0 = none

	// feed/speed element reads cover 8..16 in one request
	speedBlockStart = regSpindleSpeed
	speedBlockSize  = regSpindleSuffix - regSpindleSpeed + 1

	regSpindleCount  uint16 = 17
	regSpindleSpeeds uint16 = 18 // maxSpindles x int32
	maxSpindles             = 8
)

// Per-block areas. Each area holds 3 blocks (previous, active, next).
const (
	// One register per group: flag in the high byte, code in the low byte.
	regModalGCode  uint16 = 34
	modalGCodeSize uint16 = 21

	// Up to four one-shot codes per block. 0xFFFF marks an empty slot.
	regOneShot   uint16 = 97
	oneShotSlots uint16 = 4

	// 27 entries per block, 3 regs each: flag, value hi, value lo.
	regOtherData  uint16 = 109
	otherEntries  uint16 = 27
	entryRegs     uint16 = 3
	otherDataSize        = otherEntries * entryRegs

	// 8 entries per block, same entry shape as other data.
	regAxisData  uint16 = 352
	axisEntries  uint16 = 8
	axisDataSize        = axisEntries * entryRegs
)

const emptySlot uint16 = 0xFFFF

func blockOffset(area, size uint16, block int16) uint16 {
	return area + uint16(block)*size
}
