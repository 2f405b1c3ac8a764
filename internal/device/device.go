// internal/device/device.go

// Package device defines the capability the poller consumes from a CNC
// controller session. Drivers live in subpackages.
package device

import "context"

// Block selects which program block a G-code or modal read refers to.
type Block int16

const (
	BlockPrevious Block = 0
	BlockActive   Block = 1
	BlockNext     Block = 2
)

func (b Block) Valid() bool { return b >= BlockPrevious && b <= BlockNext }

func (b Block) String() string {
	switch b {
	case BlockPrevious:
		return "previous"
	case BlockActive:
		return "active"
	case BlockNext:
		return "next"
	default:
		return "invalid"
	}
}

// G-code read kinds (ReadGCode).
const (
	GCodeAllModal   int16 = -1
	GCodeAllOneShot int16 = -2
)

// Modal read kinds (ReadModal).
const (
	ModalAllGCode   int16 = -1
	ModalAllOther   int16 = -2
	ModalAllAxis    int16 = -3
	ModalAllOneShot int16 = -4
)

// Feed/speed modes (ReadFeedRateAndSpeed).
const (
	SpeedModeFeedOnly    int16 = 0
	SpeedModeSpindleOnly int16 = 1
	SpeedModeBoth        int16 = -1
)

// AllSpindles selects every spindle in ReadSpindleSpeeds.
const AllSpindles int16 = -1

// Handle is an open session to one controller.
// A Handle is not safe for concurrent use; callers serialize access.
//
// Every read either returns a value or an error. Errors wrapping
// ErrSessionLost mean the session is no longer usable; every other error
// concerns that single read only.
type Handle interface {
	ReadID() (string, error)
	ReadSpindleSpeed() (int32, error)
	ReadSpindleSpeeds(selector int16) (SpindleSpeeds, error)
	ReadFeedRate() (int32, error)
	ReadFeedRateAndSpeed(mode int16) (FeedRateAndSpeed, error)
	ReadGCode(kind int16, block Block) ([]GCode, error)
	ReadModal(kind int16, block Block) (ModalBlock, error)

	Close() error
}

// Opener opens a new Handle. One attempt per call.
type Opener func(ctx context.Context) (Handle, error)
