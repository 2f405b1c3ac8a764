// internal/device/devicetest/handle.go

// Package devicetest provides an in-memory device.Handle for tests.
package devicetest

import (
	"context"
	"errors"
	"sync"

	"github.com/tamzrod/cnc-poller/internal/device"
)

// Op names used by Fail and Calls.
const (
	OpID               = "id"
	OpSpindleSpeed     = "spindle_speed"
	OpSpindleSpeeds    = "spindle_speeds"
	OpFeedRate         = "feed_rate"
	OpFeedRateAndSpeed = "feed_rate_and_speed"
	OpGCode            = "gcode"
	OpModal            = "modal"
)

// Handle is a scripted device.Handle. Reads return fixed values unless an
// error is registered for the op. BeforeRead runs ahead of every read.
type Handle struct {
	mu sync.Mutex

	ID    string
	Speed int32
	Feed  int32

	fail   map[string]error
	calls  map[string]int
	closed int

	BeforeRead func(op string)
}

var _ device.Handle = (*Handle)(nil)

// New returns a Handle with plausible values.
func New() *Handle {
	return &Handle{
		ID:    "00000001-00000002-00000003-00000004",
		Speed: 1200,
		Feed:  350,
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

// Fail makes every later read of op return err. A nil err clears it.
func (h *Handle) Fail(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.fail, op)
		return
	}
	h.fail[op] = err
}

// Calls returns how many times op was read.
func (h *Handle) Calls(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[op]
}

// Closed returns how many times Close was called.
func (h *Handle) Closed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// ErrUseAfterClose is returned by reads on a closed Handle.
var ErrUseAfterClose = errors.New("devicetest: read after close")

func (h *Handle) begin(op string) error {
	if h.BeforeRead != nil {
		h.BeforeRead(op)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[op]++
	if h.closed > 0 {
		return ErrUseAfterClose
	}
	return h.fail[op]
}

func (h *Handle) ReadID() (string, error) {
	if err := h.begin(OpID); err != nil {
		return "", err
	}
	return h.ID, nil
}

func (h *Handle) ReadSpindleSpeed() (int32, error) {
	if err := h.begin(OpSpindleSpeed); err != nil {
		return 0, err
	}
	return h.Speed, nil
}

func (h *Handle) ReadSpindleSpeeds(selector int16) (device.SpindleSpeeds, error) {
	if err := h.begin(OpSpindleSpeeds); err != nil {
		return device.SpindleSpeeds{}, err
	}
	return device.SpindleSpeeds{Count: 1, Data: []int32{h.Speed}}, nil
}

func (h *Handle) ReadFeedRate() (int32, error) {
	if err := h.begin(OpFeedRate); err != nil {
		return 0, err
	}
	return h.Feed, nil
}

func (h *Handle) ReadFeedRateAndSpeed(mode int16) (device.FeedRateAndSpeed, error) {
	if err := h.begin(OpFeedRateAndSpeed); err != nil {
		return device.FeedRateAndSpeed{}, err
	}
	return device.FeedRateAndSpeed{
		FeedRate:     &device.SpeedElement{Data: h.Feed, Name: "F"},
		SpindleSpeed: &device.SpeedElement{Data: h.Speed, Unit: device.UnitRPM, Name: "S"},
	}, nil
}

func (h *Handle) ReadGCode(kind int16, block device.Block) ([]device.GCode, error) {
	if err := h.begin(OpGCode); err != nil {
		return nil, err
	}
	return []device.GCode{{Group: 0, Flag: 1, Code: "G01"}}, nil
}

func (h *Handle) ReadModal(kind int16, block device.Block) (device.ModalBlock, error) {
	if err := h.begin(OpModal); err != nil {
		return device.ModalBlock{}, err
	}
	return device.ModalBlock{Kind: kind, Block: block, Entries: []device.ModalEntry{}}, nil
}

// Close counts calls; it never fails.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed++
	return nil
}

// Opener returns a device.Opener that yields h, or err when non-nil.
func Opener(h *Handle, err error) device.Opener {
	return func(ctx context.Context) (device.Handle, error) {
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}
