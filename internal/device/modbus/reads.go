// internal/device/modbus/reads.go
package modbus

import (
	"fmt"

	"github.com/tamzrod/cnc-poller/internal/device"
	"github.com/tamzrod/cnc-poller/internal/gcode"
)

func invalid(op, format string, args ...any) error {
	return &device.Error{Op: op, Code: codeGeneric, Err: fmt.Errorf("%w: "+format, append([]any{device.ErrInvalidArgument}, args...)...)}
}

// ReadID returns the controller id as four dash-separated hex words.
func (s *Session) ReadID() (string, error) {
	regs, err := s.read("id", regID, regIDSize)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x-%08x-%08x-%08x",
		uint32At(regs, 0), uint32At(regs, 2), uint32At(regs, 4), uint32At(regs, 6)), nil
}

func (s *Session) ReadSpindleSpeed() (int32, error) {
	regs, err := s.read("spindle_speed", regSpindleSpeed, 2)
	if err != nil {
		return 0, err
	}
	return int32At(regs, 0), nil
}

func (s *Session) ReadFeedRate() (int32, error) {
	regs, err := s.read("feed_rate", regFeedRate, 2)
	if err != nil {
		return 0, err
	}
	return int32At(regs, 0), nil
}

// ReadSpindleSpeeds reads one spindle (1..8) or all of them (device.AllSpindles).
func (s *Session) ReadSpindleSpeeds(selector int16) (device.SpindleSpeeds, error) {
	const op = "spindle_speeds"
	if selector != device.AllSpindles && (selector < 1 || selector > maxSpindles) {
		return device.SpindleSpeeds{}, invalid(op, "spindle selector %d", selector)
	}

	regs, err := s.read(op, regSpindleCount, 1+2*maxSpindles)
	if err != nil {
		return device.SpindleSpeeds{}, err
	}

	count := int(regs[0])
	if count > maxSpindles {
		count = maxSpindles
	}

	if selector != device.AllSpindles {
		if int(selector) > count {
			return device.SpindleSpeeds{}, invalid(op, "spindle %d of %d", selector, count)
		}
		return device.SpindleSpeeds{
			Count: 1,
			Data:  []int32{int32At(regs, 1+2*int(selector-1))},
		}, nil
	}

	out := device.SpindleSpeeds{Count: count, Data: make([]int32, count)}
	for i := 0; i < count; i++ {
		out.Data[i] = int32At(regs, 1+2*i)
	}
	return out, nil
}

// ReadFeedRateAndSpeed reads the scaled feed and/or spindle element.
func (s *Session) ReadFeedRateAndSpeed(mode int16) (device.FeedRateAndSpeed, error) {
	const op = "feed_rate_and_speed"
	if mode != device.SpeedModeFeedOnly && mode != device.SpeedModeSpindleOnly && mode != device.SpeedModeBoth {
		return device.FeedRateAndSpeed{}, invalid(op, "speed mode %d", mode)
	}

	regs, err := s.read(op, speedBlockStart, speedBlockSize)
	if err != nil {
		return device.FeedRateAndSpeed{}, err
	}
	at := func(r uint16) uint16 { return regs[r-speedBlockStart] }

	var out device.FeedRateAndSpeed
	if mode != device.SpeedModeSpindleOnly {
		out.FeedRate = &device.SpeedElement{
			Data: int32At(regs, int(regFeedRate-speedBlockStart)),
			Dec:  int16(at(regFeedDec)),
			Unit: int16(at(regFeedUnit)),
			Name: "F",
		}
	}
	if mode != device.SpeedModeFeedOnly {
		el := &device.SpeedElement{
			Data: int32At(regs, int(regSpindleSpeed-speedBlockStart)),
			Dec:  int16(at(regSpindleDec)),
			Unit: int16(at(regSpindleUnit)),
			Name: "S",
		}
		if c := byte(at(regSpindleSuffix)); c != 0 {
			el.Suffix = string(rune(c))
		}
		out.SpindleSpeed = el
	}
	return out, nil
}

// ReadGCode decodes modal (kind -1 or a single group 0..20) or
// one-shot (kind -2) G codes for a block.
func (s *Session) ReadGCode(kind int16, block device.Block) ([]device.GCode, error) {
	const op = "gcode"
	if !block.Valid() {
		return nil, invalid(op, "block %d", block)
	}

	switch {
	case kind == device.GCodeAllOneShot:
		regs, err := s.read(op, blockOffset(regOneShot, oneShotSlots, int16(block)), oneShotSlots)
		if err != nil {
			return nil, err
		}
		out := make([]device.GCode, 0, len(regs))
		for _, r := range regs {
			if r == emptySlot {
				continue
			}
			out = append(out, device.GCode{
				Group: gcode.OneShotKind,
				Flag:  int16(r >> 8),
				Code:  gcode.OneShot(byte(r)),
			})
		}
		return out, nil

	case kind == device.GCodeAllModal || (kind >= 0 && int(kind) < gcode.ModalGroups):
		regs, err := s.read(op, blockOffset(regModalGCode, modalGCodeSize, int16(block)), modalGCodeSize)
		if err != nil {
			return nil, err
		}
		out := make([]device.GCode, 0, len(regs))
		for g, r := range regs {
			if kind >= 0 && g != int(kind) {
				continue
			}
			out = append(out, device.GCode{
				Group: int16(g),
				Flag:  int16(r >> 8),
				Code:  gcode.Modal(g, byte(r)),
			})
		}
		return out, nil
	}

	return nil, invalid(op, "gcode kind %d", kind)
}

// ReadModal reads modal data for a block. kind is one of the
// device.ModalAll* constants or a single data number
// (0..20, 100..126, 200..207, 300).
func (s *Session) ReadModal(kind int16, block device.Block) (device.ModalBlock, error) {
	const op = "modal"
	if !block.Valid() {
		return device.ModalBlock{}, invalid(op, "block %d", block)
	}

	var (
		entries []device.ModalEntry
		err     error
	)
	k := int(kind)
	switch {
	case kind == device.ModalAllGCode || (k >= 0 && k < gcode.ModalGroups):
		entries, err = s.modalGCode(op, block)
	case kind == device.ModalAllOneShot || k == gcode.OneShotKind:
		entries, err = s.modalOneShot(op, block)
	case kind == device.ModalAllOther || (k >= gcode.OtherFirst && k <= gcode.OtherLast):
		entries, err = s.modalEntries(op, block, regOtherData, otherEntries, gcode.OtherFirst, gcode.OtherAddress)
	case kind == device.ModalAllAxis || (k >= gcode.AxisFirst && k <= gcode.AxisLast):
		entries, err = s.modalEntries(op, block, regAxisData, axisEntries, gcode.AxisFirst, gcode.AxisName)
	default:
		return device.ModalBlock{}, invalid(op, "modal kind %d", kind)
	}
	if err != nil {
		return device.ModalBlock{}, err
	}

	if kind >= 0 && k != gcode.OneShotKind {
		entries = pick(entries, kind)
	}
	return device.ModalBlock{Kind: kind, Block: block, Entries: entries}, nil
}

func pick(entries []device.ModalEntry, dataNo int16) []device.ModalEntry {
	for _, e := range entries {
		if e.DataNo == dataNo {
			return []device.ModalEntry{e}
		}
	}
	return []device.ModalEntry{}
}

func (s *Session) modalGCode(op string, block device.Block) ([]device.ModalEntry, error) {
	regs, err := s.read(op, blockOffset(regModalGCode, modalGCodeSize, int16(block)), modalGCodeSize)
	if err != nil {
		return nil, err
	}
	out := make([]device.ModalEntry, len(regs))
	for g, r := range regs {
		out[g] = device.ModalEntry{
			DataNo:  int16(g),
			Address: gcode.Modal(g, byte(r)),
			Value:   int32(byte(r)),
			Flag:    int16(r >> 8),
		}
	}
	return out, nil
}

func (s *Session) modalOneShot(op string, block device.Block) ([]device.ModalEntry, error) {
	regs, err := s.read(op, blockOffset(regOneShot, oneShotSlots, int16(block)), oneShotSlots)
	if err != nil {
		return nil, err
	}
	out := make([]device.ModalEntry, 0, len(regs))
	for _, r := range regs {
		if r == emptySlot {
			continue
		}
		out = append(out, device.ModalEntry{
			DataNo:  gcode.OneShotKind,
			Address: gcode.OneShot(byte(r)),
			Value:   int32(byte(r)),
			Flag:    int16(r >> 8),
		})
	}
	return out, nil
}

func (s *Session) modalEntries(op string, block device.Block, area, n uint16, first int, name func(int) string) ([]device.ModalEntry, error) {
	size := n * entryRegs
	regs, err := s.read(op, blockOffset(area, size, int16(block)), size)
	if err != nil {
		return nil, err
	}
	out := make([]device.ModalEntry, n)
	for i := range out {
		j := i * int(entryRegs)
		out[i] = device.ModalEntry{
			DataNo:  int16(first + i),
			Address: name(first + i),
			Value:   int32At(regs, j+1),
			Flag:    int16(regs[j]),
		}
	}
	return out, nil
}
