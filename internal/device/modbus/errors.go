// internal/device/modbus/errors.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/cnc-poller/internal/device"
)

// Driver codes. Modbus exception codes (1..11) pass through unchanged.
const (
	codeGeneric     uint16 = 1
	codeBadResponse uint16 = 0xFF02
	codeTimeout     uint16 = 0xFF01
	codeSessionLost uint16 = 0xFFFF
)

// classify maps a transport error onto the device error contract.
//
// A timed out request leaves its response unread on the connection and the
// TCP handler does not discard it, so every later reply would belong to the
// previous request. Timeouts and out-of-sequence replies therefore end the
// session.
func classify(op string, err error) error {
	var mbErr *modbus.ModbusError
	switch {
	case errors.As(err, &mbErr):
		return &device.Error{Op: op, Code: uint16(mbErr.ExceptionCode), Err: err}
	case connectionLost(err):
		return &device.Error{Op: op, Code: codeSessionLost, Err: fmt.Errorf("%w: %w", device.ErrSessionLost, err)}
	case timedOut(err):
		return &device.Error{Op: op, Code: codeTimeout, Err: fmt.Errorf("%w: %w: %w", device.ErrSessionLost, device.ErrTimeout, err)}
	case outOfSequence(err):
		return &device.Error{Op: op, Code: codeBadResponse, Err: fmt.Errorf("%w: %w", device.ErrSessionLost, err)}
	default:
		return &device.Error{Op: op, Code: codeGeneric, Err: err}
	}
}

func connectionLost(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

func timedOut(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// outOfSequence matches the MBAP header mismatches reported by the TCP
// handler. They carry no sentinel, only text.
func outOfSequence(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "transaction id") || strings.Contains(msg, "protocol id")
}
