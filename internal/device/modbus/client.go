// internal/device/modbus/client.go

// Package modbus is a device driver for CNC controllers exposed through a
// Modbus TCP gateway. One Session is one TCP connection.
package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/cnc-poller/internal/device"
)

// Config is the minimal runtime config the driver needs.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
	Base     uint16
}

// registerReader is the subset of modbus.Client the session uses.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Session is an open gateway connection. It implements device.Handle.
// Once a read reports session loss every later read fails the same way;
// the underlying handler is never redialed.
type Session struct {
	mu     sync.Mutex
	reader registerReader
	closer io.Closer
	base   uint16

	lost   error
	closed bool
}

var _ device.Handle = (*Session)(nil)

// Open dials the gateway. ONE attempt per call.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("device modbus: endpoint required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID
	// the handler would otherwise drop and redial idle connections
	h.IdleTimeout = 0

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("device modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return newSession(modbus.NewClient(h), h, cfg.Base), nil
}

// Opener binds cfg into a device.Opener.
func Opener(cfg Config) device.Opener {
	return func(ctx context.Context) (device.Handle, error) {
		s, err := Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newSession(r registerReader, c io.Closer, base uint16) *Session {
	return &Session{reader: r, closer: c, base: base}
}

// Close releases the connection. Repeated calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// read fetches qty holding registers at base+off.
func (s *Session) read(op string, off, qty uint16) ([]uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, &device.Error{Op: op, Code: codeSessionLost, Err: fmt.Errorf("%w: handle closed", device.ErrSessionLost)}
	}
	if s.lost != nil {
		return nil, s.lost
	}

	raw, err := s.reader.ReadHoldingRegisters(s.base+off, qty)
	if err != nil {
		err = classify(op, err)
		if device.IsSessionFatal(err) {
			s.lost = err
		}
		return nil, err
	}
	if len(raw) != int(qty)*2 {
		return nil, &device.Error{Op: op, Code: codeBadResponse, Err: fmt.Errorf("short response: %d bytes for %d registers", len(raw), qty)}
	}

	return decodeRegisters(raw), nil
}

func decodeRegisters(raw []byte) []uint16 {
	out := make([]uint16, len(raw)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(raw[2*i:])
	}
	return out
}

func int32At(regs []uint16, i int) int32 {
	return int32(uint32(regs[i])<<16 | uint32(regs[i+1]))
}

func uint32At(regs []uint16, i int) uint32 {
	return uint32(regs[i])<<16 | uint32(regs[i+1])
}
