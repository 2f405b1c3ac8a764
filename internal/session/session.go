// internal/session/session.go

// Package session owns the device handle for the lifetime of a run.
//
// State machine: Unopened -> Open -> Closed. Closed is terminal.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/device"
)

type State uint8

const (
	Unopened State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "invalid"
	}
}

var (
	// ErrClosed is returned by Handle after the session was released.
	ErrClosed = errors.New("session: closed")

	// ErrNotOpen is returned by Handle before a successful open.
	ErrNotOpen = errors.New("session: not open")
)

// Session guards one device handle.
type Session struct {
	mu     sync.Mutex
	id     string
	state  State
	handle device.Handle
	log    zerolog.Logger
}

// New returns an Unopened session.
func New(log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:  id,
		log: log.With().Str("session", id).Logger(),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open acquires the handle. ONE attempt; failure leaves the session Unopened.
func (s *Session) Open(ctx context.Context, open device.Opener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Unopened {
		return fmt.Errorf("session: open in state %s", s.state)
	}

	h, err := open(ctx)
	if err != nil {
		return fmt.Errorf("session: open: %w", err)
	}
	if h == nil {
		return errors.New("session: opener returned no handle")
	}

	s.handle = h
	s.state = Open
	s.log.Info().Msg("device session open")
	return nil
}

// Handle lends the handle to the caller for one cycle.
func (s *Session) Handle() (device.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Open:
		return s.handle, nil
	case Closed:
		return nil, ErrClosed
	default:
		return nil, ErrNotOpen
	}
}

// Close releases the handle. Safe in every state; the handle is closed at
// most once. Unopened sessions move straight to Closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return nil
	}

	prev := s.state
	s.state = Closed

	if prev != Open {
		return nil
	}

	h := s.handle
	s.handle = nil

	if err := h.Close(); err != nil {
		s.log.Warn().Err(err).Msg("device session close failed")
		return fmt.Errorf("session: close: %w", err)
	}
	s.log.Info().Msg("device session closed")
	return nil
}

// Run opens a session, calls fn with it and releases it on every exit
// path. An open failure is returned before fn runs.
func Run(ctx context.Context, open device.Opener, log zerolog.Logger, fn func(*Session) error) (err error) {
	s := New(log)
	if err := s.Open(ctx, open); err != nil {
		return err
	}

	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(s)
}
