// internal/publisher/publisher.go

// Package publisher hands finished records to the outbound bus.
// Delivery is at-most-once: failures are logged and the record is gone.
package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/metrics"
	"github.com/tamzrod/cnc-poller/internal/poller"
)

var (
	// ErrDisconnected means the transport was down; no attempt was made.
	ErrDisconnected = errors.New("publisher: transport disconnected")

	// ErrQueueFull means the handoff queue was full and the record was dropped.
	ErrQueueFull = errors.New("publisher: queue full")

	// ErrClosed means Submit was called after Close.
	ErrClosed = errors.New("publisher: closed")
)

// DefaultQueueSize bounds records waiting for the publish goroutine.
const DefaultQueueSize = 4

// Transport is the exact contract the publisher uses.
type Transport interface {
	Publish(subject string, payload []byte, id string) error
	Connected() bool
}

type Config struct {
	Subject   string
	QueueSize int
}

type Publisher struct {
	cfg     Config
	tr      Transport
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	queue  chan poller.Record
}

func New(cfg Config, tr Transport, log zerolog.Logger, m *metrics.Metrics) (*Publisher, error) {
	if cfg.Subject == "" {
		return nil, errors.New("publisher: subject required")
	}
	if tr == nil {
		return nil, errors.New("publisher: transport required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Publisher{
		cfg:     cfg,
		tr:      tr,
		log:     log,
		metrics: m,
		queue:   make(chan poller.Record, cfg.QueueSize),
	}, nil
}

// Submit hands rec to the publish goroutine without blocking.
// When the queue is full rec is dropped.
func (p *Publisher) Submit(rec poller.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- rec:
		return nil
	default:
		p.metrics.Dropped()
		p.log.Warn().
			Time("record", rec.Timestamp).
			Int("queue", cap(p.queue)).
			Msg("record dropped: publish queue full")
		return ErrQueueFull
	}
}

// Run publishes queued records in order until Close, then drains.
// Publish failures never end the loop.
func (p *Publisher) Run() error {
	for rec := range p.queue {
		_ = p.Publish(rec)
	}
	return nil
}

// Close stops accepting records. Run returns once the queue is drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
}

// Publish encodes and sends one record synchronously.
func (p *Publisher) Publish(rec poller.Record) error {
	if !p.tr.Connected() {
		p.metrics.Published(metrics.ResultNoRoute)
		p.log.Warn().
			Str("subject", p.cfg.Subject).
			Time("record", rec.Timestamp).
			Err(ErrDisconnected).
			Msg("publish failed")
		return ErrDisconnected
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		p.metrics.Published(metrics.ResultError)
		p.log.Error().Err(err).Msg("record encode failed")
		return fmt.Errorf("publisher: encode: %w", err)
	}

	id := uuid.NewString()
	if err := p.tr.Publish(p.cfg.Subject, payload, id); err != nil {
		p.metrics.Published(metrics.ResultError)
		p.log.Warn().
			Str("subject", p.cfg.Subject).
			Str("msg_id", id).
			Err(err).
			Msg("publish failed")
		return fmt.Errorf("publisher: %w", err)
	}

	p.metrics.Published(metrics.ResultOK)
	p.log.Debug().
		Str("subject", p.cfg.Subject).
		Str("msg_id", id).
		Int("bytes", len(payload)).
		Msg("record published")
	return nil
}
