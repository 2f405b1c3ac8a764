// internal/bus/bus.go

// Package bus is the outbound NATS connection records are published on.
package bus

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/metrics"
)

type Config struct {
	Host          string
	Port          int
	Name          string
	Timeout       time.Duration
	ReconnectWait time.Duration
}

// URL returns the nats:// address for cfg.
func (c Config) URL() string {
	return "nats://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Conn wraps a NATS connection and tracks connectivity through the
// client's lifecycle callbacks. Publishing never waits for a reconnect.
type Conn struct {
	nc        *nats.Conn
	connected atomic.Bool
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// Connect dials the bus. ONE attempt; failure is returned to the caller.
// After a successful connect the client reconnects on its own.
func Connect(cfg Config, log zerolog.Logger, m *metrics.Metrics) (*Conn, error) {
	if cfg.Host == "" {
		return nil, errors.New("bus: host required")
	}

	c := &Conn{log: log, metrics: m}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		// nothing is queued while disconnected
		nats.ReconnectBufSize(-1),
		nats.ConnectHandler(func(nc *nats.Conn) {
			c.onConnected(nc.ConnectedUrl())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.onConnected(nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.onDisconnected(err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.onDisconnected(nats.ErrConnectionClosed)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			c.log.Warn().Err(err).Msg("bus async error")
		}),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	nc, err := nats.Connect(cfg.URL(), opts...)
	if err != nil {
		return nil, fmt.Errorf("bus: connect %s: %w", cfg.URL(), err)
	}
	c.nc = nc
	// the connect callback is delivered asynchronously
	c.syncState(nc)

	return c, nil
}

// linkState is the part of *nats.Conn that reports live connectivity.
type linkState interface {
	IsConnected() bool
	ConnectedUrl() string
}

// syncState sets the flag from the link itself. A disconnect delivered
// before this call has already left the flag false.
func (c *Conn) syncState(l linkState) {
	if l.IsConnected() {
		c.onConnected(l.ConnectedUrl())
	}
}

func (c *Conn) onConnected(url string) {
	if c.connected.Swap(true) {
		return
	}
	c.metrics.BusConnected(true)
	c.log.Info().Str("url", url).Msg("bus connected")
}

func (c *Conn) onDisconnected(err error) {
	if !c.connected.Swap(false) {
		return
	}
	c.metrics.BusConnected(false)
	c.log.Warn().Err(err).Msg("bus disconnected")
}

// Connected reports the last known connectivity state.
func (c *Conn) Connected() bool { return c.connected.Load() }

// Publish sends payload on subject tagged with a message id.
func (c *Conn) Publish(subject string, payload []byte, id string) error {
	msg := nats.NewMsg(subject)
	msg.Data = payload
	if id != "" {
		msg.Header.Set(nats.MsgIdHdr, id)
	}
	return c.nc.PublishMsg(msg)
}

// Close drains pending writes and closes the connection.
func (c *Conn) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.FlushTimeout(time.Second); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		c.log.Debug().Err(err).Msg("bus flush on close")
	}
	c.nc.Close()
	return nil
}
