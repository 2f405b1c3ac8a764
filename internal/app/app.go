// internal/app/app.go

// Package app wires the poller pipeline for one device:
// session -> scheduler -> executor -> publisher -> bus.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/cnc-poller/internal/bus"
	"github.com/tamzrod/cnc-poller/internal/clock"
	"github.com/tamzrod/cnc-poller/internal/config"
	"github.com/tamzrod/cnc-poller/internal/device"
	dmodbus "github.com/tamzrod/cnc-poller/internal/device/modbus"
	"github.com/tamzrod/cnc-poller/internal/fields"
	"github.com/tamzrod/cnc-poller/internal/logging"
	"github.com/tamzrod/cnc-poller/internal/metrics"
	"github.com/tamzrod/cnc-poller/internal/poller"
	"github.com/tamzrod/cnc-poller/internal/publisher"
	"github.com/tamzrod/cnc-poller/internal/session"
	"github.com/tamzrod/cnc-poller/internal/status"
)

// Transport is the outbound bus as the app sees it.
type Transport interface {
	publisher.Transport
	Close() error
}

// DialFunc connects the outbound bus. ONE attempt per call.
type DialFunc func(cfg bus.Config, log zerolog.Logger, m *metrics.Metrics) (Transport, error)

// Deps are the collaborators of Run. Zero values select production ones.
type Deps struct {
	Config   *config.Config
	Log      zerolog.Logger
	Open     device.Opener
	Dial     DialFunc
	Clock    clock.Clock
	Registry *prometheus.Registry
}

// ErrStartup wraps failures that happen before the polling loop starts.
var ErrStartup = errors.New("startup failed")

func dialNATS(cfg bus.Config, log zerolog.Logger, m *metrics.Metrics) (Transport, error) {
	c, err := bus.Connect(cfg, log, m)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Run polls until ctx is cancelled (returns nil) or the device session
// is lost (returns that error). Startup failures wrap ErrStartup.
func Run(ctx context.Context, d Deps) error {
	cfg := d.Config
	if cfg == nil {
		return fmt.Errorf("%w: config required", ErrStartup)
	}
	log := d.Log
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	dial := d.Dial
	if dial == nil {
		dial = dialNATS
	}
	open := d.Open
	if open == nil {
		open = dmodbus.Opener(dmodbus.Config{
			Endpoint: cfg.Device.Endpoint(),
			UnitID:   cfg.Device.UnitID,
			Timeout:  cfg.Device.Timeout(),
			Base:     cfg.Device.BaseAddress,
		})
	}

	m := metrics.New(reg)

	// ---- field set ----
	set, err := fields.Build(cfg.FieldSelection())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}

	// ---- outbound bus ----
	tr, err := dial(bus.Config{
		Host:          cfg.Bus.Host,
		Port:          cfg.Bus.Port,
		Name:          cfg.Bus.ClientName,
		Timeout:       time.Duration(cfg.Bus.TimeoutMs) * time.Millisecond,
		ReconnectWait: time.Duration(cfg.Bus.ReconnectWaitMs) * time.Millisecond,
	}, logging.Component(log, "bus"), m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	defer func() {
		if cerr := tr.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("bus close failed")
		}
	}()

	pub, err := publisher.New(publisher.Config{
		Subject:   cfg.Bus.Subject,
		QueueSize: cfg.Publish.QueueSize,
	}, tr, logging.Component(log, "publisher"), m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}

	pollLog := logging.Component(log, "poller")
	exec, err := poller.NewExecutor(set, clk, pollLog, m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	sched, err := poller.NewScheduler(cfg.Poll.Interval(), clk, pollLog, m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	tracker := status.NewTracker(logging.Component(log, "status"), m)

	// ---- metrics listener (bound before the device is touched) ----
	var metricsLn net.Listener
	if cfg.Metrics.Addr != "" {
		metricsLn, err = net.Listen("tcp", cfg.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("%w: metrics listen %s: %w", ErrStartup, cfg.Metrics.Addr, err)
		}
		defer metricsLn.Close()
	}

	log.Info().
		Str("device", cfg.Device.Endpoint()).
		Str("subject", cfg.Bus.Subject).
		Dur("interval", cfg.Poll.Interval()).
		Strs("fields", set.Names()).
		Msg("starting poller")

	// ---- device session (released after the pipeline drains) ----
	opened := false
	err = session.Run(ctx, open, logging.Component(log, "session"), func(s *session.Session) error {
		opened = true

		g, gctx := errgroup.WithContext(ctx)

		g.Go(pub.Run)

		g.Go(func() error {
			defer pub.Close()
			return sched.Run(gctx, func(context.Context) error {
				h, err := s.Handle()
				if err != nil {
					return err
				}
				rec, err := exec.RunCycle(h)
				if err != nil {
					tracker.Fail(err)
					return err
				}
				tracker.Observe(rec)
				// errors are logged by Submit
				_ = pub.Submit(rec)
				return nil
			})
		})

		if metricsLn != nil {
			serveMetrics(g, gctx, metricsLn, reg, log)
		}

		return g.Wait()
	})

	if !opened && err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	if err != nil {
		return err
	}

	log.Info().Msg("poller stopped")
	return nil
}

func serveMetrics(g *errgroup.Group, ctx context.Context, ln net.Listener, reg *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
