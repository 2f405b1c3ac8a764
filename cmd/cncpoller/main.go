// cmd/cncpoller/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tamzrod/cnc-poller/internal/app"
	"github.com/tamzrod/cnc-poller/internal/config"
	"github.com/tamzrod/cnc-poller/internal/fields"
	"github.com/tamzrod/cnc-poller/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags holds command line overrides. Only flags the user set are applied.
type flags struct {
	configPath string
	ip         string
	port       int
	busHost    string
	busPort    int
	subject    string
	interval   float64
	fields     []string
	exclude    []string
	profile    string
	logLevel   string
	logFormat  string
	metrics    string
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "cncpoller",
		Short:         "Poll a CNC controller and publish telemetry records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "YAML config file (defaults are used when empty)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Open the device session and poll until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPoller(cmd, &f)
		},
	}
	addOverrideFlags(run, &f)

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the config, then print the resolved field set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd, &f)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			set, err := fields.Build(cfg.FieldSelection())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "device:   %s (unit %d, base %d)\n", cfg.Device.Endpoint(), cfg.Device.UnitID, cfg.Device.BaseAddress)
			fmt.Fprintf(out, "bus:      %s:%d subject=%s\n", cfg.Bus.Host, cfg.Bus.Port, cfg.Bus.Subject)
			fmt.Fprintf(out, "interval: %s\n", cfg.Poll.Interval())
			fmt.Fprintf(out, "fields:   %s\n", strings.Join(set.Names(), ","))
			return nil
		},
	}
	addOverrideFlags(validate, &f)

	list := &cobra.Command{
		Use:   "fields",
		Short: "List known fields and profiles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "fields:")
			for _, name := range fields.Catalog() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "profiles:")
			for _, p := range fields.Profiles() {
				names, _ := fields.Profile(p)
				marker := ""
				if p == fields.DefaultProfile {
					marker = " (default)"
				}
				fmt.Fprintf(out, "  %s%s: %s\n", p, marker, strings.Join(names, ","))
			}
		},
	}

	root.AddCommand(run, validate, list)
	return root
}

func addOverrideFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()
	fs.StringVar(&f.ip, "ip", "", "device host")
	fs.IntVar(&f.port, "port", 0, "device port")
	fs.StringVar(&f.busHost, "bus-host", "", "NATS host")
	fs.IntVar(&f.busPort, "bus-port", 0, "NATS port")
	fs.StringVar(&f.subject, "subject", "", "NATS subject records are published on")
	fs.Float64Var(&f.interval, "interval", 0, "poll interval in seconds")
	fs.StringSliceVar(&f.fields, "fields", nil, "comma separated fields to poll (overrides profile)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "comma separated fields to leave out")
	fs.StringVar(&f.profile, "profile", "", "field profile")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
	fs.StringVar(&f.logFormat, "log-format", "", "log format (json|console)")
	fs.StringVar(&f.metrics, "metrics-addr", "", "listen address for /metrics")
}

// resolve loads the config file, applies flag overrides, validates and
// normalizes.
func resolve(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("ip") {
		cfg.Device.Host = f.ip
	}
	if fs.Changed("port") {
		cfg.Device.Port = f.port
	}
	if fs.Changed("bus-host") {
		cfg.Bus.Host = f.busHost
	}
	if fs.Changed("bus-port") {
		cfg.Bus.Port = f.busPort
	}
	if fs.Changed("subject") {
		cfg.Bus.Subject = f.subject
	}
	if fs.Changed("interval") {
		cfg.Poll.IntervalSeconds = f.interval
	}
	if fs.Changed("fields") {
		cfg.Fields.Include = f.fields
	}
	if fs.Changed("exclude") {
		cfg.Fields.Exclude = f.exclude
	}
	if fs.Changed("profile") {
		cfg.Fields.Profile = f.profile
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if fs.Changed("metrics-addr") {
		cfg.Metrics.Addr = f.metrics
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func runPoller(cmd *cobra.Command, f *flags) error {
	cfg, err := resolve(cmd, f)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Deps{
		Config:   cfg,
		Log:      log,
		Registry: reg,
	}); err != nil {
		log.Error().Err(err).Msg("poller exited")
		return err
	}
	return nil
}
