// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a valid config quickly
func valid() *Config {
	return Default()
}

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty device host", func(c *Config) { c.Device.Host = " " }, "device.host"},
		{"device port", func(c *Config) { c.Device.Port = 70000 }, "device.port"},
		{"device timeout", func(c *Config) { c.Device.TimeoutMs = -1 }, "device.timeout_ms"},
		{"bus port", func(c *Config) { c.Bus.Port = -3 }, "bus.port"},
		{"wildcard subject", func(c *Config) { c.Bus.Subject = "cnc.*" }, "literal subject"},
		{"empty token subject", func(c *Config) { c.Bus.Subject = "cnc..data" }, "empty token"},
		{"zero interval", func(c *Config) { c.Poll.IntervalSeconds = -0.5 }, "interval_seconds"},
		{"unknown profile", func(c *Config) { c.Fields.Profile = "turbo" }, "unknown profile"},
		{"unknown include", func(c *Config) { c.Fields.Include = []string{"id", "temperature"} }, "unknown field"},
		{"everything excluded", func(c *Config) {
			c.Fields.Include = []string{"id"}
			c.Fields.Exclude = []string{"id"}
		}, "empty"},
		{"queue size", func(c *Config) { c.Publish.QueueSize = -1 }, "queue_size"},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = "9100" }, "metrics.addr"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	cfg.Fields.Profile = " LITE "
	cfg.Log.Level = "DEBUG"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fields.Profile != " LITE " || cfg.Log.Level != "DEBUG" {
		t.Fatalf("Validate mutated config: %+v", cfg)
	}
}

func TestNormalize(t *testing.T) {
	cfg := valid()
	cfg.Device.Host = " 10.0.0.5 "
	cfg.Fields.Profile = " LITE "
	cfg.Fields.Exclude = []string{" Speed"}
	cfg.Log.Level = "DEBUG"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(cfg)

	if cfg.Device.Host != "10.0.0.5" {
		t.Fatalf("host not trimmed: %q", cfg.Device.Host)
	}
	if cfg.Fields.Profile != "lite" {
		t.Fatalf("profile not normalized: %q", cfg.Fields.Profile)
	}
	if len(cfg.Fields.Exclude) != 1 || cfg.Fields.Exclude[0] != "speed" {
		t.Fatalf("exclude not normalized: %v", cfg.Fields.Exclude)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level not normalized: %q", cfg.Log.Level)
	}

	// Normalize(nil) is a no-op
	Normalize(nil)
}
