// internal/config/validate.go
package config

import (
	"fmt"
	"math"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/fields"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Device.Host) == "" {
		return fmt.Errorf("device.host is required")
	}
	if err := checkPort("device.port", cfg.Device.Port); err != nil {
		return err
	}
	if cfg.Device.TimeoutMs <= 0 {
		return fmt.Errorf("device.timeout_ms must be > 0, got %d", cfg.Device.TimeoutMs)
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Bus.Host) == "" {
		return fmt.Errorf("bus.host is required")
	}
	if err := checkPort("bus.port", cfg.Bus.Port); err != nil {
		return err
	}
	if err := checkSubject(strings.TrimSpace(cfg.Bus.Subject)); err != nil {
		return err
	}
	if cfg.Bus.TimeoutMs < 0 || cfg.Bus.ReconnectWaitMs < 0 {
		return fmt.Errorf("bus timeouts must not be negative")
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	iv := cfg.Poll.IntervalSeconds
	if math.IsNaN(iv) || math.IsInf(iv, 0) || iv <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0, got %v", iv)
	}
	if cfg.Poll.Interval() <= 0 {
		return fmt.Errorf("poll.interval_seconds %v is below clock resolution", iv)
	}

	// ------------------------------------------------------------
	// FIELDS (resolved the same way the runtime resolves them)
	// ------------------------------------------------------------

	if _, err := fields.Build(fieldSelection(cfg.Fields)); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// PUBLISH / METRICS / LOG
	// ------------------------------------------------------------

	if cfg.Publish.QueueSize < 1 {
		return fmt.Errorf("publish.queue_size must be >= 1, got %d", cfg.Publish.QueueSize)
	}

	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
	}

	if lvl := strings.ToLower(strings.TrimSpace(cfg.Log.Level)); lvl != "" {
		if _, err := zerolog.ParseLevel(lvl); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Output)) {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("log.output must be stdout or stderr, got %q", cfg.Log.Output)
	}

	return nil
}

func checkPort(name string, p int) error {
	if p < 1 || p > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", name, p)
	}
	return nil
}

// checkSubject rejects empty tokens, whitespace and wildcards.
func checkSubject(s string) error {
	if s == "" {
		return fmt.Errorf("bus.subject is required")
	}
	for _, tok := range strings.Split(s, ".") {
		if tok == "" {
			return fmt.Errorf("bus.subject %q has an empty token", s)
		}
		if tok == "*" || tok == ">" || strings.ContainsAny(tok, " \t\r\n") {
			return fmt.Errorf("bus.subject %q must be a literal subject", s)
		}
	}
	return nil
}

// fieldSelection maps config onto fields.Selection, tolerating case and
// surrounding spaces that Normalize will strip.
func fieldSelection(fc FieldsConfig) fields.Selection {
	clean := func(in []string) []string {
		if len(in) == 0 {
			return nil
		}
		out := make([]string, 0, len(in))
		for _, s := range in {
			out = append(out, strings.ToLower(strings.TrimSpace(s)))
		}
		return out
	}
	return fields.Selection{
		Profile: strings.ToLower(strings.TrimSpace(fc.Profile)),
		Include: clean(fc.Include),
		Exclude: clean(fc.Exclude),
	}
}

// FieldSelection returns the selection the runtime polls.
func (c *Config) FieldSelection() fields.Selection {
	return fieldSelection(c.Fields)
}
