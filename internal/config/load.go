// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for zero values.
const (
	DefaultDeviceHost      = "192.168.0.11"
	DefaultDevicePort      = 502
	DefaultDeviceUnitID    = 1
	DefaultDeviceTimeoutMs = 10000

	DefaultBusHost            = "localhost"
	DefaultBusPort            = 4222
	DefaultBusSubject         = "cnc.telemetry"
	DefaultBusClientName      = "cncpoller"
	DefaultBusTimeoutMs       = 2000
	DefaultBusReconnectWaitMs = 2000

	DefaultIntervalSeconds = 1.0
	DefaultQueueSize       = 4
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML file and fills unset values with defaults.
// An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := &cfg.Device
	if d.Host == "" {
		d.Host = DefaultDeviceHost
	}
	if d.Port == 0 {
		d.Port = DefaultDevicePort
	}
	if d.UnitID == 0 {
		d.UnitID = DefaultDeviceUnitID
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultDeviceTimeoutMs
	}

	b := &cfg.Bus
	if b.Host == "" {
		b.Host = DefaultBusHost
	}
	if b.Port == 0 {
		b.Port = DefaultBusPort
	}
	if b.Subject == "" {
		b.Subject = DefaultBusSubject
	}
	if b.ClientName == "" {
		b.ClientName = DefaultBusClientName
	}
	if b.TimeoutMs == 0 {
		b.TimeoutMs = DefaultBusTimeoutMs
	}
	if b.ReconnectWaitMs == 0 {
		b.ReconnectWaitMs = DefaultBusReconnectWaitMs
	}

	if cfg.Poll.IntervalSeconds == 0 {
		cfg.Poll.IntervalSeconds = DefaultIntervalSeconds
	}
	if cfg.Publish.QueueSize == 0 {
		cfg.Publish.QueueSize = DefaultQueueSize
	}
}
