// internal/config/config.go
package config

import (
	"math"
	"net"
	"strconv"
	"time"

	"github.com/tamzrod/cnc-poller/internal/logging"
)

type Config struct {
	Device  DeviceConfig   `yaml:"device"`
	Bus     BusConfig      `yaml:"bus"`
	Poll    PollConfig     `yaml:"poll"`
	Fields  FieldsConfig   `yaml:"fields"`
	Publish PublishConfig  `yaml:"publish"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Log     logging.Config `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// First holding register of the gateway's CNC block.
	BaseAddress uint16 `yaml:"base_address"`
}

func (d DeviceConfig) Endpoint() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// ---- BUS ----

type BusConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Subject         string `yaml:"subject"`
	ClientName      string `yaml:"client_name"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	ReconnectWaitMs int    `yaml:"reconnect_wait_ms"`
}

// ---- POLL ----

type PollConfig struct {
	// Start-to-start period in seconds; fractions allowed.
	IntervalSeconds float64 `yaml:"interval_seconds"`
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(math.Round(p.IntervalSeconds * float64(time.Second)))
}

// ---- FIELDS ----

// FieldsConfig selects what is polled. A non-empty include list wins
// over profile; exclude is applied last.
type FieldsConfig struct {
	Profile string   `yaml:"profile"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// ---- PUBLISH ----

type PublishConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// ---- METRICS ----

type MetricsConfig struct {
	// Listen address for /metrics. Empty disables the listener.
	Addr string `yaml:"addr"`
}
