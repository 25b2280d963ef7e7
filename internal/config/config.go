// Package config holds the storefront host configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

// Analytics brokers.
const (
	BrokerLog   = "log"
	BrokerNats  = "nats"
	BrokerKafka = "kafka"
)

var _ configloader.Validator = (*Config)(nil)
var _ configloader.Defaulter = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Storage    config.StorageConfig    `koanf:"storage"`
	Grpc       config.GrpcServerConfig `koanf:"grpc"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Kafka      config.KafkaConfig      `koanf:"kafka"`
	Webhook    WebhookConfig           `koanf:"webhook"`
	Analytics  AnalyticsConfig         `koanf:"analytics"`
	Hooks      HooksConfig             `koanf:"hooks"`
}

// WebhookConfig configures the order-sync webhook client.
type WebhookConfig struct {
	Timeout        time.Duration               `koanf:"timeout"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// AnalyticsConfig selects where purchase events are published.
type AnalyticsConfig struct {
	Broker string `koanf:"broker"`
	// Stream is the JetStream stream created for the purchase subject.
	Stream string `koanf:"stream"`
}

// HooksConfig bounds each order placement side effect.
type HooksConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Defaults are applied before config.yaml, .env and the environment.
func (c *Config) Defaults() map[string]any {
	return map[string]any{
		"server.port":                                8080,
		"server.maxheaderbytes":                      1 << 20,
		"server.timeout.read":                        "5s",
		"server.timeout.write":                       "10s",
		"server.timeout.idle":                        "60s",
		"server.timeout.readheader":                  "2s",
		"log.level":                                  "info",
		"pprof.addr":                                 "localhost:6060",
		"shutdown.timeout":                           "15s",
		"storage.driver":                             config.StorageLevelDB,
		"storage.path":                               "data/storefront",
		"storage.timeout":                            "5s",
		"grpc.port":                                  9090,
		"telemetry.metrics.enabled":                  true,
		"telemetry.metrics.path":                     "/metrics",
		"telemetry.traces.otlphttp.timeout":          "5s",
		"nats.timeout":                               "5s",
		"nats.duplicatewindow":                       "2m",
		"kafka.clientid":                             "storefront",
		"kafka.timeout":                              "5s",
		"webhook.timeout":                            "10s",
		"webhook.circuitbreaker.consecutivefailures": 5,
		"webhook.circuitbreaker.errorratepercent":    60,
		"webhook.circuitbreaker.opentimeout":         "30s",
		"webhook.circuitbreaker.halfopenrequests":    1,
		"analytics.broker":                           BrokerLog,
		"analytics.stream":                           "STOREFRONT_ANALYTICS",
		"hooks.timeout":                              "15s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Grpc.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Side Effects ---\n")
	b.WriteString(fmt.Sprintf("  webhook.timeout: %s\n", c.Webhook.Timeout))
	b.WriteString(fmt.Sprintf("  analytics.broker: %s\n", c.Analytics.Broker))
	b.WriteString(fmt.Sprintf("  analytics.stream: %s\n", c.Analytics.Stream))
	b.WriteString(fmt.Sprintf("  hooks.timeout: %s\n", c.Hooks.Timeout))
	b.WriteString(c.Webhook.CircuitBreaker.String())
	switch c.Analytics.Broker {
	case BrokerNats:
		b.WriteString(c.Nats.String())
	case BrokerKafka:
		b.WriteString(c.Kafka.String())
	}

	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Grpc.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if c.Webhook.Timeout <= 0 {
		return fmt.Errorf("webhook timeout is not configured")
	}
	if err := c.Webhook.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if c.Hooks.Timeout <= 0 {
		return fmt.Errorf("hooks timeout is not configured")
	}
	switch c.Analytics.Broker {
	case BrokerLog:
	case BrokerNats:
		if c.Analytics.Stream == "" {
			return fmt.Errorf("analytics stream is required for the nats broker")
		}
		if err := c.Nats.Validate(); err != nil {
			return err
		}
	case BrokerKafka:
		if err := c.Kafka.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown analytics broker %q: must be one of log, nats, kafka", c.Analytics.Broker)
	}
	return nil
}
