// Package config defines the configuration schema for buswriter.
//
// The file is YAML (~/.buswriter/config.yaml by default); every field can be
// overridden by a BUSWRITER_-prefixed environment variable, e.g.
// BUSWRITER_WRITER_BUFFER_THRESHOLD or BUSWRITER_PUBLISHER_KIND.
package config

import (
	"github.com/crystaldolphin/buswriter/internal/bus"
	"github.com/crystaldolphin/buswriter/internal/writer"
)

// Publisher kinds understood by PublisherConfig.Kind.
const (
	KindBus       = "bus"
	KindWebSocket = "websocket"
	KindRedis     = "redis"
	KindSlack     = "slack"
	KindFanOut    = "fanout"
)

// BusConfig configures the in-process message bus.
type BusConfig struct {
	Capacity int `yaml:"capacity" env:"CAPACITY"`
}

// WebSocketConfig configures the WebSocket publisher.
type WebSocketConfig struct {
	URL     string            `yaml:"url" env:"URL"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// RedisConfig configures the Redis Pub/Sub publisher.
type RedisConfig struct {
	URL     string `yaml:"url" env:"URL"`
	Channel string `yaml:"channel" env:"CHANNEL"`
}

// SlackConfig configures the Slack incoming-webhook publisher.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl" env:"WEBHOOK_URL"`
}

// PublisherConfig selects and configures the transport batches are flushed to.
type PublisherConfig struct {
	Kind string `yaml:"kind" env:"KIND"`
	// Compress snappy-encodes every batch before it reaches the transport.
	Compress bool `yaml:"compress" env:"COMPRESS"`
	// Targets lists the kinds a fanout publisher delivers to.
	Targets []string `yaml:"targets" env:"TARGETS" envSeparator:","`

	Bus       BusConfig       `yaml:"bus" envPrefix:"BUS_"`
	WebSocket WebSocketConfig `yaml:"websocket" envPrefix:"WEBSOCKET_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Slack     SlackConfig     `yaml:"slack" envPrefix:"SLACK_"`
}

func defaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Kind:      KindBus,
		Targets:   []string{},
		Bus:       BusConfig{Capacity: bus.DefaultCapacity},
		WebSocket: WebSocketConfig{URL: "ws://localhost:18791/batches"},
		Redis:     RedisConfig{URL: "redis://localhost:6379/0", Channel: "buswriter"},
	}
}

// FlushConfig controls the optional periodic flush.
type FlushConfig struct {
	// Schedule is a cron spec ("*/10 * * * * *", "@every 5s"); empty disables it.
	Schedule string `yaml:"schedule" env:"SCHEDULE"`
}

// SinkConfig holds the listen address of the `sink` command.
type SinkConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

func defaultSinkConfig() SinkConfig {
	return SinkConfig{Host: "0.0.0.0", Port: 18791}
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"FORMAT"` // text | json
}

func defaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// ---- Root config -----------------------------------------------------------

// Config is the root configuration object.
type Config struct {
	Writer    writer.Settings `yaml:"writer" envPrefix:"WRITER_"`
	Publisher PublisherConfig `yaml:"publisher" envPrefix:"PUBLISHER_"`
	Flush     FlushConfig     `yaml:"flush" envPrefix:"FLUSH_"`
	Sink      SinkConfig      `yaml:"sink" envPrefix:"SINK_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Writer:    writer.DefaultSettings(),
		Publisher: defaultPublisherConfig(),
		Sink:      defaultSinkConfig(),
		Log:       defaultLogConfig(),
	}
}
