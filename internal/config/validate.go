package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/crystaldolphin/buswriter/internal/scheduler"
)

var (
	ErrUnknownKind     = errors.New("config: unknown publisher kind")
	ErrMissingField    = errors.New("config: required field is empty")
	ErrInvalidSchedule = errors.New("config: invalid flush schedule")
	ErrInvalidLog      = errors.New("config: invalid log setting")
	ErrIncompatible    = errors.New("config: incompatible publisher settings")
)

// Validate checks that cfg describes a writer that can be built.
func (c *Config) Validate() error {
	if err := c.Writer.Validate(); err != nil {
		return err
	}
	if err := c.Publisher.validate(); err != nil {
		return err
	}
	if c.Flush.Schedule != "" {
		if _, err := scheduler.ParseSpec(c.Flush.Schedule); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, c.Flush.Schedule, err)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLog, c.Log.Format)
	}
	return nil
}

func (p PublisherConfig) validate() error {
	if p.Compress && p.delivers(KindSlack) {
		// Slack webhooks carry JSON text; compressed batches are binary.
		return fmt.Errorf("%w: compress cannot be used with slack", ErrIncompatible)
	}
	if p.Kind != KindFanOut {
		return p.validateKind(p.Kind)
	}
	if len(p.Targets) == 0 {
		return fmt.Errorf("%w: publisher.targets", ErrMissingField)
	}
	for _, k := range p.Targets {
		if k == KindFanOut {
			return fmt.Errorf("%w: fanout cannot target itself", ErrUnknownKind)
		}
		if err := p.validateKind(k); err != nil {
			return err
		}
	}
	return nil
}

// delivers reports whether batches reach a transport of the given kind.
func (p PublisherConfig) delivers(kind string) bool {
	if p.Kind != KindFanOut {
		return p.Kind == kind
	}
	return slices.Contains(p.Targets, kind)
}

func (p PublisherConfig) validateKind(kind string) error {
	switch kind {
	case KindBus:
		return nil
	case KindWebSocket:
		if p.WebSocket.URL == "" {
			return fmt.Errorf("%w: publisher.websocket.url", ErrMissingField)
		}
	case KindRedis:
		if p.Redis.URL == "" {
			return fmt.Errorf("%w: publisher.redis.url", ErrMissingField)
		}
		if p.Redis.Channel == "" {
			return fmt.Errorf("%w: publisher.redis.channel", ErrMissingField)
		}
	case KindSlack:
		if p.Slack.WebhookURL == "" {
			return fmt.Errorf("%w: publisher.slack.webhookUrl", ErrMissingField)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}
