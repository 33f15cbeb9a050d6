// Package publisher provides bus.Publisher implementations for external
// transports (WebSocket, Redis Pub/Sub, Slack incoming webhooks) and
// decorators that compose them (snappy compression, fan-out, logging).
package publisher
