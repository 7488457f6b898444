package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values applied to fields left unset by the file and environment.
const (
	// DefaultServerURL is the authority's WebSocket endpoint for local play.
	DefaultServerURL = "ws://localhost:8000/ws"

	// DefaultPollInterval is the progress poll cadence in seconds. One second
	// matches the granularity of the authority's activity timer.
	DefaultPollInterval = 1.0

	// DefaultTickInterval is how often the cooperative event pump runs.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultDialTimeout is the default WebSocket dial timeout.
	DefaultDialTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default outbound frame write timeout.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultSendQueue is the default outbound frame queue depth.
	DefaultSendQueue = 64
)

// GenerateClientID generates a new UUID for use as a client identifier.
func GenerateClientID() string {
	return uuid.New().String()
}

// ApplyDefaults fills zero-valued fields with the Default* values and
// generates a client ID when none is configured. It reports whether an ID
// was generated.
func (c *Config) ApplyDefaults() bool {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.SendQueue == 0 {
		c.SendQueue = DefaultSendQueue
	}

	if c.ClientID == "" {
		c.ClientID = GenerateClientID()
		return true
	}
	return false
}
