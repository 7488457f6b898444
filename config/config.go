package config

import (
	"fmt"
	"net/url"
	"time"
)

// EnvPrefix is the prefix of every environment variable the client reads.
const EnvPrefix = "MINSTREL_"

// Config holds every tunable of the minstrel client. Values come from the
// YAML file first, MINSTREL_* environment variables override them, and
// defaults fill whatever is still zero.
type Config struct {
	// ServerURL is the authority's WebSocket endpoint, e.g. ws://localhost:8000/ws.
	ServerURL string `yaml:"server_url" env:"MINSTREL_SERVER_URL"`

	// Username and Password are the credentials offered by /login when none
	// are typed explicitly. Both are usually supplied via the environment or
	// a .env file rather than the config file.
	Username string `yaml:"username" env:"MINSTREL_USERNAME"`
	Password string `yaml:"password" env:"MINSTREL_PASSWORD"`

	// ClientID identifies this client instance in logs. Generated when empty.
	ClientID string `yaml:"client_id" env:"MINSTREL_CLIENT_ID"`

	// PollInterval is the progress poll cadence in seconds while an activity
	// is running.
	PollInterval float64 `yaml:"poll_interval" env:"MINSTREL_POLL_INTERVAL"`

	// TickInterval is how often the cooperative event pump runs.
	TickInterval time.Duration `yaml:"tick_interval" env:"MINSTREL_TICK_INTERVAL"`

	// DialTimeout bounds the WebSocket dial.
	DialTimeout time.Duration `yaml:"dial_timeout" env:"MINSTREL_DIAL_TIMEOUT"`

	// WriteTimeout bounds a single outbound frame write.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"MINSTREL_WRITE_TIMEOUT"`

	// SendQueue is the outbound frame queue depth.
	SendQueue int `yaml:"send_queue" env:"MINSTREL_SEND_QUEUE"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" env:"MINSTREL_DEBUG"`
}

// ValidateServerURL validates that raw is an absolute ws:// or wss:// URL
// with a host. Returns an error if the URL is invalid.
func ValidateServerURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("server_url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", raw, err)
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server_url %q must use the ws or wss scheme, got %q", raw, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("server_url %q has no host", raw)
	}

	return nil
}

// Validate checks the configuration. It expects defaults to have been
// applied already, so zero values are treated as errors rather than
// placeholders.
func (c *Config) Validate() error {
	if err := ValidateServerURL(c.ServerURL); err != nil {
		return err
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %g", c.PollInterval)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout)
	}
	if c.SendQueue < 1 {
		return fmt.Errorf("send_queue must be at least 1, got %d", c.SendQueue)
	}

	return nil
}

// HasCredentials reports whether both a username and a password are
// configured, letting the TUI offer an automatic login.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
