package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bardlabs/minstrel/config"
	"github.com/bardlabs/minstrel/examples"
)

// TestConfigTemplateFields verifies that the embedded minstrel.yaml template:
// - Parses into config.Config without unknown fields
// - Points at a valid WebSocket endpoint
// - Uses the default values from config/defaults.go
func TestConfigTemplateFields(t *testing.T) {
	content, err := examples.Config()
	require.NoError(t, err, "failed to load config template")

	var cfg config.Config
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true) // Error on unknown fields
	err = decoder.Decode(&cfg)
	require.NoError(t, err, "minstrel.yaml contains unknown fields or invalid YAML")

	// Verify the endpoint
	assert.NoError(t, config.ValidateServerURL(cfg.ServerURL), "server_url should be a valid ws endpoint")
	assert.Equal(t, config.DefaultServerURL, cfg.ServerURL,
		"server_url should match DefaultServerURL")

	// Credentials and the client id are left for the player or the loader
	assert.Empty(t, cfg.Username, "username should be empty in the template")
	assert.Empty(t, cfg.Password, "password should be empty in the template")
	assert.Empty(t, cfg.ClientID, "client_id should be generated at load time")

	// Verify defaults match config/defaults.go
	assert.Equal(t, config.DefaultPollInterval, cfg.PollInterval,
		"poll_interval should match DefaultPollInterval")
	assert.Equal(t, config.DefaultTickInterval, cfg.TickInterval,
		"tick_interval should match DefaultTickInterval")
	assert.Equal(t, config.DefaultDialTimeout, cfg.DialTimeout,
		"dial_timeout should match DefaultDialTimeout")
	assert.Equal(t, config.DefaultWriteTimeout, cfg.WriteTimeout,
		"write_timeout should match DefaultWriteTimeout")
	assert.Equal(t, config.DefaultSendQueue, cfg.SendQueue,
		"send_queue should match DefaultSendQueue")
	assert.False(t, cfg.Debug, "debug should be off in the template")
}

// TestGeneratedTemplateValidates verifies the template passes the same
// validation the loader applies after filling defaults.
func TestGeneratedTemplateValidates(t *testing.T) {
	content, err := examples.Config()
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(content, &cfg))

	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate(), "template should validate once defaults fill the gaps")
}
