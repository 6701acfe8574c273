package config

import "fmt"

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// LogsToken protects the route log endpoint when set.
	LogsToken string `json:"logs_token"`
	// ShutdownTimeoutSeconds bounds the graceful shutdown.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
