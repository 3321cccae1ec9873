// SPDX-License-Identifier: MPL-2.0

package server

import (
	"fmt"
	"time"

	"github.com/chatpack/chatpack/pkg/types"
)

const (
	// DefaultHost binds every interface, as the browser UI is meant to be reachable.
	DefaultHost = "0.0.0.0"
	// DefaultPort is the port the browser UI has always talked to.
	DefaultPort types.ListenPort = 3000
	// DefaultMaxBodyBytes caps build request bodies.
	DefaultMaxBodyBytes int64 = 1 << 20
)

// Config holds immutable server settings.
type Config struct {
	// Host is the interface to bind.
	Host string
	// Port is the TCP port; 0 picks a free port.
	Port types.ListenPort
	// StartupTimeout bounds how long Start waits for the listener.
	StartupTimeout time.Duration
	// ShutdownTimeout bounds how long Stop waits for in-flight requests.
	ShutdownTimeout time.Duration
	// MaxBodyBytes rejects larger build requests as malformed.
	MaxBodyBytes int64
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		StartupTimeout:  5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    DefaultMaxBodyBytes,
	}
}

// Addr returns host:port for net.Listen.
func (c Config) Addr() string {
	return c.Port.JoinHost(c.Host)
}

// Validate checks the port and body limit. Zero durations and sizes are
// replaced by defaults in New.
func (c Config) Validate() error {
	if err := c.Port.Validate(); err != nil {
		return fmt.Errorf("server port: %w", err)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("server max body bytes must not be negative, got %d", c.MaxBodyBytes)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = d.StartupTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}
