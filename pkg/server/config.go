package server

import (
	"net/http"
	"net/url"
	"slices"
	"time"
)

// Config holds live server settings.
type Config struct {
	// Address is the listen address (e.g., "localhost:7070").
	Address string

	// Title is shown in the served page.
	Title string

	// DefaultComponent is mounted when a connection doesn't name one.
	DefaultComponent string

	// AllowedOrigins lists extra origins accepted for WebSocket upgrades.
	// Same-origin requests are always accepted.
	AllowedOrigins []string

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// ReadTimeout closes sessions that stay silent this long. Zero
	// disables the deadline.
	ReadTimeout time.Duration

	// MaxFrameSize bounds an inbound WebSocket message.
	MaxFrameSize int64

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the upgrader's buffers.
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:          "localhost:7070",
		Title:            "kinesis",
		DefaultComponent: "counter",
		WriteTimeout:     10 * time.Second,
		MaxFrameSize:     64 * 1024,
		ShutdownTimeout:  5 * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.DefaultComponent == "" {
		c.DefaultComponent = d.DefaultComponent
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = d.MaxFrameSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
}

// checkOrigin accepts same-origin upgrades and the configured origins.
func (c *Config) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., non-browser clients)
		return true
	}
	if slices.Contains(c.AllowedOrigins, origin) {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && originURL.Host == r.Host
}
