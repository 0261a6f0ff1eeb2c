package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kinesis-dev/kinesis/internal/errors"
	"github.com/kinesis-dev/kinesis/pkg/snapshot"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "kinesis.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "kinesis.yaml"

	// DefaultPort is the default live server port.
	DefaultPort = 7070

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"

	// DefaultComponent is mounted for connections that don't name one.
	DefaultComponent = "counter"

	// DefaultSnapshotDir is where the disk backend keeps snapshots.
	DefaultSnapshotDir = "snapshots"

	// DefaultWriteTimeout bounds a single WebSocket write.
	DefaultWriteTimeout = "10s"

	// DefaultMaxFrameSize bounds a single inbound frame payload.
	DefaultMaxFrameSize = 64 * 1024
)

// Config represents the complete kinesis configuration.
type Config struct {
	// Name is the application name shown in the served page title.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server contains live server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Log contains logger configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Snapshot contains snapshot storage configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Component is the default component mounted per connection.
	Component string `json:"component,omitempty" yaml:"component,omitempty"`

	// AllowedOrigins lists origins accepted for WebSocket upgrades.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`

	// WriteTimeout bounds a single WebSocket write (e.g., "10s").
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// MaxFrameSize bounds an inbound frame payload in bytes.
	MaxFrameSize int `json:"maxFrameSize,omitempty" yaml:"maxFrameSize,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records runtime metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled records spans through the global tracer provider.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName names the instrumentation scope.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// SnapshotConfig contains snapshot storage settings.
type SnapshotConfig struct {
	// Backend is disk or s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the disk backend directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// S3 configures the s3 backend.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config contains S3 bucket settings.
type S3Config struct {
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle       bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty" yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" yaml:"secretAccessKey,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "kinesis",
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			Component:    DefaultComponent,
			WriteTimeout: DefaultWriteTimeout,
			MaxFrameSize: DefaultMaxFrameSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "kinesis",
		},
		Tracing: TracingConfig{
			TracerName: "github.com/kinesis-dev/kinesis",
		},
		Snapshot: SnapshotConfig{
			Backend: "disk",
			Dir:     DefaultSnapshotDir,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for kinesis.json, then kinesis.yaml, then kinesis.yml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "kinesis.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("K302").
		WithDetail("No %s or %s found in %s", ConfigFileName, YAMLConfigFileName, dir)
}

// LoadFile reads configuration from the specified file path.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("K302").WithDetail("reading %s", path).Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("K302").
			WithDetail("Failed to parse %s", filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension says so.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("K302").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("K302").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Component == "" {
		c.Server.Component = DefaultComponent
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.MaxFrameSize == 0 {
		c.Server.MaxFrameSize = DefaultMaxFrameSize
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "kinesis"
	}

	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = "disk"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("K301").
			WithDetail("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		return errors.New("K301").
			WithDetail("server.writeTimeout %q is not a duration", c.Server.WriteTimeout).
			Wrap(err)
	}
	if c.Server.MaxFrameSize < 0 {
		return errors.New("K301").WithDetail("server.maxFrameSize must not be negative")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("K301").
			WithDetail("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("K301").
			WithDetail("log.format %q is not one of text, json", c.Log.Format)
	}
	switch c.Snapshot.Backend {
	case "disk":
	case "s3":
		if c.Snapshot.S3.Bucket == "" {
			return errors.New("K301").
				WithDetail("snapshot.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("K301").
			WithDetail("snapshot.backend %q is not one of disk, s3", c.Snapshot.Backend)
	}
	return nil
}

// Address returns the listen address for the live server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.WriteTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultWriteTimeout)
	}
	return d
}

// SnapshotDir returns the disk backend directory, resolved against the
// config file's directory when relative.
func (c *Config) SnapshotDir() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// SnapshotStore opens the configured snapshot backend.
func (c *Config) SnapshotStore() (snapshot.Store, error) {
	switch c.Snapshot.Backend {
	case "s3":
		s3cfg := c.Snapshot.S3
		client := snapshot.NewS3Client(snapshot.S3Config{
			Bucket:          s3cfg.Bucket,
			Prefix:          s3cfg.Prefix,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			PathStyle:       s3cfg.PathStyle,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		return snapshot.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix), nil
	case "", "disk":
		store, err := snapshot.NewDiskStore(c.SnapshotDir())
		if err != nil {
			return nil, errors.New("K303").WithOp("snapshot.open").Wrap(err)
		}
		return store, nil
	default:
		return nil, errors.New("K301").
			WithDetail("snapshot.backend %q is not one of disk, s3", c.Snapshot.Backend)
	}
}

// NewLogger builds the process logger described by the Log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "kinesis.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
