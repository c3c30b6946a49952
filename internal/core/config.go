package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fcstore/internal/auth"
	"fcstore/internal/storage"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort          = "2000"
	DefaultUploadsDir    = "uploads"
	DefaultLogLevel      = "info"
	DefaultMaxUploadSize = 1 << 30
)

// Environment variables recognised by LoadConfig.
const (
	EnvPort          = "PORT"
	EnvSecret        = "X_FCSTORE_SECRET"
	EnvDataDir       = "FCSTORE_DATA_DIR"
	EnvMetricsListen = "FCSTORE_METRICS_LISTEN"
	EnvLogLevel      = "LOG_LEVEL"
)

type Config struct {
	// Port is the TCP port the HTTP API listens on.
	Port string `yaml:"port"`

	// Secret is the shared secret expected in the x-fcstore-secret header.
	// When empty, requests are not authenticated.
	Secret string `yaml:"secret"`

	// DataDir is the root directory under which all buckets live.
	DataDir string `yaml:"data_dir"`

	// MetricsListen is the address of the Prometheus metrics listener. The
	// listener is disabled when empty.
	MetricsListen string `yaml:"metrics_listen"`

	LogLevel string `yaml:"log_level"`

	// MaxUploadSize caps the size of a single multipart upload body. Writes
	// are not staged, so an upload cut off by the cap leaves a truncated
	// item in its bucket. Zero disables the cap.
	MaxUploadSize int64 `yaml:"max_upload_size"`

	Engine        storage.StorageEngine `yaml:"-"`
	Authenticator auth.AuthEngine       `yaml:"-"`
}

type ConfigOption func(*Config)

func WithStorageEngine(engine storage.StorageEngine) ConfigOption {
	return func(cfg *Config) {
		cfg.Engine = engine
	}
}

func WithAuthEngine(authenticator auth.AuthEngine) ConfigOption {
	return func(cfg *Config) {
		cfg.Authenticator = authenticator
	}
}

func WithDataDir(dataDir string) ConfigOption {
	return func(cfg *Config) {
		cfg.DataDir = dataDir
	}
}

func WithSecret(secret string) ConfigOption {
	return func(cfg *Config) {
		cfg.Secret = secret
	}
}

func WithPort(port string) ConfigOption {
	return func(cfg *Config) {
		cfg.Port = port
	}
}

// WithMaxUploadSize sets MaxUploadSize. An oversized upload is rejected with
// 413 but the bytes received up to the cap stay on disk.
func WithMaxUploadSize(size int64) ConfigOption {
	return func(cfg *Config) {
		cfg.MaxUploadSize = size
	}
}

func NewConfig(opts ...ConfigOption) Config {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DefaultConfig returns the configuration used when nothing is set: port
// 2000, no secret, and an uploads directory next to the running executable.
func DefaultConfig() Config {
	return Config{
		Port:          DefaultPort,
		DataDir:       defaultDataDir(),
		LogLevel:      DefaultLogLevel,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

func defaultDataDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultUploadsDir
	}
	return filepath.Join(filepath.Dir(exe), DefaultUploadsDir)
}

// LoadConfig builds the process configuration. Defaults are overlaid by the
// YAML file at path (skipped when path is empty), which in turn is overlaid
// by environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		cfg.Port = v
	}
	if v, ok := os.LookupEnv(EnvSecret); ok {
		cfg.Secret = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvMetricsListen); ok {
		cfg.MetricsListen = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings that can be checked without touching the
// filesystem.
func (cfg Config) Validate() error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", cfg.Port)
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	if cfg.MaxUploadSize < 0 {
		return fmt.Errorf("invalid max upload size %d", cfg.MaxUploadSize)
	}

	return nil
}
