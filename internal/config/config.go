package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"batchkit/internal/logging"
)

// Dir is the per-project directory holding config.json and the default database
const Dir = ".batchkit"

// EnvPrefix prefixes environment overrides, e.g. BATCHKIT_SERVER_PORT
const EnvPrefix = "BATCHKIT"

// Config represents the complete batchkit configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Server      ServerConfig      `json:"server" mapstructure:"server"`
	Batch       BatchConfig       `json:"batch" mapstructure:"batch"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
	Auth        AuthConfig        `json:"auth" mapstructure:"auth"`
	Compression CompressionConfig `json:"compression" mapstructure:"compression"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host              string `json:"host" mapstructure:"host"`
	Port              int    `json:"port" mapstructure:"port"`
	PathPrefix        string `json:"pathPrefix" mapstructure:"pathPrefix"`
	ReadTimeoutMs     int    `json:"readTimeoutMs" mapstructure:"readTimeoutMs"`
	WriteTimeoutMs    int    `json:"writeTimeoutMs" mapstructure:"writeTimeoutMs"`
	ShutdownTimeoutMs int    `json:"shutdownTimeoutMs" mapstructure:"shutdownTimeoutMs"`
}

// BatchConfig limits what a single batch request may contain
type BatchConfig struct {
	MaxOperations int   `json:"maxOperations" mapstructure:"maxOperations"`
	MaxBodyBytes  int64 `json:"maxBodyBytes" mapstructure:"maxBodyBytes"`
}

// StorageConfig contains the SQLite location
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// AuthConfig enables bearer-token auth. TokenHashes are bcrypt hashes
// produced by `batchkit token new`.
type AuthConfig struct {
	Enabled     bool     `json:"enabled" mapstructure:"enabled"`
	TokenHashes []string `json:"tokenHashes" mapstructure:"tokenHashes"`
}

// CompressionConfig toggles gzip response compression
type CompressionConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			PathPrefix:        "api",
			ReadTimeoutMs:     30000,
			WriteTimeoutMs:    30000,
			ShutdownTimeoutMs: 10000,
		},
		Batch: BatchConfig{
			MaxOperations: 1024,
			MaxBodyBytes:  10 << 20,
		},
		Storage: StorageConfig{
			Path: filepath.Join(Dir, "batchkit.db"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Auth: AuthConfig{
			TokenHashes: []string{},
		},
		Compression: CompressionConfig{
			Enabled: true,
		},
	}
}

// Address returns host:port for the HTTP listener
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LoadConfig loads configuration from <root>/.batchkit/config.json.
// A missing file yields the defaults; BATCHKIT_* variables override either.
func LoadConfig(root string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, Dir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadConfigFile loads an explicit config file. The format follows the
// extension: .json, .yaml/.yml or .toml.
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return unmarshal(v)
}

// newViper registers every default so env overrides apply even without a file
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.pathPrefix", d.Server.PathPrefix)
	v.SetDefault("server.readTimeoutMs", d.Server.ReadTimeoutMs)
	v.SetDefault("server.writeTimeoutMs", d.Server.WriteTimeoutMs)
	v.SetDefault("server.shutdownTimeoutMs", d.Server.ShutdownTimeoutMs)
	v.SetDefault("batch.maxOperations", d.Batch.MaxOperations)
	v.SetDefault("batch.maxBodyBytes", d.Batch.MaxBodyBytes)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.tokenHashes", d.Auth.TokenHashes)
	v.SetDefault("compression.enabled", d.Compression.Enabled)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Auth.TokenHashes == nil {
		cfg.Auth.TokenHashes = []string{}
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.batchkit/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Server.ReadTimeoutMs < 0 || c.Server.WriteTimeoutMs < 0 || c.Server.ShutdownTimeoutMs < 0 {
		return &ConfigError{Field: "server", Message: "timeouts must not be negative"}
	}
	if c.Batch.MaxOperations < 1 {
		return &ConfigError{Field: "batch.maxOperations", Message: "must be positive"}
	}
	if c.Batch.MaxBodyBytes < 1 {
		return &ConfigError{Field: "batch.maxBodyBytes", Message: "must be positive"}
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return &ConfigError{Field: "storage.path", Message: "must not be empty"}
	}
	switch logging.Format(c.Logging.Format) {
	case logging.JSONFormat, logging.HumanFormat:
	default:
		return &ConfigError{Field: "logging.format", Message: "must be json or human"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}
	if c.Auth.Enabled && len(c.Auth.TokenHashes) == 0 {
		return &ConfigError{Field: "auth.tokenHashes", Message: "auth is enabled but no token hashes are configured"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
