package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Batch.MaxOperations != 1024 {
		t.Errorf("Batch.MaxOperations = %d, want 1024", cfg.Batch.MaxOperations)
	}
	if cfg.Server.PathPrefix != "api" {
		t.Errorf("Server.PathPrefix = %q, want %q", cfg.Server.PathPrefix, "api")
	}
	if cfg.Address() != "localhost:8080" {
		t.Errorf("Address() = %q, want %q", cfg.Address(), "localhost:8080")
	}
	if cfg.Auth.Enabled {
		t.Error("Auth should be disabled by default")
	}
	if !cfg.Compression.Enabled {
		t.Error("Compression should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad version", func(c *Config) { c.Version = 2 }, "version"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeoutMs = -1 }, "server"},
		{"no operations", func(c *Config) { c.Batch.MaxOperations = 0 }, "batch.maxOperations"},
		{"no body", func(c *Config) { c.Batch.MaxBodyBytes = 0 }, "batch.maxBodyBytes"},
		{"empty storage", func(c *Config) { c.Storage.Path = " " }, "storage.path"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"auth without hashes", func(c *Config) { c.Auth.Enabled = true }, "auth.tokenHashes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	want := "config error in field 'server.port': must be between 1 and 65535"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Batch.MaxOperations != 1024 {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
	if cfg.Auth.TokenHashes == nil {
		t.Error("TokenHashes should be an empty slice, not nil")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Batch.MaxOperations = 10
	cfg.Auth.Enabled = true
	cfg.Auth.TokenHashes = []string{"$2a$12$abc"}

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, Dir, "config.json")); err != nil {
		t.Fatalf("config.json not written: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", loaded.Server.Port)
	}
	if loaded.Batch.MaxOperations != 10 {
		t.Errorf("Batch.MaxOperations = %d, want 10", loaded.Batch.MaxOperations)
	}
	if !loaded.Auth.Enabled || len(loaded.Auth.TokenHashes) != 1 {
		t.Errorf("Auth = %+v", loaded.Auth)
	}
	if loaded.Server.Host != "localhost" {
		t.Errorf("Server.Host = %q, want default", loaded.Server.Host)
	}
}

func TestLoadConfigFile_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "config.yaml", "server:\n  port: 7001\nbatch:\n  maxOperations: 5\n"},
		{"toml", "config.toml", "[server]\nport = 7001\n\n[batch]\nmaxOperations = 5\n"},
		{"json", "config.json", `{"server": {"port": 7001}, "batch": {"maxOperations": 5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfigFile(path)
			if err != nil {
				t.Fatalf("LoadConfigFile() error = %v", err)
			}
			if cfg.Server.Port != 7001 {
				t.Errorf("Server.Port = %d, want 7001", cfg.Server.Port)
			}
			if cfg.Batch.MaxOperations != 5 {
				t.Errorf("Batch.MaxOperations = %d, want 5", cfg.Batch.MaxOperations)
			}
			if cfg.Logging.Level != "info" {
				t.Errorf("Logging.Level = %q, want default", cfg.Logging.Level)
			}
		})
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfigFile() on a missing file should fail")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("BATCHKIT_SERVER_PORT", "6553")
	t.Setenv("BATCHKIT_LOGGING_FORMAT", "json")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 6553 {
		t.Errorf("Server.Port = %d, want 6553", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}
