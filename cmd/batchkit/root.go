package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"batchkit/internal/config"
	"batchkit/internal/inventory"
	"batchkit/internal/logging"
	"batchkit/internal/storage"
	"batchkit/internal/version"
)

var (
	// configFile is an explicit config file; empty means <root>/.batchkit/config.json
	configFile string
	rootDir    string
	logFormat  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "batchkit",
	Short: "batchkit - batch REST operations behind a single endpoint",
	Long: `batchkit accepts an ordered list of list/fetch/create/replace/patch/delete
operations against one resource, runs each through its registered handler and
returns one result per operation in the same order.

It ships an inventory resource backed by SQLite that can be served over HTTP
(batchkit serve) or driven directly from a request file (batchkit run).`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("batchkit version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (.json, .yaml or .toml); default <root>/.batchkit/config.json")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project directory holding .batchkit/")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format override (json, human)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// loadConfig resolves the effective configuration.
// Precedence: flags > BATCHKIT_* env vars > config file > defaults
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadConfigFile(configFile)
	} else {
		cfg, err = config.LoadConfig(rootDir)
	}
	if err != nil {
		return nil, err
	}

	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: out,
	})
}

// storagePath resolves a relative storage path against the project root
func storagePath(cfg *config.Config) string {
	p := cfg.Storage.Path
	if p == storage.MemoryPath || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}

// openInventory opens the item store and builds its dispatcher.
// The caller closes the returned DB.
func openInventory(cfg *config.Config, logger *logging.Logger) (*storage.DB, *inventory.Dispatcher, error) {
	db, err := storage.Open(storagePath(cfg), logger)
	if err != nil {
		return nil, nil, err
	}

	d, err := inventory.NewDispatcher(storage.NewItemStore(db), logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, d, nil
}
