package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"batchkit/internal/api"
	"batchkit/internal/inventory"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the batchkit HTTP API server. The inventory resource is mounted at
POST /{pathPrefix}/items/batch; GET on the same route lists its operations.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg, os.Stderr)

	db, dispatcher, err := openInventory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	server := api.NewServer(api.OptionsFromConfig(cfg), logger)
	api.Mount(server, inventory.ResourceName, dispatcher)
	server.AddHealthCheck("storage", db.Ping)

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "batchkit HTTP API server listening on http://%s\n", cfg.Address())
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})

		timeout := time.Duration(cfg.Server.ShutdownTimeoutMs) * time.Millisecond
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		logger.Info("Server stopped gracefully", nil)
	}

	return nil
}
