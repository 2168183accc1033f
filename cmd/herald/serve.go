package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/server"
	"github.com/cuemby/herald/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference server of record",
	Long: `Run Herald's reference server of record: a bbolt-backed notification
store behind the HTTP API that sync engines poll.

Examples:
  # Development mode (header-based identity)
  herald serve --addr :8080 --data-dir ./data

  # With JWT authentication
  herald serve --auth-secret my-secret`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "YAML config file")
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
	serveCmd.Flags().String("auth-secret", "", "JWT secret; empty disables auth (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Server.DataDir = dataDir
	}
	if secret, _ := cmd.Flags().GetString("auth-secret"); secret != "" {
		cfg.Server.AuthSecret = secret
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})

	if err := os.MkdirAll(cfg.Server.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	st, err := store.NewBoltStore(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	defer st.Close()

	srv := server.NewServer(st, cfg.Server)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Server.Addr); err != nil {
			errCh <- fmt.Errorf("server error: %v", err)
		}
	}()

	fmt.Printf("✓ Server of record listening on %s\n", cfg.Server.Addr)
	fmt.Println("Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		return err
	}

	srv.Stop()
	fmt.Println("✓ Shutdown complete")
	return nil
}

// loadConfig reads the --config file when given, defaults otherwise
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %v", err)
	}
	return cfg, nil
}
