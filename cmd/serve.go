package cmd

import (
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/chew-z/screenshot-translator/internal/server"
	"github.com/spf13/cobra"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 8000
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the translation server",
	Long: `Start the HTTP server exposing /api/translate, /api/llama-status,
/health and /metrics.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", defaultHost, "Host to bind the server to")
	serveCmd.Flags().IntP("port", "p", defaultPort, "Port to listen on")
	serveCmd.Flags().BoolP("debug", "d", false, "Enable debug mode (verbose logging)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Get host and port from flags (highest precedence)
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		log.Fatalf("Failed to get host flag: %v", err)
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		log.Fatalf("Failed to get port flag: %v", err)
	}

	// Use config values only if flags weren't changed
	if !cmd.Flags().Changed("host") && cfg.Host != "" {
		host = cfg.Host
	}
	if !cmd.Flags().Changed("port") && cfg.Port != 0 {
		port = cfg.Port
	}

	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		log.Fatalf("Failed to get debug flag: %v", err)
	}
	if debug {
		cfg.Debug = true
	}
	setupLogging(cfg.Debug)

	srv := server.NewServer(cfg, host, port)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", host, "port", port, "llama", cfg.APIBase, "ctx", cfg.CtxSize, "model", cfg.ModelName)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-cmd.Context().Done():
	case err := <-serverErr:
		log.Fatalf("Server failed to start: %v", err)
	}

	slog.Info("Shutting down server...")

	// In-flight translations may take minutes; give them a bounded grace period.
	ctx, cancel := server.CreateShutdownContext(30 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exited gracefully")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
