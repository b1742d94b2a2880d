package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/chew-z/screenshot-translator/internal/llama"
	"github.com/chew-z/screenshot-translator/internal/metrics"
	"github.com/chew-z/screenshot-translator/internal/status"
	"github.com/chew-z/screenshot-translator/internal/translate"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *gin.Engine
	server     *http.Server
	translator *translate.Service
	monitor    *status.Monitor
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, host string, port int) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Debug {
		// Log to file in $TMPDIR
		logPath := filepath.Join(os.TempDir(), "screenshot-translator.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Warning: Could not create log file %s: %v", logPath, err)
		} else {
			gin.DefaultWriter = io.MultiWriter(logFile, os.Stdout)
			gin.DefaultErrorWriter = io.MultiWriter(logFile, os.Stderr)
			log.Printf("Logging to %s", logPath)
		}
	} else {
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(metrics.Middleware())

	if cfg.Debug {
		router.Use(gin.Logger())
	}

	client := llama.NewClient(cfg.APIBase, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:    getAddr(host, port),
		Handler: router,
	}

	server := &Server{
		config:     cfg,
		router:     router,
		server:     srv,
		translator: translate.NewService(cfg, client),
		monitor:    status.NewMonitor(cfg.LogPath, status.NewProber(client, cfg.ProbeTimeout)),
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// CreateShutdownContext creates a context for graceful shutdown
func CreateShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// setupRoutes sets up all the routes for the server
func (s *Server) setupRoutes() {
	s.router.POST("/api/translate", s.handleTranslate)
	s.router.GET("/api/llama-status", s.handleLlamaStatus)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Front-end, only when a directory is configured
	if s.config.StaticDir != "" {
		s.router.StaticFile("/", filepath.Join(s.config.StaticDir, "index.html"))
		s.router.Static("/static", s.config.StaticDir)
	}
}

// getAddr returns the address string from host and port
func getAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
