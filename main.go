// D&D 5e MCP Server - A Model Context Protocol server for the D&D 5th Edition API
// Exposes seven read-only tools over the public SRD API at dnd5eapi.co
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/config"
	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
	"github.com/olgasafonova/dnd5e-mcp-server/tools"
	"github.com/olgasafonova/dnd5e-mcp-server/tracing"
)

const (
	ServerName    = "dnd5e-mcp-server"
	ServerVersion = "1.0.0"
)

const instructions = `D&D 5e MCP Server provides read-only access to the D&D 5th Edition SRD API.

Available tools:
- list_endpoints: List every resource category and its URL
- list_resources: List all entries of one category (e.g. spells, monsters)
- get_resource: Get one entry by category and index (e.g. spells/fireball)
- search_spells: Filter spells by level, school, and class
- search_monsters: Filter monsters by challenge rating and type
- get_class_levels: Level progression for a class, or a single level
- get_class_spells: Spells available to a class

Indexes are lowercase and hyphenated ("ancient-red-dragon"). Use list_resources to discover them.`

// recoverPanic logs a panic during startup or shutdown instead of crashing silently.
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Configuration errors surface before the configured logger exists
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tracingCfg := cfg.Tracing
	if !cfg.UsesHTTP() && tracingCfg.Enabled && tracingCfg.OTLPEndpoint == "" {
		logger.Warn("Tracing disabled: stdout is reserved for MCP; set OTEL_EXPORTER_OTLP_ENDPOINT")
		tracingCfg.Enabled = false
	}
	shutdownTracing, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		defer recoverPanic(logger, "tracing shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	client := dnd5e.NewClient(
		dnd5e.WithTimeout(cfg.Timeout),
		dnd5e.WithUserAgent(cfg.UserAgent),
		dnd5e.WithLogger(logger),
	)
	defer client.Close()

	server := newServer(dnd5e.NewDispatcher(client, logger), logger)

	if cfg.UsesHTTP() {
		return serveHTTP(ctx, cfg, server, logger)
	}

	logger.Info("D&D 5e API MCP Server running",
		"name", ServerName,
		"version", ServerVersion,
		"transport", "stdio",
		"api", dnd5e.BaseURL,
	)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run stdio server: %w", err)
	}
	return nil
}

// newLogger creates the stderr logger at the given level.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// newServer creates the MCP server with every tool registered.
func newServer(dispatcher *dnd5e.Dispatcher, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Title:   "D&D 5e API",
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})

	tools.NewHandlerRegistry(dispatcher, logger).RegisterAll(server)
	return server
}

func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, logger *slog.Logger) error {
	handler, closeRouter := newRouter(server, logger, SecurityConfig{
		RateLimit:   cfg.RateLimit,
		MaxBodySize: cfg.MaxBodySize,
	})
	defer closeRouter()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("D&D 5e API MCP Server running",
			"name", ServerName,
			"version", ServerVersion,
			"transport", "http",
			"addr", cfg.HTTPAddr,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	}
}
