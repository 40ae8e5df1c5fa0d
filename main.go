// EVA Wiki MCP Server - A Model Context Protocol server for the EVA Wiki JSON-RPC API.
// Provides tools for reading, searching, editing and publishing EVA documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/vsevolodlukovsky/evawiki-mcp/internal/evawiki"
	"github.com/vsevolodlukovsky/evawiki-mcp/metrics"
	"github.com/vsevolodlukovsky/evawiki-mcp/tools"
	"github.com/vsevolodlukovsky/evawiki-mcp/tracing"
)

const ServerName = "evawiki-mcp"

// Set via ldflags at build time.
var version = "1.0.0"

const serverInstructions = `EVA Wiki MCP Server exposes EVA Wiki documents, projects and users.

Start with evawiki_search_documents when the document code is unknown, then
read it with evawiki_get_document_text or evawiki_get_document_by_code.
evawiki_update_document_text overwrites the draft text; pass publish=true or
call evawiki_publish_document to make it live. Use evawiki_raw_call only when
no dedicated tool fits.

Configure via environment variables:
- EVAWIKI_API_URL: JSON-RPC endpoint (e.g., https://eva.example.com/api/)
- EVAWIKI_API_TOKEN: Bearer token
- EVAWIKI_VERIFY_SSL: Verify TLS certificates (default true)
- EVAWIKI_TIMEOUT: Request timeout in seconds (default 30)`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   ServerName,
		Short: "MCP server for the EVA Wiki JSON-RPC API",
		Long: `evawiki-mcp serves EVA Wiki tools to an MCP host over stdio.

Environment:
  EVAWIKI_API_URL       JSON-RPC endpoint (required)
  EVAWIKI_API_TOKEN     Bearer token (required)
  EVAWIKI_VERIFY_SSL    Verify TLS certificates (default true)
  EVAWIKI_TIMEOUT       Request timeout in seconds (default 30)
  EVAWIKI_LOG_LEVEL     debug, info, warn or error (default info)
  EVAWIKI_METRICS_ADDR  Serve Prometheus /metrics on this address
  EVAWIKI_CONFIG        TOML or YAML (.yaml/.yml) file with base settings`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.ErrOrStderr())
		},
	}
	cmd.Version = version
	cmd.SetVersionTemplate(fmt.Sprintf("%s version %s\n", ServerName, version))
	return cmd
}

// run loads configuration and serves MCP on stdio until ctx is done or the
// host disconnects. Logs go to stderr since stdout carries the protocol.
func run(ctx context.Context, stderr io.Writer) error {
	config, err := evawiki.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: parseLogLevel(config.LogLevel),
	}))

	traceConfig := tracing.DefaultConfig()
	traceConfig.ServiceVersion = version
	traceConfig.Writer = stderr
	shutdownTracing, err := tracing.Setup(ctx, traceConfig)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	if config.MetricsAddr != "" {
		listener, err := net.Listen("tcp", config.MetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics on %s: %w", config.MetricsAddr, err)
		}
		defer serveMetrics(listener, logger)()
	}

	server := newServer(config, logger)

	logger.Info("Starting EVA Wiki MCP Server",
		"name", ServerName,
		"version", version,
		"api_url", config.BaseURL,
		"verify_ssl", config.VerifySSL,
		"timeout", config.Timeout,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newServer builds the MCP server with every EVA tool registered.
func newServer(config *evawiki.Config, logger *slog.Logger) *mcp.Server {
	client := evawiki.NewClient(config, evawiki.WithLogger(logger))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(client, logger).RegisterAll(server)
	return server
}

// serveMetrics exposes Prometheus metrics on listener and returns a stop function.
func serveMetrics(listener net.Listener, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// parseLogLevel maps a level name to slog; unknown names fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
