// The mcp-server binary exposes the resource manifest over MCP on stdio.
// All logging goes to stderr; stdout belongs to the protocol.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lakehouse-portfolio/workspace-tools/internal/agentbricks"
	"github.com/lakehouse-portfolio/workspace-tools/internal/auth"
	"github.com/lakehouse-portfolio/workspace-tools/internal/manifest"
	"github.com/lakehouse-portfolio/workspace-tools/internal/tools"
	"github.com/lakehouse-portfolio/workspace-tools/internal/workspace"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := auth.LoadConfig()
	manifestPath := envOrDefault("MANIFEST_PATH", ".databricks-manifest.json")

	store, err := manifest.NewFileStore(manifestPath)
	if err != nil {
		logger.Error("failed to load manifest", "path", manifestPath, "error", err)
		os.Exit(1)
	}

	gateway := manifest.NewGateway(store, buildDeleters(cfg, logger), logger)

	s := server.NewMCPServer(
		"workspace-tools",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	listTool := tools.NewListTool(gateway)
	s.AddTool(listTool.Definition(), listTool.Handle)

	deleteTool := tools.NewDeleteTool(gateway)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	logger.Info("serving MCP on stdio", "manifest", manifestPath, "mode", cfg.Mode)
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

// buildDeleters wires the remote deletion table. Missing credentials degrade
// to a partial (or empty) table: listing and manifest-only deletion keep
// working, remote deletion reports unsupported types.
func buildDeleters(cfg auth.Config, logger *slog.Logger) map[manifest.Type]manifest.RemoteDeleter {
	sdk, err := workspace.NewSDK(workspace.Options{
		Host:         cfg.Host,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		logger.Warn("workspace client unavailable; SDK-backed deletion disabled", "error", err)
		sdk = nil
	}

	host := cfg.Host
	if host == "" && sdk != nil {
		host = sdk.Host()
	}
	bricks, err := agentbricks.New(agentbricks.Config{
		Host:         host,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Token:        cfg.Token,
	})
	if err != nil {
		logger.Warn("agent bricks client unavailable; genie/tile deletion disabled", "error", err)
		bricks = nil
	}

	return workspace.Deleters(sdk, bricks)
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
