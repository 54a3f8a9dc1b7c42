// The cleanup binary lists and deletes tracked resources from the command
// line, for operators working outside an MCP host.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lakehouse-portfolio/workspace-tools/internal/agentbricks"
	"github.com/lakehouse-portfolio/workspace-tools/internal/auth"
	"github.com/lakehouse-portfolio/workspace-tools/internal/manifest"
	"github.com/lakehouse-portfolio/workspace-tools/internal/workspace"
)

func main() {
	var (
		list         = flag.Bool("list", false, "List tracked resources")
		typeFlag     = flag.String("type", "", "Resource type (filter for --list, required for deletion)")
		id           = flag.String("id", "", "Resource id to delete")
		remote       = flag.Bool("remote", false, "Also delete the resource from Databricks")
		manifestPath = flag.String("manifest", ".databricks-manifest.json", "Path to the manifest file")
		timeout      = flag.Duration("timeout", 60*time.Second, "Timeout for remote deletion calls")
	)
	flag.Parse()

	_ = godotenv.Load()

	if !*list && *id == "" {
		fmt.Println("Provide --list, or --type and --id to delete a tracked resource.")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := auth.LoadConfig()

	store, err := manifest.NewFileStore(*manifestPath)
	if err != nil {
		fmt.Println("manifest error:", err)
		os.Exit(1)
	}

	typeFilter := manifest.Type(*typeFlag)
	if typeFilter != "" && !manifest.KnownType(typeFilter) {
		fmt.Printf("Unknown resource type %q; expected one of %v\n", typeFilter, manifest.Types)
		os.Exit(1)
	}

	gateway := manifest.NewGateway(store, buildDeleters(cfg, *remote, logger), logger)

	if *list {
		printResources(gateway.List(typeFilter))
		return
	}

	if typeFilter == "" {
		fmt.Println("Deletion requires --type alongside --id.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	result := gateway.Delete(ctx, typeFilter, *id, *remote)
	printResult(typeFilter, *id, result)
	if !result.Success {
		os.Exit(1)
	}
}

// buildDeleters only constructs clients when remote deletion was requested;
// manifest-only runs need no credentials at all.
func buildDeleters(cfg auth.Config, remote bool, logger *slog.Logger) map[manifest.Type]manifest.RemoteDeleter {
	if !remote {
		return nil
	}

	sdk, err := workspace.NewSDK(workspace.Options{
		Host:         cfg.Host,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		logger.Warn("workspace client unavailable", "error", err)
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
		logger.Warn("agent bricks client unavailable", "error", err)
		bricks = nil
	}

	return workspace.Deleters(sdk, bricks)
}

func printResources(result manifest.ListResult) {
	if result.Count == 0 {
		fmt.Println("No tracked resources.")
		return
	}
	for _, rec := range result.Resources {
		fmt.Printf("%-24s %-40s %s\n", rec.Type, rec.ID, rec.Name)
		if rec.URL != "" {
			fmt.Printf("%24s %s\n", "", rec.URL)
		}
	}
	fmt.Printf("%d resource(s).\n", result.Count)
}

func printResult(t manifest.Type, id string, result manifest.DeleteResult) {
	if result.DeletedFromRemote {
		fmt.Printf("Deleted %s/%s from Databricks.\n", t, id)
	}
	if result.RemovedFromManifest {
		fmt.Printf("Removed %s/%s from the manifest.\n", t, id)
	}
	if result.Error != "" {
		fmt.Println("Error:", result.Error)
	}
}
