package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironquest/internal/config"
	"github.com/claude/ironquest/internal/mcp"
	"github.com/claude/ironquest/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// ironquest-mcp exposes the workout data over MCP stdio. Two modes:
//
//	local:  -config config.yaml   reads straight from PostgreSQL
//	remote: -url http://host:port talks to a running IronQuest server
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a running IronQuest server (remote mode)")
	flag.Parse()

	// Logs go to stderr; stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL)
		log.Info("MCP remote mode", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("MCP local mode", "database", cfg.Database.Name)
	}

	s := mcp.New(ds, Version, log)

	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
