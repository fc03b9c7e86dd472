package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/config"
	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
	"github.com/lawnchairsociety/gridclash/internal/server"
)

const usage = `usage: gridclash [serve|play|watch] [flags]

  serve   run the HTTP API and replay server (default)
  play    run one battle locally and print it with presentation pacing
  watch   stream a stored battle from a running server
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		runServe(args)
	case "play":
		runPlay(args)
	case "watch":
		runWatch(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// common holds the flags shared by serve and play.
type common struct {
	dataDir       *string
	serverConfig  *string
	loggingConfig *string
	dbFile        *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		dataDir:       fs.String("data-dir", "data", "Path to the catalog directory (heroes.yaml, spells.yaml, effects.yaml)"),
		serverConfig:  fs.String("config", "data/server.yaml", "Path to server config YAML file"),
		loggingConfig: fs.String("logging", "data/logging.yaml", "Path to logging config YAML file"),
		dbFile:        fs.String("db", "", "Override the SQLite database path from the server config"),
	}
}

// load initializes logging and reads the server config and the catalog.
func (c common) load() (*config.ServerConfig, *catalog.Catalog) {
	logConfig, err := logger.LoadConfig(*c.loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config %s, using defaults: %v", *c.loggingConfig, err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig(*c.serverConfig)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *c.serverConfig, "error", err)
	}
	if *c.dbFile != "" {
		cfg.Database.SQLitePath = *c.dbFile
	}

	cat, err := catalog.LoadDir(*c.dataDir)
	if err != nil {
		log.Fatalf("Failed to load catalog from %s: %v", *c.dataDir, err)
	}
	heroes, spells, effects := cat.Counts()
	logger.Info("Catalog loaded", "dir", *c.dataDir, "heroes", heroes, "spells", spells, "effects", effects)
	return cfg, cat
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c := commonFlags(fs)
	addr := fs.String("addr", "", "Override the HTTP listen address")
	fs.Parse(args)

	cfg, cat := c.load()
	if *addr != "" {
		cfg.HTTP.Address = *addr
	}
	defer logger.Close()

	logger.Info("Starting GridClash server")

	db, err := database.OpenWithConfig(cfg.Database.Store())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if cfg.Database.Driver == "postgres" {
		logger.Info("Battle database initialized", "driver", "postgres", "host", cfg.Database.Postgres.Host)
	} else {
		logger.Info("Battle database initialized", "driver", "sqlite", "path", filepath.Clean(cfg.Database.SQLitePath))
	}

	if len(cfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("Replay CORS policy", "mode", "same-origin")
	} else if len(cfg.WebSocket.AllowedOrigins) == 1 && cfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("Replay CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("Replay CORS policy", "allowed_origins", cfg.WebSocket.AllowedOrigins)
	}

	srv, err := server.NewServer(cfg, engine.New(cat), db)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped unexpectedly", "error", err)
		}
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warning("Shutdown did not complete cleanly", "error", err)
	}
	logger.Info("Server stopped")
}
