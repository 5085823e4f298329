// Package common wires configuration, logging, storage, and the engine
// for the CLI commands.
package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/scrapekeeper/models"
	"github.com/dtnitsch/scrapekeeper/pkg/analyzer"
	"github.com/dtnitsch/scrapekeeper/pkg/engine"
	"github.com/dtnitsch/scrapekeeper/pkg/extractor"
	"github.com/dtnitsch/scrapekeeper/pkg/fetcher"
	"github.com/dtnitsch/scrapekeeper/pkg/store"
	"github.com/urfave/cli/v2"
)

// Runtime bundles the long-lived collaborators a command needs.
type Runtime struct {
	Config *models.Config
	Logger *slog.Logger
	DB     *store.DB
	Engine *engine.Engine
}

// NewLogger builds the JSON logger all commands share. Logs go to
// stderr so stdout stays clean for command output.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadRuntime reads the config, opens the database, and assembles the
// engine with its injected collaborators. The --db flag overrides the
// configured database path.
func LoadRuntime(c *cli.Context) (*Runtime, error) {
	logger := NewLogger(c.Bool("quiet"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if c.IsSet("db") {
		dbPath = c.String("db")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var ai engine.Analyzer
	if cfg.Gemini.APIKey != "" {
		ai = analyzer.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	}

	eng := engine.New(fetcher.NewFetcher(), extractor.NewExtractor(), ai, db, logger)

	return &Runtime{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Engine: eng,
	}, nil
}

// Close releases the runtime's resources.
func (r *Runtime) Close() {
	if r.DB != nil {
		_ = r.DB.Close()
	}
}
