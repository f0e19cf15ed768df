package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/ironquest/internal/config"
	"github.com/claude/ironquest/internal/importer"
	"github.com/claude/ironquest/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedPath := flag.String("path", "", "path to seed directory with Exercises/ and Routines/ (required)")
	statePath := flag.String("state", ".ironquest-import", "directory for the import state db")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	noState := flag.Bool("no-state", false, "disable file-level dedup; re-import everything")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seedPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironquest-import -config config.yaml -path /path/to/seed [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify seed directory exists
	info, err := os.Stat(*seedPath)
	if err != nil || !info.IsDir() {
		log.Error("seed path does not exist or is not a directory", "path", *seedPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open import state db unless disabled
	var state *importer.StateDB
	if !*noState {
		state, err = importer.OpenStateDB(*statePath)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	// Run import
	imp := importer.New(db, state, log, *dryRun)
	stats, err := imp.Import(ctx, *seedPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"exercises_inserted", stats.ExercisesInserted,
		"exercises_duplicated", stats.ExercisesDuplicated,
		"routines_imported", stats.RoutinesImported,
	)
}
