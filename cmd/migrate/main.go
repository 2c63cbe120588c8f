// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	migrations, err := database.GetMigrations()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db, migrations); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		if err := db.WithContext(ctx).AutoMigrate(database.PersistentModels()...); err != nil {
			return fmt.Errorf("auto migrate failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		applied, err := database.AppliedMigrations(ctx, db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		done := make(map[int]bool, len(applied))
		for _, v := range applied {
			done[v] = true
		}
		log.Printf("driver=%s env=%s applied=%d registered=%d", db.Dialector.Name(), cfg.Env, len(applied), len(migrations))
		for _, m := range migrations {
			if !done[m.Version] {
				log.Printf("pending: %s", m.String())
			}
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, migrations, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	default:
		return usage()
	}

	return nil
}
