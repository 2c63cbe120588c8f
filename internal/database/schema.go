package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/middleware"

	"gorm.io/gorm"
)

// ApplySchema runs the versioned SQL migrations for postgres in production and
// GORM AutoMigrate everywhere else.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.IsProduction() && db.Dialector.Name() == "postgres" {
		migrations, err := GetMigrations()
		if err != nil {
			return err
		}
		if err := RunMigrations(ctx, db, migrations); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		return nil
	}

	middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
