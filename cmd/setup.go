package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file when none exists, initializes the database and seeds the catalog.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			r.logger.Info("config file not found, creating from template", "path", configPath)
			if err := shared.CreateConfigFile(configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			} else {
				r.logger.Info("config file created", "path", configPath)
				config, err := shared.LoadConfig(configPath)
				if err != nil {
					r.logger.Warn("failed to load created config, using defaults", "error", err)
				} else {
					r.config = config
				}
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.open(); err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	theme, err := r.prefs.Theme()
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Catalog ready: %d songs\n", r.songs.Len())
	r.writePlain("  Database: %s\n", r.config.Database.Path)
	r.writePlain("  Theme: %s\n", theme)
	return nil
}
