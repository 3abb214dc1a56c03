package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the read-only catalog preview server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	theme, err := r.prefs.Theme()
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	catalog, err := server.NewCatalogHandler(r.songs, server.CatalogOpts{
		Title:  cmd.String("title"),
		Theme:  theme,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	srv := server.New(cfg, server.NewRouter(catalog, cfg, logger))
	url := fmt.Sprintf("http://%s/", cfg.Addr())
	r.writePlain("Serving %d songs at %s\n", r.songs.Len(), url)

	if cmd.Bool("open") {
		go func() {
			time.Sleep(200 * time.Millisecond)
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "url", url, "error", err)
			}
		}()
	}

	if cmd.Bool("watch") {
		if err := r.watch(ctx, catalog); err != nil {
			return err
		}
	}

	return server.Run(ctx, srv, logger)
}

// watch reloads catalog whenever another process writes the database file.
func (r *Runner) watch(ctx context.Context, catalog *server.CatalogHandler) error {
	path := r.config.Database.Path
	if r.db == nil || path == "" || strings.HasPrefix(path, ":memory:") {
		return fmt.Errorf("%w: --watch needs an on-disk database", shared.ErrInvalidFlag)
	}

	w := server.NewWatcher(path, 0, catalog.Reload, shared.WithLogger(r.logger, "component", "watcher"))
	go func() {
		if err := w.Run(ctx); err != nil {
			r.logger.Warn("database watcher stopped", "error", err)
		}
	}()
	return nil
}
