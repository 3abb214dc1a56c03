package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(runner).Run(ctx, os.Args)
	stop()
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}

	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrMissingCredentials):
			logger.Error("admin check failed", "error", err)
			os.Exit(2)
		case errors.Is(err, shared.ErrSongNotFound):
			logger.Error(err)
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songbook",
		Usage:   "Browse and manage a local song lyrics catalog",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SONGBOOK_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

// loadConfig resolves the configuration file named by --config before any command runs.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("configuration loaded", "path", cmd.String("config"), "database", config.Database.Path)
	return ctx, nil
}
