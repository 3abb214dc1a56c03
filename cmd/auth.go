package main

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// adminFlags are attached to every command that changes the catalog.
func adminFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Admin email (checked against [admin] email)",
			Sources: cli.EnvVars("SONGBOOK_ADMIN_EMAIL"),
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Admin password (checked against [admin] password_sha256)",
			Sources: cli.EnvVars("SONGBOOK_ADMIN_PASSWORD"),
		},
	}
}

// HashPassword returns the hex SHA-256 digest stored in [admin] password_sha256.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// checkAdmin compares the supplied credentials with the configured admin account.
//
// This is a local check only: anyone who can edit the config file or the database can bypass it.
func checkAdmin(cfg shared.AdminConfig, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: --admin-email and --admin-password are required", shared.ErrMissingCredentials)
	}
	if cfg.Email == "" || cfg.PasswordSHA256 == "" {
		return fmt.Errorf("%w: no admin account configured", shared.ErrUnauthorized)
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(strings.TrimSpace(cfg.Email))),
	)
	passOK := subtle.ConstantTimeCompare(
		[]byte(HashPassword(password)),
		[]byte(strings.ToLower(strings.TrimSpace(cfg.PasswordSHA256))),
	)
	if emailOK&passOK != 1 {
		return shared.ErrUnauthorized
	}
	return nil
}

// requireAdmin is a Before hook for mutating commands.
func (r *Runner) requireAdmin(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := checkAdmin(r.config.Admin, cmd.String("admin-email"), cmd.String("admin-password")); err != nil {
		r.logger.Warn("admin check failed", "command", cmd.Name)
		return ctx, err
	}
	r.logger.Debug("admin check passed", "command", cmd.Name)
	return ctx, nil
}
