package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// PrefsGet prints one preference, or all of them when no key is given.
func (r *Runner) PrefsGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	keys := []string{repositories.ThemeKey, repositories.ViewModeKey}
	if key := cmd.StringArg("key"); key != "" {
		keys = []string{key}
	}

	values := map[string]string{}
	for _, key := range keys {
		v, err := r.prefs.Get(key)
		if err != nil {
			return err
		}
		values[key] = v
	}

	if cmd.Bool("json") {
		return r.writeJSON(values, cmd.Bool("pretty"))
	}
	for _, key := range keys {
		r.writePlain("%s = %s\n", key, values[key])
	}
	return nil
}

// PrefsSet stores a preference value.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" || value == "" {
		return fmt.Errorf("%w: usage: prefs set <key> <value>", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.prefs.Set(key, value); err != nil {
		return err
	}
	r.logger.Debug("preference saved", "key", key, "value", value)
	return r.writePlain("✓ %s = %s\n", key, value)
}
