package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/songbook/internal/audio"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

const gridColumns = 3

// ListSongs prints the catalog filtered by --query and --tag, sorted by --sort.
func (r *Runner) ListSongs(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	sortKey := repositories.ParseSortKey(cmd.String("sort"))
	songs := r.songs.Search(cmd.String("query"), sortKey, cmd.StringSlice("tag"))
	r.logger.Debug("listing songs", "count", len(songs), "sort", sortKey)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"songs": songs, "count": len(songs)}, cmd.Bool("pretty"))
	}

	view := cmd.String("view")
	if view == "" {
		mode, err := r.prefs.ViewMode()
		if err != nil {
			return err
		}
		view = mode
	} else if !slices.Contains(repositories.ViewModes, view) {
		return fmt.Errorf("%w: --view must be one of %s", shared.ErrInvalidFlag, strings.Join(repositories.ViewModes, ", "))
	}

	if len(songs) == 0 {
		return r.writePlain("No songs found\n")
	}

	if view == "grid" {
		return r.writePlain("%s\n", renderGrid(songs))
	}
	return r.writePlain("%s\n", renderTable(songs))
}

func tagText(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}

func renderTable(songs []models.Song) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "COMPOSER", "TAGS")
	for _, s := range songs {
		t.Row(shared.Truncate(s.ID, 8), s.Name, s.Composer, tagText(s.Tags))
	}
	return t.Render()
}

func renderGrid(songs []models.Song) string {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(28)
	title := lipgloss.NewStyle().Bold(true)

	rows := []string{}
	for chunk := range slices.Chunk(songs, gridColumns) {
		cards := make([]string, len(chunk))
		for i, s := range chunk {
			body := title.Render(shared.Truncate(s.Name, 24))
			if s.Composer != "" {
				body += "\n" + shared.Truncate(s.Composer, 24)
			}
			if tags := tagText(s.Tags); tags != "" {
				body += "\n" + shared.Truncate(tags, 24)
			}
			cards[i] = card.Render(body)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ShowSong prints a single song with its audio summary.
func (r *Runner) ShowSong(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	detail, err := r.songs.GetByID(id)
	if err != nil {
		return err
	}

	embed := audio.Classify(detail.Audio)
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"song": detail, "embed": embed}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(detail.Name)
	if detail.Composer != "" {
		r.writePlain("by %s\n", detail.Composer)
	}
	r.writePlain("ID: %s\n", detail.ID)
	r.writePlain("%s: %s\n", detail.DemoText, embed.Status())
	if embed.Valid() {
		r.writePlain("Player: %s\n", shared.Truncate(embed.Target, 120))
	}
	r.writePlainln("%s", detail.Lyrics)
	if len(detail.Tags) > 0 {
		r.writePlainln("%s", tagText(detail.Tags))
	}
	return nil
}

// ListTags prints every distinct tag in the catalog.
func (r *Runner) ListTags(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	tags := r.songs.ListTags()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"tags": tags}, cmd.Bool("pretty"))
	}
	for _, t := range tags {
		r.writePlain("#%s\n", t)
	}
	return nil
}

// readText returns the value of flag, or the contents of fileFlag when set. A file of "-" reads the runner's input.
func (r *Runner) readText(cmd *cli.Command, flag, fileFlag string) (string, error) {
	path := cmd.String(fileFlag)
	if path == "" {
		return cmd.String(flag), nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// audioSource resolves --audio-file into a data URL and returns it with --audio-url.
func audioSource(cmd *cli.Command, fileFlag, urlFlag string) (file, url string, err error) {
	if path := cmd.String(fileFlag); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read audio file: %w", err)
		}
		file = audio.DataURL(data, filepath.Base(path))
	}
	return file, strings.TrimSpace(cmd.String(urlFlag)), nil
}

// AddSong creates a song from flags.
func (r *Runner) AddSong(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		return fmt.Errorf("%w: --name must not be empty", shared.ErrInvalidInput)
	}

	lyrics, err := r.readText(cmd, "lyrics", "lyrics-file")
	if err != nil {
		return err
	}
	file, url, err := audioSource(cmd, "audio-file", "audio-url")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	song, err := r.songs.Add(models.SongDraft{
		Name:     name,
		Composer: cmd.String("composer"),
		Lyrics:   lyrics,
		TagText:  cmd.String("tags"),
		DemoText: cmd.String("demo-text"),
	}, file, url)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added %s (%s)\n", song.Name, song.ID)
}

// UpdateSong applies the flags that were set to an existing song.
func (r *Runner) UpdateSong(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}

	patch := models.SongPatch{}
	if cmd.IsSet("name") {
		name := strings.TrimSpace(cmd.String("name"))
		if name == "" {
			return fmt.Errorf("%w: --name must not be empty", shared.ErrInvalidInput)
		}
		patch.Name = &name
	}
	if cmd.IsSet("composer") {
		composer := cmd.String("composer")
		patch.Composer = &composer
	}
	if cmd.IsSet("lyrics") || cmd.IsSet("lyrics-file") {
		lyrics, err := r.readText(cmd, "lyrics", "lyrics-file")
		if err != nil {
			return err
		}
		patch.Lyrics = &lyrics
	}
	if cmd.IsSet("tags") {
		tags := cmd.String("tags")
		patch.TagText = &tags
	}
	if cmd.IsSet("demo-text") {
		demo := cmd.String("demo-text")
		patch.DemoText = &demo
	}

	file, url, err := audioSource(cmd, "audio-file", "audio-url")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.songs.Update(id, patch, file, url); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", id)
}

// DeleteSong removes a song and its audio.
func (r *Runner) DeleteSong(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	deleted, err := r.songs.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// SetAudio attaches a file or link to a song.
func (r *Runner) SetAudio(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}

	file, url, err := audioSource(cmd, "file", "url")
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.songs.SetAudio(id, file, url); err != nil {
		return err
	}

	embed := audio.Classify(r.songs.GetAudio(id))
	if embed.Err != nil {
		r.logger.Warn("audio link saved but cannot be embedded", "id", id, "error", embed.Err)
	}
	return r.writePlain("✓ Audio set for %s: %s\n", id, embed.Status())
}

// ClearAudio removes a song's audio reference.
func (r *Runner) ClearAudio(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	cleared, err := r.songs.ClearAudio(id)
	if err != nil {
		return err
	}
	if !cleared {
		return r.writePlain("%s has no audio\n", id)
	}
	return r.writePlain("✓ Audio cleared for %s\n", id)
}
