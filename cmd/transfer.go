package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

const snapshotFormat = "json"

// printProgress writes updates from ch until it is closed. The returned wait func blocks until then.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range ch {
			switch update.Phase {
			case tasks.ReadCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ImportSongs, tasks.ExportSongs:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()
	return wg.Wait
}

// exportFormat picks the output format from --format, then the output extension, then JSON.
func exportFormat(cmd *cli.Command) (string, error) {
	if f := strings.ToLower(cmd.String("format")); f != "" {
		if f == snapshotFormat {
			return f, nil
		}
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return "", fmt.Errorf("%w: --format must be json or one of %v", shared.ErrInvalidFlag, formatter.Formats)
		}
		return string(parsed), nil
	}

	output := cmd.String("output")
	if strings.EqualFold(filepath.Ext(output), ".json") || output == "" {
		return snapshotFormat, nil
	}
	return string(formatter.FormatForPath(output, formatter.Markdown)), nil
}

// Export writes the catalog as a JSON snapshot or a songbook document.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	if cmd.Bool("per-song") {
		return r.exportPerSong(ctx, cmd)
	}

	format, err := exportFormat(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = r.output
	output := cmd.String("output")
	if output != "" && output != "-" {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == snapshotFormat {
		snap, err := r.engine.Export(ctx, nil)
		if err != nil {
			return err
		}
		if err := tasks.WriteSnapshot(w, snap, cmd.Bool("pretty")); err != nil {
			return err
		}
		r.logger.Info("snapshot exported", "songs", len(snap.Songs), "output", output)
	} else {
		songs := r.details()
		if err := formatter.Write(w, formatter.Format(format), cmd.String("title"), songs); err != nil {
			return err
		}
		r.logger.Info("catalog exported", "format", format, "songs", len(songs), "output", output)
	}

	if w != r.output {
		return r.writePlain("✓ Exported %d songs to %s\n", r.songs.Len(), output)
	}
	return nil
}

// details returns every song A-Z with its audio attached.
func (r *Runner) details() []models.SongDetail {
	songs := r.songs.Search("", repositories.SortAZ, nil)
	out := make([]models.SongDetail, len(songs))
	for i, s := range songs {
		out[i] = models.SongDetail{Song: s, Audio: r.songs.GetAudio(s.ID)}
	}
	return out
}

func (r *Runner) exportPerSong(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.BulkExportOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
	}
	if f := cmd.String("format"); f != "" {
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		opts.Format = parsed
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progressCh)

	result, err := r.engine.BulkExport(ctx, progressCh, cmd.StringSlice("id"), opts)
	close(progressCh)
	wait()

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalSongs)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d songs:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.SongID, res.Message)
			}
		}
	}
	return nil
}

// Import restores songs from a JSON snapshot file, or stdin when the path is "-".
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: snapshot path", shared.ErrMissingArgument)
	}

	var in io.Reader = r.input
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		in = f
	}

	snap, err := tasks.ReadSnapshot(in)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	r.logger.Info("starting import", "path", path, "songs", len(snap.Songs), "overwrite", cmd.Bool("overwrite"))
	r.writePlain("Importing %d songs...\n", len(snap.Songs))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progressCh)

	result, err := r.engine.Import(ctx, progressCh, snap, tasks.ImportOpts{Overwrite: cmd.Bool("overwrite")})
	close(progressCh)
	wait()

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Imported: %d/%d\n", result.Imported, result.Total)
	r.writePlain("Skipped (existing): %d\n", result.Skipped)

	if len(result.Failed) > 0 {
		r.writePlain("\nFailed to import %d songs:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  - %s: %v\n", f.Name, f.Error)
		}
	}
	return nil
}
