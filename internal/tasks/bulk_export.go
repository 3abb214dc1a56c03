package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// BulkExportOpts contains configuration for per-song exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: markdown)
	OutputDir  string           // Base output directory (default: songbook_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 8)
}

// SongExportJob is a unit of work for the export worker pool.
type SongExportJob struct {
	Song models.SongDetail
}

// SongExportResult is the outcome of exporting a single song.
type SongExportResult struct {
	SongID   string `json:"id"`
	SongName string `json:"name"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    error  `json:"-"`
	Message  string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalSongs        int                `json:"total_songs"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	Format            formatter.Format   `json:"format"`
	OutputDirectory   string             `json:"output_directory"`
	ExportedAt        time.Time          `json:"exported_at"`
	Results           []SongExportResult `json:"results"`
	ManifestPath      string             `json:"-"`
}

// BulkExport writes each song in ids to its own file using a worker pool, then writes a manifest.
//
// An empty ids exports the whole catalog. Unknown IDs are reported as failed exports.
func (e *CatalogEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.Markdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("songbook_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}

	if len(ids) == 0 {
		for _, s := range e.catalog.GetAll() {
			ids = append(ids, s.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSongs:      len(ids),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]SongExportResult, 0, len(ids)),
	}

	// The catalog is read here, before any worker starts, so workers only touch the filesystem.
	var jobs []SongExportJob
	var early []SongExportResult
	for _, id := range ids {
		detail, err := e.catalog.GetByID(id)
		if err != nil {
			early = append(early, SongExportResult{SongID: id, SongName: fmt.Sprintf("Unknown (%s)", id), Error: err})
			continue
		}
		jobs = append(jobs, SongExportJob{Song: detail})
	}
	e.sendProgress(prog, readCatalogUpdate(len(jobs)))

	jobCh := make(chan SongExportJob, len(jobs))
	results := make(chan SongExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobCh, results, opts)
	}

	for _, r := range early {
		results <- r
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.Message = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.SongName, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, failedSongUpdate(ExportSongs, completed, len(ids), res.SongName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports songs from the jobs channel.
func (e *CatalogEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan SongExportJob,
	results chan<- SongExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSingleSong(job, opts)
	}
}

// exportSingleSong renders one song to {slug}_{id}.{ext} in the output directory.
func (e *CatalogEngine) exportSingleSong(j SongExportJob, opts BulkExportOpts) SongExportResult {
	result := SongExportResult{SongID: j.Song.ID, SongName: j.Song.Name}

	id := j.Song.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s.%s", Slug(j.Song.Name), id, extension(opts.Format))
	path := filepath.Join(opts.OutputDir, name)

	if err := formatter.WriteFile(path, opts.Format, j.Song.Name, []models.SongDetail{j.Song}); err != nil {
		result.Error = err
		return result
	}

	result.File = path
	result.Success = true
	return result
}

func extension(f formatter.Format) string {
	switch f {
	case formatter.Markdown:
		return "md"
	case formatter.Text:
		return "txt"
	default:
		return string(f)
	}
}

// Slug lowercases name and joins its letters and digits with hyphens.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "song"
	}
	return b.String()
}
