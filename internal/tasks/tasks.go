package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Catalog is the subset of repositories.SongRepository used by the engine.
type Catalog interface {
	GetAll() []models.Song
	GetByID(id string) (models.SongDetail, error)
	AudioData() map[string]models.AudioReference
	Put(song models.Song, ref *models.AudioReference) error
	ClearAudio(id string) (bool, error)
}

// Snapshot is the full catalog in the same shape the browser keeps it in local storage.
type Snapshot struct {
	Songs     []models.Song                    `json:"songs"`
	AudioData map[string]models.AudioReference `json:"audioData"`
}

// snapshotSong accepts older exports that used title and author.
type snapshotSong struct {
	models.Song
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

type snapshotDoc struct {
	Songs     []snapshotSong                   `json:"songs"`
	AudioData map[string]models.AudioReference `json:"audioData"`
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var doc snapshotDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode snapshot: %v", shared.ErrInvalidInput, err)
	}

	snap := &Snapshot{
		Songs:     make([]models.Song, 0, len(doc.Songs)),
		AudioData: doc.AudioData,
	}
	if snap.AudioData == nil {
		snap.AudioData = map[string]models.AudioReference{}
	}

	for _, s := range doc.Songs {
		song := s.Song
		if song.Name == "" {
			song.Name = s.Title
		}
		if song.Composer == "" {
			song.Composer = s.Author
		}
		if song.Tags == nil {
			song.Tags = []string{}
		}
		snap.Songs = append(snap.Songs, song)
	}
	return snap, nil
}

// WriteSnapshot encodes snap to w, indented when pretty is set.
func WriteSnapshot(w io.Writer, snap *Snapshot, pretty bool) error {
	data, err := shared.MarshalJSON(snap, pretty)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ImportOpts configures [CatalogEngine.Import].
type ImportOpts struct {
	// Overwrite replaces songs whose ID already exists. A replaced song keeps no
	// audio unless the snapshot has an entry for it.
	Overwrite bool
}

// SongImportResult is the outcome for a single imported song.
type SongImportResult struct {
	ID    string
	Name  string
	Error error
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Total    int
	Imported int
	Skipped  int
	Failed   []SongImportResult
}

// CatalogEngine runs catalog-wide operations against a [Catalog].
type CatalogEngine struct {
	catalog Catalog
	logger  *log.Logger
}

// NewCatalogEngine creates a new CatalogEngine. A nil logger discards output.
func NewCatalogEngine(catalog Catalog, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &CatalogEngine{catalog: catalog, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export returns a snapshot of every song and audio reference.
func (e *CatalogEngine) Export(ctx context.Context, progress chan<- ProgressUpdate) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	songs := e.catalog.GetAll()
	snap := &Snapshot{Songs: songs, AudioData: e.catalog.AudioData()}
	e.sendProgress(progress, readCatalogUpdate(len(songs)))
	return snap, nil
}

// Import stores every song in snap under its original ID.
//
// Songs whose ID already exists are skipped unless opts.Overwrite is set. A song that cannot be stored is
// recorded in the result and the run continues; cancellation stops it between songs.
func (e *CatalogEngine) Import(ctx context.Context, progress chan<- ProgressUpdate, snap *Snapshot, opts ImportOpts) (*ImportResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is empty", shared.ErrInvalidInput)
	}

	total := len(snap.Songs)
	result := &ImportResult{Total: total}
	audioData := maps.Clone(snap.AudioData)

	for i, song := range snap.Songs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step := i + 1
		if song.ID == "" {
			err := fmt.Errorf("%w: song has no ID", shared.ErrInvalidInput)
			result.Failed = append(result.Failed, SongImportResult{Name: song.Name, Error: err})
			e.sendProgress(progress, failedSongUpdate(ImportSongs, step, total, song.Name, err))
			continue
		}

		_, err := e.catalog.GetByID(song.ID)
		exists := err == nil
		if err != nil && !errors.Is(err, shared.ErrSongNotFound) {
			return result, err
		}
		if exists && !opts.Overwrite {
			result.Skipped++
			e.sendProgress(progress, skippedSongUpdate(step, total, song.Name))
			continue
		}

		var ref *models.AudioReference
		if r, ok := audioData[song.ID]; ok {
			ref = &r
		}

		if err := e.importSong(song, ref, exists); err != nil {
			result.Failed = append(result.Failed, SongImportResult{ID: song.ID, Name: song.Name, Error: err})
			e.sendProgress(progress, failedSongUpdate(ImportSongs, step, total, song.Name, err))
			e.logger.Warn("song import failed", "id", song.ID, "error", err)
			continue
		}

		result.Imported++
		e.sendProgress(progress, importedSongUpdate(step, total, song.Name))
	}

	e.logger.Info("import finished", "imported", result.Imported, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

// importSong stores song and, when it replaces an existing song, drops audio the snapshot does not carry.
func (e *CatalogEngine) importSong(song models.Song, ref *models.AudioReference, replacing bool) error {
	if err := e.catalog.Put(song, ref); err != nil {
		return err
	}
	if ref == nil && replacing {
		if _, err := e.catalog.ClearAudio(song.ID); err != nil {
			return err
		}
	}
	return nil
}
