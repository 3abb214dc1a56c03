package tasks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
)

func setupEngine(t *testing.T) (*CatalogEngine, *repositories.SongRepository, *tu.MemoryStore) {
	t.Helper()

	store := tu.NewMemoryStore(nil)
	repo := repositories.NewSongRepository(store, repositories.SongRepositoryOpts{})
	if err := repo.Initialize(); err != nil {
		t.Fatalf("failed to initialize repository: %v", err)
	}
	return NewCatalogEngine(repo, nil), repo, store
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestSnapshotIO(t *testing.T) {
	t.Run("ReadSnapshot", func(t *testing.T) {
		input := `{
			"songs": [{"id":"7","name":"Holy, Holy, Holy","composer":"Reginald Heber","lyrics":"Early in the morning","tags":["hymn"],"demoText":"Demo song"}],
			"audioData": {"7": {"kind":"url","payload":"https://example.com/holy.mp3"}}
		}`

		snap, err := ReadSnapshot(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		if len(snap.Songs) != 1 || snap.Songs[0].Name != "Holy, Holy, Holy" {
			t.Fatalf("unexpected songs: %+v", snap.Songs)
		}
		if ref := snap.AudioData["7"]; ref.Kind != models.AudioURL {
			t.Errorf("unexpected audio: %+v", ref)
		}
	})

	t.Run("ReadSnapshot legacy fields", func(t *testing.T) {
		input := `{
			"songs": [{"id":"8","title":"Rock of Ages","author":"Augustus Toplady"}],
			"audioData": {"8": {"type":"youtube","data":"https://youtu.be/dQw4w9WgXcQ"}}
		}`

		snap, err := ReadSnapshot(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		song := snap.Songs[0]
		if song.Name != "Rock of Ages" || song.Composer != "Augustus Toplady" {
			t.Errorf("expected title/author fallbacks, got %+v", song)
		}
		if song.Tags == nil {
			t.Error("expected non-nil tags")
		}
		if ref := snap.AudioData["8"]; ref.Kind != models.AudioYouTube || ref.Payload == "" {
			t.Errorf("expected legacy audio entry, got %+v", ref)
		}
	})

	t.Run("ReadSnapshot missing audio", func(t *testing.T) {
		snap, err := ReadSnapshot(strings.NewReader(`{"songs":[]}`))
		if err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		if snap.AudioData == nil {
			t.Error("expected empty audio map")
		}
	})

	t.Run("ReadSnapshot invalid JSON", func(t *testing.T) {
		_, err := ReadSnapshot(strings.NewReader("{"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("WriteSnapshot round-trips", func(t *testing.T) {
		engine, _, _ := setupEngine(t)
		snap, err := engine.Export(context.Background(), nil)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		var buf bytes.Buffer
		if err := WriteSnapshot(&buf, snap, true); err != nil {
			t.Fatalf("WriteSnapshot() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"audioData": {}`) {
			t.Errorf("expected browser-shaped keys, got:\n%s", buf.String())
		}

		back, err := ReadSnapshot(&buf)
		if err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		if len(back.Songs) != 3 || back.Songs[2].Name != "It Is Well" {
			t.Errorf("round-trip lost songs: %+v", back.Songs)
		}
	})

	t.Run("WriteSnapshot failure", func(t *testing.T) {
		if err := WriteSnapshot(&tu.FWriter{}, &Snapshot{}, false); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestCatalogEngine(t *testing.T) {
	t.Run("Export", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		_ = repo.SetAudio("1", "", "https://youtu.be/dQw4w9WgXcQ")

		progress := make(chan ProgressUpdate, 4)
		snap, err := engine.Export(context.Background(), progress)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if len(snap.Songs) != 3 {
			t.Errorf("expected 3 songs, got %d", len(snap.Songs))
		}
		if _, ok := snap.AudioData["1"]; !ok {
			t.Error("expected audio for song 1")
		}

		updates := drain(progress)
		if len(updates) != 1 || updates[0].Phase != ReadCatalog {
			t.Errorf("unexpected progress updates: %+v", updates)
		}
	})

	t.Run("Export cancelled", func(t *testing.T) {
		engine, _, _ := setupEngine(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := engine.Export(ctx, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Import skips existing IDs", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		snap := &Snapshot{
			Songs: []models.Song{
				{ID: "1", Name: "Replaced Grace", Tags: []string{}},
				{ID: "9", Name: "Crown Him", Tags: []string{"hymn"}},
			},
			AudioData: map[string]models.AudioReference{
				"9": {Kind: models.AudioURL, Payload: "https://example.com/crown.mp3"},
			},
		}

		progress := make(chan ProgressUpdate, 10)
		result, err := engine.Import(context.Background(), progress, snap, ImportOpts{})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Imported != 1 || result.Skipped != 1 || len(result.Failed) != 0 {
			t.Errorf("unexpected result %+v", result)
		}

		detail, _ := repo.GetByID("1")
		if detail.Name != "Amazing Grace" {
			t.Errorf("existing song was overwritten: %q", detail.Name)
		}
		detail, err = repo.GetByID("9")
		if err != nil {
			t.Fatalf("imported song missing: %v", err)
		}
		if detail.Audio == nil || detail.Audio.Payload != "https://example.com/crown.mp3" {
			t.Errorf("expected imported audio, got %+v", detail.Audio)
		}

		if updates := drain(progress); len(updates) != 2 {
			t.Errorf("expected 2 progress updates, got %d", len(updates))
		}
	})

	t.Run("Import overwrite", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		snap := &Snapshot{Songs: []models.Song{{ID: "1", Name: "Replaced Grace"}}}

		result, err := engine.Import(context.Background(), nil, snap, ImportOpts{Overwrite: true})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Imported != 1 {
			t.Errorf("expected 1 import, got %+v", result)
		}

		all := repo.GetAll()
		if all[0].ID != "1" || all[0].Name != "Replaced Grace" {
			t.Errorf("expected in-place overwrite, got %+v", all[0])
		}
		if repo.Len() != 3 {
			t.Errorf("expected 3 songs, got %d", repo.Len())
		}
	})

	t.Run("Import overwrite replaces audio with the snapshot's", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		if err := repo.SetAudio("1", "", "https://youtu.be/dQw4w9WgXcQ"); err != nil {
			t.Fatal(err)
		}
		if err := repo.SetAudio("2", "", "https://youtu.be/dQw4w9WgXcQ"); err != nil {
			t.Fatal(err)
		}

		snap := &Snapshot{
			Songs: []models.Song{{ID: "1", Name: "Amazing Grace"}, {ID: "2", Name: "How Great Thou Art"}},
			AudioData: map[string]models.AudioReference{
				"2": {Kind: models.AudioURL, Payload: "https://soundcloud.com/choir/great"},
			},
		}
		if _, err := engine.Import(context.Background(), nil, snap, ImportOpts{Overwrite: true}); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		if ref := repo.GetAudio("1"); ref != nil {
			t.Errorf("expected audio absent from the snapshot to be cleared, got %+v", ref)
		}
		if ref := repo.GetAudio("2"); ref == nil || ref.Payload != "https://soundcloud.com/choir/great" {
			t.Errorf("expected snapshot audio, got %+v", ref)
		}
	})

	t.Run("Import without overwrite keeps existing audio", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		if err := repo.SetAudio("1", "", "https://youtu.be/dQw4w9WgXcQ"); err != nil {
			t.Fatal(err)
		}

		snap := &Snapshot{Songs: []models.Song{{ID: "1", Name: "Changed"}}}
		if _, err := engine.Import(context.Background(), nil, snap, ImportOpts{}); err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if repo.GetAudio("1") == nil {
			t.Error("expected skipped song to keep its audio")
		}
	})

	t.Run("Import records failures", func(t *testing.T) {
		engine, _, store := setupEngine(t)
		snap := &Snapshot{Songs: []models.Song{{Name: "No ID"}, {ID: "10", Name: "Lost"}}}
		store.FailSet = true

		result, err := engine.Import(context.Background(), nil, snap, ImportOpts{})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if len(result.Failed) != 2 {
			t.Fatalf("expected 2 failures, got %+v", result.Failed)
		}
		if !errors.Is(result.Failed[0].Error, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing ID, got %v", result.Failed[0].Error)
		}
		if !errors.Is(result.Failed[1].Error, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", result.Failed[1].Error)
		}
	})

	t.Run("Import nil snapshot", func(t *testing.T) {
		engine, _, _ := setupEngine(t)
		if _, err := engine.Import(context.Background(), nil, nil, ImportOpts{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Import cancelled", func(t *testing.T) {
		engine, repo, _ := setupEngine(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		snap := &Snapshot{Songs: []models.Song{{ID: "11", Name: "Never"}}}
		if _, err := engine.Import(ctx, nil, snap, ImportOpts{}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if repo.Len() != 3 {
			t.Error("cancelled import must not store songs")
		}
	})

	t.Run("sendProgress never blocks", func(t *testing.T) {
		engine, _, _ := setupEngine(t)
		full := make(chan ProgressUpdate)
		engine.sendProgress(full, ProgressUpdate{Message: "dropped"})
		engine.sendProgress(nil, ProgressUpdate{Message: "ignored"})
	})
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		ReadCatalog:   "read_catalog",
		ImportSongs:   "import_songs",
		ExportSongs:   "export_songs",
		WriteManifest: "write_manifest",
		Phase(99):     "",
	}
	for phase, want := range tc {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
