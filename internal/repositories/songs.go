package repositories

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/audio"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/text/language"
)

// Store keys for the catalog documents.
const (
	SongsKey = "songs"
	AudioKey = "audioData"
)

// SongRepositoryOpts configures a [SongRepository].
type SongRepositoryOpts struct {
	Locale language.Tag // collation used by Search; defaults to the root collation
	Logger *log.Logger  // defaults to a discarding logger
}

// SongRepository owns the song collection and its audio references.
//
// It is not safe for concurrent use. Mutations are written to the [Store] before they become
// visible, so a failed write leaves the repository unchanged.
type SongRepository struct {
	store  Store
	locale language.Tag
	logger *log.Logger
	songs  []models.Song
	audio  map[string]models.AudioReference
}

// NewSongRepository creates a SongRepository backed by store. Call [SongRepository.Initialize] before use.
func NewSongRepository(store Store, opts SongRepositoryOpts) *SongRepository {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &SongRepository{
		store:  store,
		locale: opts.Locale,
		logger: opts.Logger,
		songs:  []models.Song{},
		audio:  map[string]models.AudioReference{},
	}
}

// Initialize loads the catalog from the store, seeding it with [models.SeedSongs] when empty.
//
// Missing or unparseable documents are treated as empty.
func (r *SongRepository) Initialize() error {
	songs, err := r.loadSongs()
	if err != nil {
		return err
	}
	audioData, err := r.loadAudio()
	if err != nil {
		return err
	}

	r.songs, r.audio = songs, audioData
	if len(r.songs) > 0 {
		r.logger.Debug("catalog loaded", "songs", len(r.songs), "audio", len(r.audio))
		return nil
	}

	r.logger.Info("catalog empty, writing sample songs")
	return r.commit(models.SeedSongs(), r.audio)
}

func (r *SongRepository) loadSongs() ([]models.Song, error) {
	raw, ok, err := r.store.Get(SongsKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load songs: %w", shared.ErrStorage, err)
	}

	var songs []models.Song
	if ok {
		if err := json.Unmarshal([]byte(raw), &songs); err != nil {
			r.logger.Warn("discarding unreadable songs document", "error", err)
			songs = nil
		}
	}

	out := make([]models.Song, 0, len(songs))
	for _, s := range songs {
		s = s.Clone()
		if s.DemoText == "" {
			s.DemoText = models.DefaultDemoText
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SongRepository) loadAudio() (map[string]models.AudioReference, error) {
	raw, ok, err := r.store.Get(AudioKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load audio data: %w", shared.ErrStorage, err)
	}

	audioData := map[string]models.AudioReference{}
	if ok {
		if err := json.Unmarshal([]byte(raw), &audioData); err != nil || audioData == nil {
			r.logger.Warn("discarding unreadable audio document", "error", err)
			audioData = map[string]models.AudioReference{}
		}
	}
	return audioData, nil
}

// commit writes songs and audioData to the store and, on success, makes them current.
func (r *SongRepository) commit(songs []models.Song, audioData map[string]models.AudioReference) error {
	songsJSON, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("%w: failed to encode songs: %v", shared.ErrStorage, err)
	}
	audioJSON, err := json.Marshal(audioData)
	if err != nil {
		return fmt.Errorf("%w: failed to encode audio data: %v", shared.ErrStorage, err)
	}

	if err := r.store.SetMany(map[string]string{
		SongsKey: string(songsJSON),
		AudioKey: string(audioJSON),
	}); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	r.songs, r.audio = songs, audioData
	return nil
}

func (r *SongRepository) indexOf(id string) int {
	return slices.IndexFunc(r.songs, func(s models.Song) bool { return s.ID == id })
}

// newID returns a random ID not used by any song in the collection.
func (r *SongRepository) newID() string {
	for {
		id := shared.GenerateID()
		if r.indexOf(id) < 0 {
			return id
		}
	}
}

// audioFor builds the reference for a stored file payload or a pasted URL. The file wins when both are set.
func audioFor(file, url string) (models.AudioReference, bool) {
	switch {
	case file != "":
		return models.AudioReference{Kind: models.AudioFile, Payload: file}, true
	case url != "":
		return models.AudioReference{Kind: audio.KindFor(url), Payload: url}, true
	default:
		return models.AudioReference{}, false
	}
}

// Add stores a new song with a fresh ID and returns it.
//
// file is a data URL payload and url a pasted link; either may be empty.
func (r *SongRepository) Add(draft models.SongDraft, file, url string) (models.Song, error) {
	song := draft.Song(r.newID())

	audioData := maps.Clone(r.audio)
	if ref, ok := audioFor(file, url); ok {
		audioData[song.ID] = ref
	}

	songs := append(slices.Clone(r.songs), song)
	if err := r.commit(songs, audioData); err != nil {
		return models.Song{}, err
	}

	r.logger.Info("song added", "id", song.ID, "name", song.Name)
	return song.Clone(), nil
}

// GetAll returns a copy of every song in storage order.
//
// The result is independent of later mutations.
func (r *SongRepository) GetAll() []models.Song {
	out := make([]models.Song, len(r.songs))
	for i, s := range r.songs {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of songs.
func (r *SongRepository) Len() int {
	return len(r.songs)
}

// GetByID returns the song with its audio reference attached.
func (r *SongRepository) GetByID(id string) (models.SongDetail, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.SongDetail{}, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return models.SongDetail{Song: r.songs[i].Clone(), Audio: r.GetAudio(id)}, nil
}

// Update merges patch onto the song and replaces its audio when file or url is given.
func (r *SongRepository) Update(id string, patch models.SongPatch, file, url string) error {
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	songs := slices.Clone(r.songs)
	songs[i] = songs[i].Merge(patch)

	audioData := r.audio
	if ref, ok := audioFor(file, url); ok {
		audioData = maps.Clone(r.audio)
		audioData[id] = ref
	}

	if err := r.commit(songs, audioData); err != nil {
		return err
	}

	r.logger.Info("song updated", "id", id)
	return nil
}

// SetAudio replaces a song's audio reference without touching its metadata.
func (r *SongRepository) SetAudio(id, file, url string) error {
	if r.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	ref, ok := audioFor(file, url)
	if !ok {
		return fmt.Errorf("%w: a file or URL is required", shared.ErrMissingArgument)
	}

	audioData := maps.Clone(r.audio)
	audioData[id] = ref
	return r.commit(r.songs, audioData)
}

// ClearAudio removes a song's audio reference and reports whether one existed.
func (r *SongRepository) ClearAudio(id string) (bool, error) {
	if r.indexOf(id) < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if _, ok := r.audio[id]; !ok {
		return false, nil
	}

	audioData := maps.Clone(r.audio)
	delete(audioData, id)
	if err := r.commit(r.songs, audioData); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a song and its audio. Deleting an unknown ID reports false and changes nothing.
func (r *SongRepository) Delete(id string) (bool, error) {
	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	songs := slices.Delete(slices.Clone(r.songs), i, i+1)
	audioData := maps.Clone(r.audio)
	delete(audioData, id)

	if err := r.commit(songs, audioData); err != nil {
		return false, err
	}

	r.logger.Info("song deleted", "id", id)
	return true, nil
}

// Put stores song under its own ID, replacing any song with the same ID in place.
//
// A nil ref leaves existing audio untouched. Used to restore snapshots.
func (r *SongRepository) Put(song models.Song, ref *models.AudioReference) error {
	if song.ID == "" {
		return fmt.Errorf("%w: song ID is required", shared.ErrInvalidInput)
	}

	song = song.Clone()
	if song.DemoText == "" {
		song.DemoText = models.DefaultDemoText
	}

	songs := slices.Clone(r.songs)
	if i := r.indexOf(song.ID); i >= 0 {
		songs[i] = song
	} else {
		songs = append(songs, song)
	}

	audioData := r.audio
	if ref != nil {
		audioData = maps.Clone(r.audio)
		audioData[song.ID] = *ref
	}

	return r.commit(songs, audioData)
}

// GetAudio returns the song's audio reference, or nil when it has none.
func (r *SongRepository) GetAudio(id string) *models.AudioReference {
	ref, ok := r.audio[id]
	if !ok {
		return nil
	}
	return &ref
}

// AudioData returns a copy of every audio reference keyed by song ID.
func (r *SongRepository) AudioData() map[string]models.AudioReference {
	return maps.Clone(r.audio)
}
