// package models defines the data model for the song catalog
package models

import (
	"encoding/json"
	"slices"

	"github.com/desertthunder/songbook/internal/shared"
)

// DefaultDemoText labels a song's audio preview when no demo text was given.
const DefaultDemoText = "Demo song"

// AudioKind discriminates how an [AudioReference] payload should be played.
type AudioKind string

const (
	AudioFile    AudioKind = "file"    // payload is a base64 data URL
	AudioURL     AudioKind = "url"     // payload is a URL classified at display time
	AudioYouTube AudioKind = "youtube" // payload is a YouTube URL
)

// AudioReference describes a song's attached audio.
type AudioReference struct {
	Kind    AudioKind `json:"kind"`
	Payload string    `json:"payload"`
}

// UnmarshalJSON decodes both the current {kind, payload} shape and the
// browser localStorage {type, data} shape.
func (a *AudioReference) UnmarshalJSON(b []byte) error {
	var raw struct {
		Kind    AudioKind `json:"kind"`
		Payload string    `json:"payload"`
		Type    AudioKind `json:"type"`
		Data    string    `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	a.Kind = raw.Kind
	if a.Kind == "" {
		a.Kind = raw.Type
	}
	a.Payload = raw.Payload
	if a.Payload == "" {
		a.Payload = raw.Data
	}
	return nil
}

// Song is a lyrics record. ID is assigned at creation and never changes.
type Song struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Composer string   `json:"composer"`
	Lyrics   string   `json:"lyrics"`
	Tags     []string `json:"tags"`
	DemoText string   `json:"demoText"`
}

// Clone returns a copy of s that shares no slices with it.
func (s Song) Clone() Song {
	s.Tags = slices.Clone(s.Tags)
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s
}

// SongDetail is a [Song] with its audio reference, if any.
type SongDetail struct {
	Song
	Audio *AudioReference `json:"audio"`
}

// SongDraft holds the fields for a new song.
//
// When TagText is non-empty it is split on commas and takes precedence over Tags.
type SongDraft struct {
	Name     string
	Composer string
	Lyrics   string
	Tags     []string
	TagText  string
	DemoText string
}

// Tags resolves a tag list from either comma-separated text or a list.
func Tags(list []string, text string) []string {
	if text != "" {
		return shared.SplitTags(text)
	}
	if list == nil {
		return []string{}
	}
	return slices.Clone(list)
}

// Song builds a [Song] from the draft with the given ID, applying defaults.
func (d SongDraft) Song(id string) Song {
	demo := d.DemoText
	if demo == "" {
		demo = DefaultDemoText
	}
	return Song{
		ID:       id,
		Name:     d.Name,
		Composer: d.Composer,
		Lyrics:   d.Lyrics,
		Tags:     Tags(d.Tags, d.TagText),
		DemoText: demo,
	}
}

// SongPatch holds optional overrides for an existing song. Nil fields are left unchanged.
//
// ID is accepted so callers can pass a whole record back, but [Song.Merge] ignores it.
type SongPatch struct {
	ID       *string
	Name     *string
	Composer *string
	Lyrics   *string
	Tags     []string
	TagText  *string
	DemoText *string
}

// Merge returns a copy of s with the patch fields applied.
//
// The ID is always kept. Tags are replaced only when the patch carries Tags or TagText,
// and an empty demo text falls back to the existing one, then to [DefaultDemoText].
func (s Song) Merge(p SongPatch) Song {
	out := s.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Composer != nil {
		out.Composer = *p.Composer
	}
	if p.Lyrics != nil {
		out.Lyrics = *p.Lyrics
	}

	switch {
	case p.TagText != nil:
		out.Tags = shared.SplitTags(*p.TagText)
	case p.Tags != nil:
		out.Tags = slices.Clone(p.Tags)
	}

	if p.DemoText != nil && *p.DemoText != "" {
		out.DemoText = *p.DemoText
	}
	if out.DemoText == "" {
		out.DemoText = DefaultDemoText
	}

	out.ID = s.ID
	return out
}

// SeedSongs returns the sample songs written when the catalog is empty.
func SeedSongs() []Song {
	return []Song{
		{
			ID:       "1",
			Name:     "Amazing Grace",
			Composer: "John Newton",
			Lyrics:   "Amazing grace, how sweet the sound\nThat saved a wretch like me.\nI once was lost, but now am found,\nWas blind, but now I see.",
			Tags:     []string{"hymn", "classic", "worship"},
			DemoText: DefaultDemoText,
		},
		{
			ID:       "2",
			Name:     "How Great Thou Art",
			Composer: "Carl Boberg",
			Lyrics:   "O Lord my God, when I in awesome wonder\nConsider all the worlds Thy hands have made,\nI see the stars, I hear the rolling thunder,\nThy power throughout the universe displayed.",
			Tags:     []string{"hymn", "worship", "traditional"},
			DemoText: DefaultDemoText,
		},
		{
			ID:       "3",
			Name:     "It Is Well",
			Composer: "Horatio Spafford",
			Lyrics:   "When peace like a river attendeth my way,\nWhen sorrows like sea billows roll,\nWhatever my lot, Thou hast taught me to say,\nIt is well, it is well with my soul.",
			Tags:     []string{"hymn", "peace", "classic"},
			DemoText: DefaultDemoText,
		},
	}
}
