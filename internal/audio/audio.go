package audio

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Variant is the player used to present a song's audio.
type Variant string

const (
	None        Variant = "none"
	YouTube     Variant = "youtube"
	GoogleDrive Variant = "googleDrive"
	SoundCloud  Variant = "soundcloud"
	DirectFile  Variant = "directFile"
)

// Label returns a human-readable provider name.
func (v Variant) Label() string {
	switch v {
	case YouTube:
		return "YouTube"
	case GoogleDrive:
		return "Google Drive"
	case SoundCloud:
		return "SoundCloud"
	case DirectFile:
		return "Audio file"
	default:
		return "None"
	}
}

const (
	youTubeIDLength   = 11
	youTubeEmbedBase  = "https://www.youtube.com/embed/"
	driveFileBase     = "https://drive.google.com/file/d/"
	soundCloudPlayer  = "https://w.soundcloud.com/player/?url="
	soundCloudOptions = "&color=%23ff5500&auto_play=false&hide_related=true&show_comments=false&show_user=true&show_reposts=false&show_teaser=false"
)

var youTubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)

// audioTypes covers extensions missing from the platform MIME tables on minimal systems.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// Embed is the result of classifying an audio reference.
type Embed struct {
	Variant Variant `json:"variant"`
	ID      string  `json:"id,omitempty"`     // provider identifier (video or file ID)
	Source  string  `json:"source,omitempty"` // payload after normalization
	Target  string  `json:"target,omitempty"` // URL to embed or stream
	Err     error   `json:"-"`
}

// Valid reports whether the embed can be rendered as a player.
func (e Embed) Valid() bool {
	return e.Variant != None && e.Err == nil
}

// Status is the one-line summary shown in place of, or above, the player.
func (e Embed) Status() string {
	switch {
	case e.Variant == None:
		return "No audio available"
	case e.Err != nil:
		return "Invalid " + e.Variant.Label() + " URL"
	case e.ID != "":
		return e.Variant.Label() + " · " + e.ID
	default:
		return e.Variant.Label()
	}
}

// Classify determines the player variant for ref and extracts its provider identifier.
func Classify(ref *models.AudioReference) Embed {
	if ref == nil {
		return Embed{Variant: None}
	}

	source := ref.Payload
	var variant Variant

	switch ref.Kind {
	case models.AudioFile:
		variant = DirectFile
	case models.AudioYouTube:
		variant = YouTube
	default:
		variant, source = detect(strings.TrimSpace(ref.Payload))
	}

	e := Embed{Variant: variant, Source: source}

	switch variant {
	case YouTube:
		id, err := YouTubeID(source)
		if err != nil {
			e.Err = err
			return e
		}
		e.ID = id
		e.Target = youTubeEmbedBase + id
	case GoogleDrive:
		id, err := DriveFileID(source)
		if err != nil {
			e.Err = err
			return e
		}
		e.ID = id
		e.Target = driveFileBase + id + "/preview"
	case SoundCloud:
		e.Target = soundCloudPlayer + encodeURIComponent(source) + soundCloudOptions
	case DirectFile:
		e.Target = source
	}

	return e
}

// detect infers the variant of an unclassified link and normalizes Drive links to end in /view.
func detect(link string) (Variant, string) {
	switch {
	case containsFold(link, "youtube.com"), containsFold(link, "youtu.be"):
		return YouTube, link
	case containsFold(link, "drive.google.com"):
		if !hasSuffixFold(link, "/view") {
			if strings.HasSuffix(link, "/") {
				link += "view"
			} else {
				link += "/view"
			}
		}
		return GoogleDrive, link
	case containsFold(link, "soundcloud.com"):
		return SoundCloud, link
	default:
		return DirectFile, link
	}
}

// IsYouTubeURL reports whether link points at youtube.com or youtu.be.
func IsYouTubeURL(link string) bool {
	return youTubeURLPattern.MatchString(link)
}

// KindFor returns the stored kind for a pasted URL.
func KindFor(link string) models.AudioKind {
	if IsYouTubeURL(link) {
		return models.AudioYouTube
	}
	return models.AudioURL
}

// YouTubeID extracts the 11-character video ID from a youtu.be, watch or embed link.
func YouTubeID(link string) (string, error) {
	var id string

	switch {
	case indexFold(link, "youtu.be/") >= 0:
		id = after(link, "youtu.be/", "#?&")
	case indexFold(link, "youtube.com/watch") >= 0:
		_, rawQuery, found := strings.Cut(link, "?")
		if !found {
			break
		}
		rawQuery, _, _ = strings.Cut(rawQuery, "#")
		// ParseQuery keeps every pair it could decode, so a bad pair elsewhere in the
		// query does not hide a valid v.
		values, _ := url.ParseQuery(rawQuery)
		id = values.Get("v")
	case indexFold(link, "embed/") >= 0:
		id = after(link, "embed/", "#?&")
	}

	id = strings.TrimSpace(id)
	if utf8.RuneCountInString(id) != youTubeIDLength {
		return "", fmt.Errorf("%w: no YouTube video ID in %q", shared.ErrInvalidLink, link)
	}
	return id, nil
}

// DriveFileID extracts the file ID from a Google Drive sharing link.
func DriveFileID(link string) (string, error) {
	var id string

	switch {
	case indexFold(link, "/file/d/") >= 0:
		id = after(link, "/file/d/", "/?")
	case indexFold(link, "/d/") >= 0:
		id = after(link, "/d/", "/?")
	case indexFold(link, "id=") >= 0:
		id = after(link, "id=", "&?")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: no Google Drive file ID in %q", shared.ErrInvalidLink, link)
	}
	return id, nil
}

// DataURL encodes file contents as a base64 data URL, using the file name to pick the MIME type.
func DataURL(data []byte, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	mimeType, ok := audioTypes[ext]
	if !ok {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// after returns the text following the first case-insensitive occurrence of marker,
// up to the first byte in stops.
func after(s, marker, stops string) string {
	i := indexFold(s, marker)
	if i < 0 {
		return ""
	}
	rest := s[i+len(marker):]
	if j := strings.IndexAny(rest, stops); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// indexFold is a case-insensitive [strings.Index] for ASCII needles that preserves byte offsets in s.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

func containsFold(s, substr string) bool {
	return indexFold(s, substr) >= 0
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// encodeURIComponent escapes s the way browsers do for URL query components.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}
	return escaped
}
