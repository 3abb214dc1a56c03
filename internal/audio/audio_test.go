package audio

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

func TestYouTubeID(t *testing.T) {
	tc := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{name: "short link with timestamp", link: "https://youtu.be/dQw4w9WgXcQ?t=5", want: "dQw4w9WgXcQ"},
		{name: "watch link with playlist", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=XYZ", want: "dQw4w9WgXcQ"},
		{name: "watch link with fragment", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ#t=1", want: "dQw4w9WgXcQ"},
		{name: "embed link", link: "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", want: "dQw4w9WgXcQ"},
		{name: "uppercase host keeps id case", link: "HTTPS://YOUTU.BE/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short id", link: "https://youtu.be/abc", wantErr: true},
		{name: "watch without query", link: "https://www.youtube.com/watch", wantErr: true},
		{name: "watch without v", link: "https://www.youtube.com/watch?list=XYZ", wantErr: true},
		{name: "channel link", link: "https://www.youtube.com/@choir", wantErr: true},
		{name: "malformed query", link: "https://www.youtube.com/watch?v=%zz", wantErr: true},
		{name: "watch link with semicolon in query", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1;x", want: "dQw4w9WgXcQ"},
		{name: "watch link with bad escape after v", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&si=%zz", want: "dQw4w9WgXcQ"},
		{name: "watch link with bad escape before v", link: "https://www.youtube.com/watch?si=%zz&v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := YouTubeID(tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("YouTubeID(%q) error = %v, wantErr %v", tt.link, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidLink) {
					t.Errorf("expected ErrInvalidLink, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("YouTubeID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestDriveFileID(t *testing.T) {
	tc := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{name: "file link", link: "https://drive.google.com/file/d/1A2B3C/view?usp=sharing", want: "1A2B3C"},
		{name: "short d link", link: "https://drive.google.com/d/1A2B3C/edit", want: "1A2B3C"},
		{name: "id parameter", link: "https://drive.google.com/uc?id=1A2B3C&export=download", want: "1A2B3C"},
		{name: "no identifier", link: "https://drive.google.com/drive/my-drive", wantErr: true},
		{name: "empty file segment", link: "https://drive.google.com/file/d//view", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DriveFileID(tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DriveFileID(%q) error = %v, wantErr %v", tt.link, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DriveFileID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("nil reference", func(t *testing.T) {
		e := Classify(nil)
		if e.Variant != None {
			t.Errorf("expected None, got %s", e.Variant)
		}
		if e.Valid() {
			t.Error("None embed should not be valid")
		}
	})

	t.Run("stored file plays directly", func(t *testing.T) {
		ref := &models.AudioReference{Kind: models.AudioFile, Payload: "data:audio/mpeg;base64,AAAA"}
		e := Classify(ref)
		if e.Variant != DirectFile || e.Target != ref.Payload || !e.Valid() {
			t.Errorf("unexpected embed %+v", e)
		}
	})

	t.Run("stored file is not reinterpreted by content", func(t *testing.T) {
		ref := &models.AudioReference{Kind: models.AudioFile, Payload: "https://youtu.be/dQw4w9WgXcQ"}
		if e := Classify(ref); e.Variant != DirectFile {
			t.Errorf("expected DirectFile, got %s", e.Variant)
		}
	})

	t.Run("pre-classified youtube", func(t *testing.T) {
		ref := &models.AudioReference{Kind: models.AudioYouTube, Payload: "https://youtu.be/dQw4w9WgXcQ"}
		e := Classify(ref)
		if e.Variant != YouTube || e.ID != "dQw4w9WgXcQ" {
			t.Fatalf("unexpected embed %+v", e)
		}
		if e.Target != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
			t.Errorf("unexpected target %s", e.Target)
		}
	})

	t.Run("url detected as youtube", func(t *testing.T) {
		e := Classify(&models.AudioReference{Kind: models.AudioURL, Payload: "  https://m.YouTube.com/watch?v=dQw4w9WgXcQ  "})
		if e.Variant != YouTube || e.ID != "dQw4w9WgXcQ" {
			t.Errorf("unexpected embed %+v", e)
		}
	})

	t.Run("invalid youtube link degrades", func(t *testing.T) {
		e := Classify(&models.AudioReference{Kind: models.AudioURL, Payload: "https://youtu.be/abc"})
		if e.Variant != YouTube {
			t.Fatalf("expected YouTube variant, got %s", e.Variant)
		}
		if !errors.Is(e.Err, shared.ErrInvalidLink) {
			t.Errorf("expected ErrInvalidLink, got %v", e.Err)
		}
		if e.Valid() || e.Target != "" {
			t.Errorf("invalid embed should have no target: %+v", e)
		}
	})

	t.Run("drive link gets /view appended", func(t *testing.T) {
		tc := []struct {
			payload string
			source  string
		}{
			{"https://drive.google.com/file/d/1A2B3C", "https://drive.google.com/file/d/1A2B3C/view"},
			{"https://drive.google.com/file/d/1A2B3C/", "https://drive.google.com/file/d/1A2B3C/view"},
			{"https://drive.google.com/file/d/1A2B3C/view", "https://drive.google.com/file/d/1A2B3C/view"},
			{"https://drive.google.com/file/d/1A2B3C/view?usp=sharing", "https://drive.google.com/file/d/1A2B3C/view?usp=sharing/view"},
		}

		for _, tt := range tc {
			e := Classify(&models.AudioReference{Kind: models.AudioURL, Payload: tt.payload})
			if e.Variant != GoogleDrive {
				t.Fatalf("expected GoogleDrive for %q, got %s", tt.payload, e.Variant)
			}
			if e.Source != tt.source {
				t.Errorf("Source = %q, want %q", e.Source, tt.source)
			}
			if e.ID != "1A2B3C" {
				t.Errorf("ID = %q, want 1A2B3C", e.ID)
			}
			if e.Target != "https://drive.google.com/file/d/1A2B3C/preview" {
				t.Errorf("unexpected target %s", e.Target)
			}
		}
	})

	t.Run("drive link without id degrades", func(t *testing.T) {
		e := Classify(&models.AudioReference{Kind: models.AudioURL, Payload: "https://drive.google.com/drive/folders"})
		if e.Variant != GoogleDrive || !errors.Is(e.Err, shared.ErrInvalidLink) {
			t.Errorf("unexpected embed %+v", e)
		}
	})

	t.Run("soundcloud passes the encoded url through", func(t *testing.T) {
		link := "https://soundcloud.com/choir/it-is-well"
		e := Classify(&models.AudioReference{Kind: models.AudioURL, Payload: link})
		if e.Variant != SoundCloud {
			t.Fatalf("expected SoundCloud, got %s", e.Variant)
		}
		want := "https://w.soundcloud.com/player/?url=https%3A%2F%2Fsoundcloud.com%2Fchoir%2Fit-is-well&color=%23ff5500"
		if !strings.HasPrefix(e.Target, want) {
			t.Errorf("target %q does not start with %q", e.Target, want)
		}
	})

	t.Run("other urls play directly", func(t *testing.T) {
		e := Classify(&models.AudioReference{Payload: "https://example.com/songs/grace.mp3"})
		if e.Variant != DirectFile || e.Target != "https://example.com/songs/grace.mp3" {
			t.Errorf("unexpected embed %+v", e)
		}
	})
}

func TestKindFor(t *testing.T) {
	tc := []struct {
		link string
		want models.AudioKind
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", models.AudioYouTube},
		{"youtu.be/dQw4w9WgXcQ", models.AudioYouTube},
		{"http://youtube.com/embed/dQw4w9WgXcQ", models.AudioYouTube},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", models.AudioURL},
		{"https://soundcloud.com/choir/it-is-well", models.AudioURL},
		{"https://youtube.com/", models.AudioURL},
	}

	for _, tt := range tc {
		if got := KindFor(tt.link); got != tt.want {
			t.Errorf("KindFor(%q) = %s, want %s", tt.link, got, tt.want)
		}
	}
}

func TestDataURL(t *testing.T) {
	t.Run("mime from extension", func(t *testing.T) {
		got := DataURL([]byte("abc"), "grace.MP3")
		if got != "data:audio/mpeg;base64,YWJj" {
			t.Errorf("unexpected data URL %q", got)
		}
	})

	t.Run("mime sniffed without extension", func(t *testing.T) {
		got := DataURL([]byte("plain words"), "notes")
		if !strings.HasPrefix(got, "data:text/plain;base64,") {
			t.Errorf("unexpected data URL %q", got)
		}
	})
}

func TestEncodeURIComponent(t *testing.T) {
	got := encodeURIComponent("https://a.com/b c?x=(1)!")
	want := "https%3A%2F%2Fa.com%2Fb%20c%3Fx%3D(1)!"
	if got != want {
		t.Errorf("encodeURIComponent() = %q, want %q", got, want)
	}
}

func TestEmbedStatus(t *testing.T) {
	tc := []struct {
		name string
		ref  *models.AudioReference
		want string
	}{
		{name: "none", ref: nil, want: "No audio available"},
		{
			name: "valid youtube",
			ref:  &models.AudioReference{Kind: models.AudioYouTube, Payload: "https://youtu.be/dQw4w9WgXcQ"},
			want: "YouTube · dQw4w9WgXcQ",
		},
		{
			name: "invalid youtube",
			ref:  &models.AudioReference{Kind: models.AudioYouTube, Payload: "https://youtu.be/short"},
			want: "Invalid YouTube URL",
		},
		{
			name: "invalid drive",
			ref:  &models.AudioReference{Kind: models.AudioURL, Payload: "https://drive.google.com/"},
			want: "Invalid Google Drive URL",
		},
		{
			name: "soundcloud",
			ref:  &models.AudioReference{Kind: models.AudioURL, Payload: "https://soundcloud.com/a/b"},
			want: "SoundCloud",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ref).Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
