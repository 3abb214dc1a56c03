// package formatter provides functions to export song data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/songbook/internal/audio"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"gopkg.in/yaml.v3"
)

const defaultTitle = "Songbook"

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	YAML     Format = "yaml"
)

// Formats lists the supported export formats.
var Formats = []Format{CSV, Markdown, Text, YAML}

// ParseFormat maps a format name or file extension to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want one of %v)", shared.ErrInvalidArgument, s, Formats)
	}
}

// FormatForPath infers the format from path's extension, falling back to fallback.
func FormatForPath(path string, fallback Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return fallback
}

// audioColumn describes a song's audio without inlining stored file payloads.
func audioColumn(ref *models.AudioReference) string {
	e := audio.Classify(ref)
	switch {
	case !e.Valid():
		return e.Status()
	case e.Variant == audio.DirectFile && strings.HasPrefix(e.Source, "data:"):
		return "attached file"
	default:
		return e.Source
	}
}

// ExportToCSV converts songs to CSV format with columns: ID, Name, Composer, Tags, Audio, Lyrics
func ExportToCSV(songs []models.SongDetail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Composer", "Tags", "Audio", "Lyrics"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.ID,
			song.Name,
			song.Composer,
			strings.Join(song.Tags, ", "),
			audioColumn(song.Audio),
			song.Lyrics,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts songs to a Markdown songbook with one section per song
func ExportToMarkdown(title string, songs []models.SongDetail) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = defaultTitle
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(songs))

	buf.WriteString("## Contents\n\n")
	for i, song := range songs {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, song.Name)
	}

	for _, song := range songs {
		fmt.Fprintf(&buf, "\n## %s\n\n", song.Name)
		if song.Composer != "" {
			fmt.Fprintf(&buf, "*by %s*\n\n", song.Composer)
		}

		if e := audio.Classify(song.Audio); e.Variant != audio.None {
			fmt.Fprintf(&buf, "**Audio**: %s\n\n", audioColumn(song.Audio))
		}

		for _, line := range strings.Split(song.Lyrics, "\n") {
			if line == "" {
				buf.WriteString(">\n")
				continue
			}
			fmt.Fprintf(&buf, "> %s\n", line)
		}

		if len(song.Tags) > 0 {
			buf.WriteString("\n")
			for i, tag := range song.Tags {
				if i > 0 {
					buf.WriteString(" ")
				}
				fmt.Fprintf(&buf, "`#%s`", tag)
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts songs to plain text format
func ExportToText(songs []models.SongDetail) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Songs: %d\n", len(songs))

	for i, song := range songs {
		fmt.Fprintf(&buf, "\n%d. %s", i+1, song.Name)
		if song.Composer != "" {
			fmt.Fprintf(&buf, " - %s", song.Composer)
		}
		buf.WriteString("\n")
		if len(song.Tags) > 0 {
			fmt.Fprintf(&buf, "Tags: %s\n", strings.Join(song.Tags, ", "))
		}
		if song.Lyrics != "" {
			fmt.Fprintf(&buf, "\n%s\n", song.Lyrics)
		}
	}

	return buf.Bytes(), nil
}

type yamlSong struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Composer string   `yaml:"composer,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	Audio    string   `yaml:"audio,omitempty"`
	DemoText string   `yaml:"demo_text,omitempty"`
	Lyrics   string   `yaml:"lyrics,omitempty"`
}

type yamlBook struct {
	Title string     `yaml:"title"`
	Songs []yamlSong `yaml:"songs"`
}

// ExportToYAML converts songs to a YAML songbook document. Stored audio files
// are summarized the same way as in CSV output.
func ExportToYAML(title string, songs []models.SongDetail) ([]byte, error) {
	if title == "" {
		title = defaultTitle
	}

	book := yamlBook{Title: title, Songs: make([]yamlSong, 0, len(songs))}
	for _, song := range songs {
		entry := yamlSong{
			ID:       song.ID,
			Name:     song.Name,
			Composer: song.Composer,
			Tags:     song.Tags,
			Lyrics:   song.Lyrics,
		}
		if song.Audio != nil {
			entry.Audio = audioColumn(song.Audio)
			entry.DemoText = song.DemoText
		}
		book.Songs = append(book.Songs, entry)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(book); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Export renders songs in the given format.
func Export(format Format, title string, songs []models.SongDetail) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(songs)
	case Markdown:
		return ExportToMarkdown(title, songs)
	case Text:
		return ExportToText(songs)
	case YAML:
		return ExportToYAML(title, songs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders songs in the given format to w.
func Write(w io.Writer, format Format, title string, songs []models.SongDetail) error {
	data, err := Export(format, title, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}

// WriteFile renders songs in the given format to path, creating parent directories as needed.
func WriteFile(path string, format Format, title string, songs []models.SongDetail) error {
	data, err := Export(format, title, songs)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
