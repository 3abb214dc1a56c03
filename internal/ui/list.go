package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songbook/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Name }
func (i songItem) Title() string       { return i.song.Name }
func (i songItem) Description() string {
	parts := []string{}
	if i.song.Composer != "" {
		parts = append(parts, i.song.Composer)
	}
	if len(i.song.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.song.Tags, " #"))
	}
	return strings.Join(parts, " • ")
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		items[i] = songItem{song: s}
	}
	return items
}
