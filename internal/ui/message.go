package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgSongLoaded
)

// songsLoaded is a search result along with the filter that produced it.
type songsLoaded struct {
	query string
	sort  repositories.SortKey
	tags  []string
	songs []models.Song
}

type songLoaded struct {
	detail models.SongDetail
	err    error
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(query string, sort repositories.SortKey, tags []string, songs []models.Song) Msg {
	return Msg{kind: MsgSongsLoaded, data: songsLoaded{query: query, sort: sort, tags: tags, songs: songs}}
}

// songLoadedMsg is the constructor for [MsgSongLoaded]
func songLoadedMsg(detail models.SongDetail, err error) Msg {
	return Msg{kind: MsgSongLoaded, data: songLoaded{detail: detail, err: err}}
}
