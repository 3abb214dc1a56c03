// Package ui implements an interactive terminal song browser using bubbletea's Elm architecture.
//
// The TUI has four views:
//  1. [SongListView] : Browse songs sorted by name
//  2. [SearchView] : Type to filter by name, composer, lyrics or tags (/)
//  3. [TagPickerView] : Toggle tag filters with space, apply with enter, clear with esc (t)
//  4. [DetailView] : Read a song's lyrics, tags and audio summary (enter)
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg
// union type. Colors come from the theme stored in preferences; see [PaletteFor].
package ui
