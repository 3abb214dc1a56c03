package ui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/audio"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	SearchView
	TagPickerView
	DetailView
)

// Catalog is the read-only subset of repositories.SongRepository the TUI needs.
type Catalog interface {
	Search(query string, key repositories.SortKey, tags []string) []models.Song
	ListTags() []string
	GetByID(id string) (models.SongDetail, error)
}

// Options configures a [Model].
type Options struct {
	Theme  string // preference theme name; see repositories.Themes
	Logger *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	view    ViewState
	catalog Catalog
	styles  *Palette
	logger  *log.Logger
	width   int
	height  int

	songList list.Model
	songs    []models.Song
	input    textinput.Model
	query    string
	sort     repositories.SortKey
	tags     []string

	tagChoices []string
	pending    map[string]bool
	tagCursor  int

	detail  viewport.Model
	current *models.SongDetail

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model browsing catalog.
func NewModel(catalog Catalog, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	songList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songList.SetFilteringEnabled(false)
	songList.SetShowHelp(false)
	songList.Title = "Songs"

	input := textinput.New()
	input.Placeholder = "Search name, composer, lyrics or tags"
	input.Prompt = "/ "

	return &Model{
		view:     SongListView,
		catalog:  catalog,
		styles:   PaletteFor(opts.Theme),
		logger:   opts.Logger,
		songList: songList,
		input:    input,
		sort:     repositories.SortAZ,
		tags:     []string{},
		pending:  map[string]bool{},
		detail:   viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the initial song list.
func (m *Model) Init() tea.Cmd {
	return m.loadSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 6
		if m.current != nil {
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case TagPickerView:
			return m.handleTagKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSongsLoaded:
			loaded := msg.data.(songsLoaded)
			if loaded.query != m.query || loaded.sort != m.sort || !slices.Equal(loaded.tags, m.tags) {
				m.logger.Debug("dropping stale search result", "query", loaded.query)
				return m, nil
			}
			m.songs = loaded.songs
			m.songList.Title = m.listTitle()
			return m, m.songList.SetItems(songItems(m.songs))
		case MsgSongLoaded:
			loaded := msg.data.(songLoaded)
			if loaded.err != nil {
				m.err = loaded.err
				return m, nil
			}
			m.err = nil
			m.current = &loaded.detail
			m.detail.SetContent(m.renderDetail())
			m.detail.GotoTop()
			m.view = DetailView
			return m, nil
		}
	}

	if m.view == SongListView {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SongListView, SearchView:
		return m.renderList()
	case TagPickerView:
		return m.renderTagPicker()
	case DetailView:
		return m.renderDetailView()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.input.SetValue(m.query)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.sort):
		if m.sort == repositories.SortZA {
			m.sort = repositories.SortAZ
		} else {
			m.sort = repositories.SortZA
		}
		m.logger.Debug("sort changed", "sort", m.sort)
		return m, m.loadSongs()
	case key.Matches(msg, m.keys.tags):
		m.openTagPicker()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			return m, m.openSong(item.song.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.query == "" && len(m.tags) == 0 {
			return m, nil
		}
		m.query = ""
		m.tags = []string{}
		return m, m.loadSongs()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.input.Blur()
		m.view = SongListView
		return m, nil
	case "esc":
		m.input.Blur()
		m.input.SetValue("")
		m.query = ""
		m.view = SongListView
		return m, m.loadSongs()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == m.query {
		return m, cmd
	}
	m.query = m.input.Value()
	return m, tea.Batch(cmd, m.loadSongs())
}

func (m *Model) openTagPicker() {
	m.tagChoices = m.catalog.ListTags()
	m.pending = map[string]bool{}
	for _, t := range m.tags {
		m.pending[t] = true
	}
	m.tagCursor = 0
	m.view = TagPickerView
}

func (m *Model) handleTagKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.tagCursor > 0 {
			m.tagCursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.tagCursor < len(m.tagChoices)-1 {
			m.tagCursor++
		}
	case key.Matches(msg, m.keys.toggle):
		if len(m.tagChoices) > 0 {
			tag := m.tagChoices[m.tagCursor]
			m.pending[tag] = !m.pending[tag]
		}
	case key.Matches(msg, m.keys.enter):
		m.tags = []string{}
		for _, t := range m.tagChoices {
			if m.pending[t] {
				m.tags = append(m.tags, t)
			}
		}
		m.view = SongListView
		m.logger.Debug("tag filter applied", "tags", m.tags)
		return m, m.loadSongs()
	case key.Matches(msg, m.keys.back):
		m.tags = []string{}
		m.pending = map[string]bool{}
		m.view = SongListView
		return m, m.loadSongs()
	}
	return m, nil
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SongListView
		m.current = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) loadSongs() tea.Cmd {
	query, sort, tags := m.query, m.sort, slices.Clone(m.tags)
	return func() tea.Msg {
		return songsLoadedMsg(query, sort, tags, m.catalog.Search(query, sort, tags))
	}
}

func (m *Model) openSong(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.catalog.GetByID(id)
		return songLoadedMsg(detail, err)
	}
}

func (m *Model) listTitle() string {
	parts := []string{"Songs"}
	if m.sort == repositories.SortZA {
		parts = append(parts, "Z-A")
	} else {
		parts = append(parts, "A-Z")
	}
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("%q", m.query))
	}
	if len(m.tags) > 0 {
		parts = append(parts, "#"+strings.Join(m.tags, " #"))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderList() string {
	var b strings.Builder
	b.WriteString(m.songList.View())

	if len(m.songs) == 0 {
		b.WriteString("\n" + m.styles.warn.Render("No songs found"))
	}
	if m.view == SearchView {
		b.WriteString("\n" + m.input.View())
	}
	if m.err != nil {
		b.WriteString("\n" + m.styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	var helpKeys []key.Binding
	if m.view == SearchView {
		helpKeys = []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	} else {
		helpKeys = []key.Binding{m.keys.enter, m.keys.search, m.keys.sort, m.keys.tags, m.keys.quit}
	}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderTagPicker() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Select Tags"))
	b.WriteString("\n")

	if len(m.tagChoices) == 0 {
		b.WriteString(m.styles.warn.Render("No tags yet") + "\n")
	}
	for i, tag := range m.tagChoices {
		cursor := "  "
		if i == m.tagCursor {
			cursor = m.styles.accent.Render("> ")
		}
		check := "[ ]"
		if m.pending[tag] {
			check = m.styles.accent.Render("[x]")
		}
		fmt.Fprintf(&b, "%s%s #%s\n", cursor, check, tag)
	}

	apply := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	clearKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.toggle, apply, clearKey}))
	return b.String()
}

// renderDetail builds the scrollable song page.
func (m *Model) renderDetail() string {
	if m.current == nil {
		return ""
	}
	s := m.current

	var b strings.Builder
	b.WriteString(m.styles.title.Render(s.Name) + "\n")
	if s.Composer != "" {
		b.WriteString(m.styles.help.Render("by "+s.Composer) + "\n")
	}
	b.WriteString("\n" + s.DemoText + "\n")

	e := audio.Classify(s.Audio)
	switch {
	case e.Variant == audio.None:
		b.WriteString(m.styles.help.Render(e.Status()) + "\n")
	case e.Err != nil:
		b.WriteString(m.styles.warn.Render(e.Status()) + "\n")
	default:
		width := m.detail.Width
		if width <= 0 {
			width = 80
		}
		b.WriteString(m.styles.accent.Render("♪ "+e.Status()) + "\n")
		b.WriteString(m.styles.help.Render(shared.Truncate(e.Target, width)) + "\n")
	}

	b.WriteString("\n" + s.Lyrics + "\n")

	if len(s.Tags) > 0 {
		tags := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			tags[i] = m.styles.tag.Render("#" + t)
		}
		b.WriteString("\n" + strings.Join(tags, " ") + "\n")
	}
	return b.String()
}

func (m *Model) renderDetailView() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.detail.View(), m.help.ShortHelpView(helpKeys))
}
