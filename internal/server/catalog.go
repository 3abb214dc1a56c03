package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/audio"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// CatalogOpts configures a [CatalogHandler].
type CatalogOpts struct {
	Title  string // page heading (default: Songbook)
	Theme  string // one of repositories.Themes (default: the first)
	Logger *log.Logger
}

// CatalogHandler serves the song catalog as HTML pages and JSON.
type CatalogHandler struct {
	mu     sync.RWMutex
	repo   *repositories.SongRepository
	pages  map[string]*template.Template
	title  string
	theme  string
	logger *log.Logger
}

// NewCatalogHandler parses the page templates and returns a handler over repo.
func NewCatalogHandler(repo *repositories.SongRepository, opts CatalogOpts) (*CatalogHandler, error) {
	if opts.Title == "" {
		opts.Title = "Songbook"
	}
	if !slices.Contains(repositories.Themes, opts.Theme) {
		opts.Theme = repositories.Themes[0]
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	pages := map[string]*template.Template{}
	for _, page := range []string{"index", "song"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, err
		}
		pages[page] = t
	}

	return &CatalogHandler{
		repo:   repo,
		pages:  pages,
		title:  opts.Title,
		theme:  opts.Theme,
		logger: opts.Logger,
	}, nil
}

// Register adds the catalog routes to r.
func (h *CatalogHandler) Register(r Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(h.index))
	r.Handle(http.MethodGet, "/songs/{id}", http.HandlerFunc(h.song))
	r.Handle(http.MethodGet, "/api/songs", http.HandlerFunc(h.listSongs))
	r.Handle(http.MethodGet, "/api/songs/{id}", http.HandlerFunc(h.getSong))
	r.Handle(http.MethodGet, "/api/tags", http.HandlerFunc(h.listTags))
}

// searchParams holds the list filters shared by the HTML and JSON list routes.
type searchParams struct {
	Query string
	Sort  repositories.SortKey
	Tags  []string
}

func parseSearch(r *http.Request) searchParams {
	q := r.URL.Query()
	tags := []string{}
	for _, t := range q["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return searchParams{
		Query: q.Get("q"),
		Sort:  repositories.ParseSortKey(q.Get("sort")),
		Tags:  tags,
	}
}

func (h *CatalogHandler) search(p searchParams) []models.Song {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.repo.Search(p.Query, p.Sort, p.Tags)
}

func (h *CatalogHandler) detail(id string) (models.SongDetail, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.repo.GetByID(id)
}

func (h *CatalogHandler) tags() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.repo.ListTags()
}

// Reload re-reads the catalog from its store. Requests block until it finishes.
func (h *CatalogHandler) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.repo.Initialize()
}

// SongResponse is the JSON body for a single song.
type SongResponse struct {
	models.SongDetail
	Embed audio.Embed `json:"embed"`
}

func (h *CatalogHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	songs := h.search(parseSearch(r))
	h.writeJSON(w, http.StatusOK, map[string]any{"songs": songs, "count": len(songs)})
}

func (h *CatalogHandler) getSong(w http.ResponseWriter, r *http.Request) {
	detail, err := h.detail(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, SongResponse{SongDetail: detail, Embed: audio.Classify(detail.Audio)})
}

func (h *CatalogHandler) listTags(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"tags": h.tags()})
}

type tagLink struct {
	Name   string
	Href   string
	Active bool
}

type indexPage struct {
	Title    string
	Theme    string
	Query    string
	Sort     string
	Selected []string
	AllTags  []tagLink
	Songs    []models.Song
	Count    int
}

// tagHref builds the list URL that toggles tag in the current filter.
func tagHref(p searchParams, tag string) string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	v.Set("sort", string(p.Sort))

	selected := slices.Contains(p.Tags, tag)
	for _, t := range p.Tags {
		if t != tag {
			v.Add("tag", t)
		}
	}
	if !selected {
		v.Add("tag", tag)
	}
	return "/?" + v.Encode()
}

func (h *CatalogHandler) index(w http.ResponseWriter, r *http.Request) {
	p := parseSearch(r)
	songs := h.search(p)

	links := []tagLink{}
	for _, tag := range h.tags() {
		links = append(links, tagLink{Name: tag, Href: tagHref(p, tag), Active: slices.Contains(p.Tags, tag)})
	}

	h.render(w, "index", indexPage{
		Title:    h.title,
		Theme:    h.theme,
		Query:    p.Query,
		Sort:     string(p.Sort),
		Selected: p.Tags,
		AllTags:  links,
		Songs:    songs,
		Count:    len(songs),
	})
}

type songPage struct {
	Title    string
	Theme    string
	Song     models.SongDetail
	Embed    audio.Embed
	Player   bool
	AudioSrc template.URL
}

// playableSource returns src when it is safe to hand to an audio element.
func playableSource(src string) (template.URL, bool) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:audio/"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"):
		return template.URL(src), true
	default:
		return "", false
	}
}

func (h *CatalogHandler) song(w http.ResponseWriter, r *http.Request) {
	detail, err := h.detail(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, shared.ErrSongNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page := songPage{
		Title: detail.Name + " · " + h.title,
		Theme: h.theme,
		Song:  detail,
		Embed: audio.Classify(detail.Audio),
	}
	page.Player = page.Embed.Valid()
	if page.Player && page.Embed.Variant == audio.DirectFile {
		page.AudioSrc, page.Player = playableSource(page.Embed.Target)
	}

	h.render(w, "song", page)
}

func (h *CatalogHandler) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
	}
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, shared.ErrSongNotFound) {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HealthHandler reports liveness and the number of songs served.
type HealthHandler struct {
	catalog *CatalogHandler
}

// NewHealthHandler creates a HealthHandler for catalog.
func NewHealthHandler(catalog *CatalogHandler) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.catalog.mu.RLock()
	count := h.catalog.repo.Len()
	h.catalog.mu.RUnlock()

	h.catalog.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "songs": count})
}

// NewRouter wires the catalog and health handlers behind the standard middleware stack.
func NewRouter(catalog *CatalogHandler, cfg shared.ServerConfig, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), RateLimit(cfg.RateLimit, cfg.Burst))
	catalog.Register(router)
	router.Handler(NewHealthHandler(catalog))
	return router
}
