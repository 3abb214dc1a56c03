package repositories

import (
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"golang.org/x/text/collate"
)

// SortKey orders search results by song name.
type SortKey string

const (
	SortAZ SortKey = "az"
	SortZA SortKey = "za"
)

// ParseSortKey maps s to a [SortKey]. Unknown values fall back to [SortAZ].
func ParseSortKey(s string) SortKey {
	if SortKey(strings.ToLower(strings.TrimSpace(s))) == SortZA {
		return SortZA
	}
	return SortAZ
}

// ListTags returns every distinct tag in the catalog, sorted.
//
// Comparison is case-sensitive, so "Hymn" and "hymn" are both listed.
func (r *SongRepository) ListTags() []string {
	seen := map[string]struct{}{}
	tags := []string{}
	for _, s := range r.songs {
		for _, tag := range s.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// Search filters songs by query and tags, then sorts them by name.
//
// The query matches case-insensitively against name, composer, lyrics, and tags. A song passes the
// tag filter when any filter tag is a case-insensitive substring of any of its tags. Search never
// mutates the catalog.
func (r *SongRepository) Search(query string, key SortKey, tags []string) []models.Song {
	q := strings.ToLower(query)
	filters := make([]string, 0, len(tags))
	for _, t := range tags {
		filters = append(filters, strings.ToLower(t))
	}

	out := []models.Song{}
	for _, s := range r.songs {
		if matchesQuery(s, q) && matchesTags(s, filters) {
			out = append(out, s.Clone())
		}
	}

	col := collate.New(r.locale)
	slices.SortStableFunc(out, func(a, b models.Song) int {
		c := col.CompareString(a.Name, b.Name)
		if key == SortZA {
			return -c
		}
		return c
	})
	return out
}

func matchesQuery(s models.Song, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Composer), q) ||
		strings.Contains(strings.ToLower(s.Lyrics), q) {
		return true
	}
	return slices.ContainsFunc(s.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

func matchesTags(s models.Song, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), f) {
				return true
			}
		}
	}
	return false
}
