package repositories

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/shared"
)

// Store keys for display preferences.
const (
	ThemeKey    = "theme"
	ViewModeKey = "viewMode"
)

// Themes lists the known color themes. The first is the default.
var Themes = []string{"softSky", "midnight", "forest"}

// ViewModes lists the known catalog layouts. The first is the default.
var ViewModes = []string{"list", "grid"}

// PreferenceRepository reads and writes display preferences kept alongside the catalog.
type PreferenceRepository struct {
	store Store
}

// NewPreferenceRepository creates a PreferenceRepository backed by store.
func NewPreferenceRepository(store Store) *PreferenceRepository {
	return &PreferenceRepository{store: store}
}

// Theme returns the stored theme, writing back the default when unset or unknown.
func (p *PreferenceRepository) Theme() (string, error) {
	return p.get(ThemeKey, Themes)
}

// SetTheme stores theme, which must be one of [Themes].
func (p *PreferenceRepository) SetTheme(theme string) error {
	return p.set(ThemeKey, theme, Themes)
}

// ViewMode returns the stored layout, writing back the default when unset or unknown.
func (p *PreferenceRepository) ViewMode() (string, error) {
	return p.get(ViewModeKey, ViewModes)
}

// SetViewMode stores mode, which must be one of [ViewModes].
func (p *PreferenceRepository) SetViewMode(mode string) error {
	return p.set(ViewModeKey, mode, ViewModes)
}

// Get returns the preference stored under key. Only [ThemeKey] and [ViewModeKey] are known.
func (p *PreferenceRepository) Get(key string) (string, error) {
	allowed, err := allowedValues(key)
	if err != nil {
		return "", err
	}
	return p.get(key, allowed)
}

// Set stores value under key. Only [ThemeKey] and [ViewModeKey] are known.
func (p *PreferenceRepository) Set(key, value string) error {
	allowed, err := allowedValues(key)
	if err != nil {
		return err
	}
	return p.set(key, value, allowed)
}

func allowedValues(key string) ([]string, error) {
	switch key {
	case ThemeKey:
		return Themes, nil
	case ViewModeKey:
		return ViewModes, nil
	default:
		return nil, fmt.Errorf("%w: unknown preference %q (want %s or %s)", shared.ErrInvalidArgument, key, ThemeKey, ViewModeKey)
	}
}

func (p *PreferenceRepository) get(key string, allowed []string) (string, error) {
	value, ok, err := p.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	if ok && slices.Contains(allowed, value) {
		return value, nil
	}

	value = allowed[0]
	if err := p.store.SetMany(map[string]string{key: value}); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return value, nil
}

func (p *PreferenceRepository) set(key, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %q is not a valid %s (want one of %s)",
			shared.ErrInvalidArgument, value, key, strings.Join(allowed, ", "))
	}
	if err := p.store.SetMany(map[string]string{key: value}); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}
