package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// palettes maps preference theme names to their stylesheets.
var palettes = map[string]*Palette{
	"softSky":  NewPalette("#0284C7", "#0EA5E9", "#DC2626", "#F59E0B", "#64748B"),
	"midnight": NewPalette("#818CF8", "#A5B4FC", "#F87171", "#FBBF24", "#94A3B8"),
	"forest":   NewPalette("#059669", "#10B981", "#DC2626", "#D97706", "#6B7280"),
}

// PaletteFor returns the palette for theme, falling back to softSky.
func PaletteFor(theme string) *Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes["softSky"]
}

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	accent lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	tag    lipgloss.Style
}

var _ Painter = (*Palette)(nil)

func NewPalette(t, a, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		accent: NewBold(a),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		tag:    NewStyle(a).Faint(true),
	}
}

// On renders s on a background of c.
func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

// As renders s in c.
func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
