package ux

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles for text output
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Active  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Bar     lipgloss.Style
}

// DefaultStyles returns the colored styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Heading: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Value: lipgloss.NewStyle().
			Bold(true),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Bar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")),
	}
}

// PlainStyles renders text without any escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Heading: plain,
		Label:   plain,
		Value:   plain,
		Active:  plain,
		Success: plain,
		Error:   plain,
		Warning: plain,
		Muted:   plain,
		Bar:     plain,
	}
}

// Field renders "label: value".
func (s Styles) Field(label string, value any) string {
	return s.Label.Render(label+":") + " " + s.Value.Render(fmt.Sprint(value))
}

// ProgressBar renders fraction (clamped to [0, 1]) as a bar of width
// cells.
func (s Styles) ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(fraction * float64(width)))
	return "[" + s.Bar.Render(strings.Repeat("#", filled)) + strings.Repeat(".", width-filled) + "]"
}
