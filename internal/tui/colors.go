package tui

import (
	"github.com/charmbracelet/lipgloss"

	"agaxfeed/internal/blog"
)

func lightBlue() lipgloss.Color {
	return lipgloss.Color("#87CEEB")
}

func darkBlue() lipgloss.Color {
	return lipgloss.Color("#4682B4")
}

func errorRed() lipgloss.Color {
	return lipgloss.Color("1")
}

func muted() lipgloss.Color {
	return lipgloss.Color("8")
}

// sourceColor is the accent colour of the blog, darkBlue when unset.
func sourceColor(src *blog.Source) lipgloss.Color {
	if src == nil || src.Color == "" {
		return darkBlue()
	}
	return lipgloss.Color(src.Color)
}

// badge renders the source name on its accent colour.
func badge(src *blog.Source) string {
	if src == nil {
		return ""
	}
	name := src.Name
	if name == "" {
		name = src.ID
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(sourceColor(src)).
		Render(name)
}
