package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var menuItems = []string{"Publicacións", "Filtros"}

func pageLayout(content string) string {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(content)
}

// renderMenu draws the page switcher with the active filter summary.
func renderMenu(active int, width int, summary string) string {
	divider := lipgloss.NewStyle().Foreground(muted()).Render(strings.Repeat("─", max(0, width)))

	var styled []string
	for index, label := range menuItems {
		style := lipgloss.NewStyle().Foreground(muted())
		if active == index {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Underline(true)
		}
		item := style.Render(label + " [" + strconv.Itoa(index+1) + "]")
		if index != len(menuItems)-1 {
			item += " | "
		}
		styled = append(styled, item)
	}

	menu := lipgloss.JoinHorizontal(lipgloss.Left, styled...)
	if summary != "" {
		menu = lipgloss.JoinHorizontal(lipgloss.Left, menu, "   ",
			lipgloss.NewStyle().Foreground(lightBlue()).Render(summary))
	}
	return lipgloss.JoinVertical(lipgloss.Left, menu, divider)
}

// centered places a block in the middle of the screen, used by the loading
// and error states.
func centered(width, height int, lines ...string) string {
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if width <= 0 || height <= 0 {
		return block
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
