package tui

import (
	"fmt"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agaxfeed/internal/filter"
	"agaxfeed/internal/loader"
)

const (
	focusSearch = iota
	focusFrom
	focusTo
	focusSources
	focusCount
)

// filtersPage edits the loader criteria. Search text is applied after the
// debounce delay, dates on enter and source chips on toggle.
type filtersPage struct {
	loader   *loader.Loader
	debounce time.Duration

	inputs [focusSources]textinput.Model
	focus  int
	chip   int
	seq    int
	err    error
	width  int
	height int
}

func newFiltersPage(l *loader.Loader, debounce time.Duration) filtersPage {
	return filtersPage{
		loader:   l,
		debounce: debounce,
		inputs: [focusSources]textinput.Model{
			newInput("título da publicación", 40),
			newInput("AAAA-MM-DD", 12),
			newInput("AAAA-MM-DD", 12),
		},
	}
}

func newInput(placeholder string, width int) textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.Width = width
	return input
}

// chips are the source filter choices, "all" first.
func (m filtersPage) chips() []string {
	ids := []string{filter.AllSources}
	for _, src := range m.loader.Sources() {
		ids = append(ids, src.ID)
	}
	return ids
}

// cleared empties every field after the criteria were reset.
func (m filtersPage) cleared() filtersPage {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.chip = 0
	m.err = nil
	m.seq++
	return m
}

func (m filtersPage) setFocus(focus int) (filtersPage, tea.Cmd) {
	m.focus = (focus + focusCount) % focusCount
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, cmd
}

func (m filtersPage) Init() tea.Cmd {
	return nil
}

func (m filtersPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return goToTableMsg{} }
		case "tab", "down":
			return m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m.setFocus(m.focus - 1)
		case "ctrl+x":
			return m, func() tea.Msg { return clearFiltersMsg{} }
		}

		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusFrom, focusTo:
			if msg.Type == tea.KeyEnter {
				return m.applyDates()
			}
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return m, cmd
		case focusSources:
			return m.updateChips(msg)
		}
	case searchTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loader.SetSearch(m.inputs[focusSearch].Value())
		return m, func() tea.Msg { return criteriaChangedMsg{} }
	case goToFiltersMsg:
		return m.setFocus(m.focus)
	case tea.WindowSizeMsg:
		m.width = msg.Width - 2
		m.height = msg.Height
	}

	return m, nil
}

func (m filtersPage) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.seq++
		m.loader.SetSearch(m.inputs[focusSearch].Value())
		return m, tea.Batch(
			func() tea.Msg { return criteriaChangedMsg{} },
			func() tea.Msg { return goToTableMsg{} },
		)
	}

	before := m.inputs[focusSearch].Value()
	var cmd tea.Cmd
	m.inputs[focusSearch], cmd = m.inputs[focusSearch].Update(msg)
	if m.inputs[focusSearch].Value() == before {
		return m, cmd
	}

	m.seq++
	if m.debounce <= 0 {
		m.loader.SetSearch(m.inputs[focusSearch].Value())
		return m, tea.Batch(cmd, func() tea.Msg { return criteriaChangedMsg{} })
	}
	seq := m.seq
	return m, tea.Batch(cmd, tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	}))
}

func (m filtersPage) applyDates() (tea.Model, tea.Cmd) {
	err := m.loader.SetDateRange(m.inputs[focusFrom].Value(), m.inputs[focusTo].Value())
	if err != nil {
		m.err = fmt.Errorf("data non válida, usa AAAA-MM-DD: %w", err)
		return m, nil
	}
	m.err = nil
	return m, func() tea.Msg { return criteriaChangedMsg{} }
}

func (m filtersPage) updateChips(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chips := m.chips()
	switch msg.String() {
	case "left", "h":
		m.chip = (m.chip - 1 + len(chips)) % len(chips)
	case "right", "l":
		m.chip = (m.chip + 1) % len(chips)
	case "enter", " ":
		m.loader.ToggleSource(chips[m.chip])
		return m, func() tea.Msg { return criteriaChangedMsg{} }
	}
	return m, nil
}

func (m filtersPage) View() string {
	label := lipgloss.NewStyle().Foreground(darkBlue()).Bold(true).MarginTop(1)

	box := func(i int) string {
		border := muted()
		if m.focus == i {
			border = lipgloss.Color("15")
		}
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(border).
			Render(m.inputs[i].View())
	}

	dates := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, label.Render("Desde"), box(focusFrom)),
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, label.Render("Ata"), box(focusTo)),
	)

	count := lipgloss.NewStyle().Foreground(lightBlue()).MarginTop(1).
		Render(fmt.Sprintf("%d de %d publicacións", len(m.loader.Filtered()), len(m.loader.Aggregate())))

	var errLine string
	if m.err != nil {
		errLine = lipgloss.NewStyle().Foreground(errorRed()).Render(m.err.Error())
	}

	help := helpBar([]string{
		"Tab: seguinte campo",
		"Enter: aplicar",
		"←/→: blog",
		"ctrl+x: limpar todo",
		"Esc: volver",
	})

	content := lipgloss.JoinVertical(lipgloss.Left,
		renderMenu(1, m.width, criteriaSummary(m.loader)),
		label.Render("Buscar"),
		box(focusSearch),
		dates,
		label.Render("Blogs"),
		m.renderChips(),
		count,
		errLine,
		lipgloss.NewStyle().MarginTop(1).Render(help),
	)

	return pageLayout(content)
}

func (m filtersPage) renderChips() string {
	active := m.loader.Criteria().SourceID
	if active == "" {
		active = filter.AllSources
	}

	var chips []string
	for i, id := range m.chips() {
		name := "Todos"
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(muted())
		if src, ok := m.loader.Source(id); ok {
			name = src.Name
			if id == active {
				style = style.Foreground(lipgloss.Color("15")).Background(sourceColor(src))
			}
		} else if id == active {
			style = style.Foreground(lipgloss.Color("0")).Background(lightBlue())
		}
		if m.focus == focusSources && i == m.chip {
			style = style.Underline(true).Bold(true)
		}
		chips = append(chips, style.Render(name), " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, chips...)
}
