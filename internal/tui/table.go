package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/loader"
	"agaxfeed/internal/pager"
)

const (
	dateWidth   = 22
	sourceWidth = 18
	labelsWidth = 26
	// menu, table borders and header, status and help lines
	tableChrome = 9
)

// tablePage lists the posts handed out by the loader so far. Reaching the
// last row pulls the next page.
type tablePage struct {
	loader *loader.Loader
	posts  []blog.Post
	state  pager.State

	cursor     int
	top        int
	width      int
	height     int
	titleWidth int
}

func newTablePage(l *loader.Loader) tablePage {
	return tablePage{loader: l, width: 100, height: 24, titleWidth: 30}
}

func (m tablePage) Init() tea.Cmd {
	return nil
}

// reset rewinds the window and shows the first page of the current view.
func (m tablePage) reset() tablePage {
	m.loader.Rewind()
	m.posts = nil
	m.cursor = 0
	m.top = 0
	page := m.loader.NextPage()
	m.posts = append(m.posts, page.Posts...)
	m.state = page.State
	return m
}

func (m tablePage) loadMore() tablePage {
	if m.state != pager.HasMore {
		return m
	}
	page := m.loader.NextPage()
	m.posts = append(m.posts, page.Posts...)
	m.state = page.State
	return m
}

func (m tablePage) visibleRows() int {
	return max(3, m.height-tableChrome)
}

func (m tablePage) scrolled() tablePage {
	rows := m.visibleRows()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
	return m
}

func (m tablePage) selected() (blog.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.posts) {
		return blog.Post{}, false
	}
	return m.posts[m.cursor], true
}

func (m tablePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "enter", " ":
			if p, ok := m.selected(); ok {
				return m, func() tea.Msg { return openPostMsg{post: p} }
			}
			return m, nil
		case "2", "/":
			return m, func() tea.Msg { return goToFiltersMsg{} }
		case "c":
			return m, func() tea.Msg { return clearFiltersMsg{} }
		case "r":
			return m, func() tea.Msg { return reloadMsg{} }
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j", "down":
			if m.cursor < len(m.posts)-1 {
				m.cursor++
			}
			if m.cursor == len(m.posts)-1 {
				m = m.loadMore()
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = max(0, len(m.posts)-1)
			m = m.loadMore()
		case "n":
			m = m.loadMore()
		}
		return m.scrolled(), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width - 2
		m.height = msg.Height
		m.titleWidth = max(20, m.width-dateWidth-sourceWidth-labelsWidth-13)
		return m.scrolled(), tea.ClearScreen
	}

	return m, nil
}

func (m tablePage) View() string {
	menu := renderMenu(0, m.width, criteriaSummary(m.loader))

	if len(m.posts) == 0 {
		empty := centered(m.width, max(0, m.height-6),
			lipgloss.NewStyle().Bold(true).Render(loader.MsgNoResults),
			lipgloss.NewStyle().Foreground(muted()).MarginTop(1).Render(loader.MsgNoHint),
		)
		help := helpBar([]string{"2: filtros", "c: limpar filtros", "r: recargar", "q: saír"})
		return pageLayout(lipgloss.JoinVertical(lipgloss.Left, menu, empty, help))
	}

	help := helpBar([]string{
		"j/k: mover",
		"g/G: inicio/fin",
		"Enter: abrir",
		"2: filtros",
		"c: limpar",
		"r: recargar",
		"q: saír",
	})

	return pageLayout(lipgloss.JoinVertical(lipgloss.Left, menu, m.renderTable(), m.status(), help))
}

func (m tablePage) status() string {
	style := lipgloss.NewStyle().Foreground(muted())
	line := fmt.Sprintf("%d de %d publicacións", len(m.posts), len(m.loader.Filtered()))
	if m.state == pager.ExhaustedWithResults && m.top+m.visibleRows() >= len(m.posts) {
		line += " · " + loader.MsgEnd
	} else if m.state == pager.HasMore {
		line += " · n: cargar máis"
	}
	return style.Render(line)
}

func (m tablePage) renderTable() string {
	end := min(len(m.posts), m.top+m.visibleRows())
	visible := m.posts[m.top:end]
	loc := m.loader.Location()

	rows := make([][]string, 0, len(visible))
	for _, p := range visible {
		name := p.SourceID()
		if p.Source != nil && p.Source.Name != "" {
			name = p.Source.Name
		}
		rows = append(rows, []string{
			truncateString(p.Title, m.titleWidth),
			truncateString(blog.FormatDate(p.PublishedAt.In(loc)), dateWidth),
			truncateString(name, sourceWidth),
			truncateString(cardLabels(p.Labels), labelsWidth),
		})
	}

	headerStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(darkBlue()).
		Align(lipgloss.Center)
	selectedRow := m.cursor - m.top

	return table.New().
		Width(m.width).
		Border(lipgloss.ThickBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(darkBlue())).
		Headers("Título", "Data", "Blog", "Etiquetas").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == selectedRow {
				return lipgloss.NewStyle().
					Padding(0, 1).
					Background(lightBlue()).
					Foreground(lipgloss.Color("0"))
			}
			style := lipgloss.NewStyle().Padding(0, 1)
			if col == 2 && row >= 0 && row < len(visible) {
				style = style.Foreground(sourceColor(visible[row].Source))
			}
			return style
		}).
		Render()
}
