package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/markdown"
)

type detailPage struct {
	post     blog.Post
	body     string
	fetching bool
	note     string
	width    int
	height   int
	viewport viewport.Model
}

// open shows p. fetching is set when its body will arrive as a bodyMsg.
func (m detailPage) open(p blog.Post, canFetch bool) detailPage {
	m.post = p
	m.body = ""
	m.note = ""
	m.fetching = canFetch && strings.TrimSpace(p.Content) == ""
	m.viewport = setupViewport(m.width, m.height, markdown.Post(p, ""))
	return m
}

func (m detailPage) Init() tea.Cmd {
	return nil
}

func (m detailPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "backspace":
			return m, func() tea.Msg { return goToTableMsg{} }
		case "k":
			m.viewport.ScrollUp(1)
			return m, nil
		case "j":
			m.viewport.ScrollDown(1)
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case bodyMsg:
		if msg.link != m.post.Link {
			return m, nil
		}
		m.fetching = false
		if msg.err != nil {
			m.note = "Non se puido descargar o artigo completo"
			return m, nil
		}
		m.body = msg.body
		m.viewport = setupViewport(m.width, m.height, markdown.Post(m.post, m.body))
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width - 4
		m.height = msg.Height - 4
		if m.post.Link != "" {
			m.viewport = setupViewport(m.width, m.height, markdown.Post(m.post, m.body))
		}
		return m, nil
	}

	return m, nil
}

func (m detailPage) View() string {
	if m.post.Link == "" {
		return "Ningunha publicación seleccionada"
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		badge(m.post.Source),
		" ",
		lipgloss.NewStyle().Foreground(lightBlue()).Italic(true).Render(truncateString(m.post.Link, max(20, m.width-24))),
	)

	scrollPercent := min(max(m.viewport.ScrollPercent(), 0), 1)
	status := fmt.Sprintf("Scroll: %d%%", int(scrollPercent*100))
	switch {
	case m.fetching:
		status += " · descargando o artigo..."
	case m.note != "":
		status += " · " + m.note
	}

	help := helpBar([]string{"j/k: scroll", "g/G: inicio/fin", "esc/q: volver"})

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().MarginBottom(1).Render(header),
		m.viewport.View(),
		lipgloss.NewStyle().Foreground(muted()).Bold(true).Render(status),
		lipgloss.NewStyle().MarginTop(1).Render(help),
	)

	return pageLayout(lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(sourceColor(m.post.Source)).
		Render(content))
}

func setupViewport(width, height int, doc string) viewport.Model {
	contentWidth := max(width, 20)
	viewportHeight := max(height-8, 5)

	vp := viewport.New(contentWidth, viewportHeight)
	vp.SetContent(renderMarkdown(doc, contentWidth))
	return vp
}

// renderMarkdown renders with glamour, falling back to the raw markdown.
func renderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return "Sen contido"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(width),
		glamour.WithStandardStyle("dark"),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return rendered
}
