// Package tui is the interactive browser: a paged post table, a filter page
// and a detail view, all driven by one loader.Loader.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/article"
	"agaxfeed/internal/blog"
	"agaxfeed/internal/loader"
)

const articleTimeout = 20 * time.Second

type viewMode int

const (
	tableView viewMode = iota
	filtersView
	detailView
)

// Navigation messages
type openPostMsg struct {
	post blog.Post
}
type goToFiltersMsg struct{}
type goToTableMsg struct{}

// Loader messages
type loadedMsg struct {
	posts []blog.Post
}
type reloadMsg struct{}
type criteriaChangedMsg struct{}
type clearFiltersMsg struct{}

// searchTickMsg fires once the debounce delay after a keystroke has passed.
type searchTickMsg struct {
	seq int
}

// bodyMsg carries the downloaded body of a post without feed content.
type bodyMsg struct {
	link string
	body string
	err  error
}

// Options configures the browser.
type Options struct {
	Loader   *loader.Loader
	Articles *article.Extractor // nil disables the full-text fallback
	Debounce time.Duration
	Logger   log.FieldLogger
}

type rootPage struct {
	ctx      context.Context
	loader   *loader.Loader
	articles *article.Extractor
	logger   log.FieldLogger

	viewMode    viewMode
	loading     bool
	spinner     spinner.Model
	tablePage   tablePage
	filtersPage filtersPage
	detailPage  detailPage
	width       int
	height      int
}

func newRootPage(ctx context.Context, opts Options) rootPage {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	opts.Loader.BeginLoad()

	return rootPage{
		ctx:         ctx,
		loader:      opts.Loader,
		articles:    opts.Articles,
		logger:      opts.Logger,
		loading:     true,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lightBlue()))),
		tablePage:   newTablePage(opts.Loader),
		filtersPage: newFiltersPage(opts.Loader, opts.Debounce),
	}
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Loader == nil {
		return errors.New("tui: loader is required")
	}

	p := tea.NewProgram(newRootPage(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	return nil
}

func (m rootPage) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m *rootPage) startLoad() tea.Cmd {
	m.loading = true
	m.loader.BeginLoad()
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// loadCmd fetches off the event loop. The result is applied in Update.
func (m rootPage) loadCmd() tea.Cmd {
	l, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return loadedMsg{posts: l.Fetch(ctx)}
	}
}

func (m rootPage) bodyCmd(p blog.Post) tea.Cmd {
	if m.articles == nil || strings.TrimSpace(p.Content) != "" {
		return nil
	}
	a, parent := m.articles, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, articleTimeout)
		defer cancel()
		body, err := a.Markdown(ctx, p)
		return bodyMsg{link: p.Link, body: body, err: err}
	}
}

func (m rootPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var cmds []tea.Cmd

		m.tablePage, cmd = update[tablePage](m.tablePage, msg)
		cmds = append(cmds, cmd)

		m.filtersPage, cmd = update[filtersPage](m.filtersPage, msg)
		cmds = append(cmds, cmd)

		m.detailPage, cmd = update[detailPage](m.detailPage, msg)
		cmds = append(cmds, cmd)

		m.width = msg.Width
		m.height = msg.Height

		return m, tea.Batch(cmds...)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		m.loading = false
		state := m.loader.SetAggregate(msg.posts)
		m.logger.WithFields(log.Fields{"posts": len(msg.posts), "state": state}).Info("aggregate loaded")
		m.tablePage = m.tablePage.reset()
		return m, nil
	case reloadMsg:
		return m, m.startLoad()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.loader.State() == loader.Error {
			switch msg.String() {
			case "r":
				return m, m.startLoad()
			case "q", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
	case goToFiltersMsg:
		m.viewMode = filtersView
		m.filtersPage, cmd = update[filtersPage](m.filtersPage, msg)
		return m, cmd
	case goToTableMsg:
		m.viewMode = tableView
		return m, nil
	case criteriaChangedMsg:
		m.tablePage = m.tablePage.reset()
		return m, nil
	case clearFiltersMsg:
		m.loader.Clear()
		m.filtersPage = m.filtersPage.cleared()
		m.tablePage = m.tablePage.reset()
		return m, nil
	case openPostMsg:
		m.viewMode = detailView
		m.detailPage = m.detailPage.open(msg.post, m.articles != nil)
		return m, m.bodyCmd(msg.post)
	case bodyMsg:
		m.detailPage, cmd = update[detailPage](m.detailPage, msg)
		return m, cmd
	case searchTickMsg:
		m.filtersPage, cmd = update[filtersPage](m.filtersPage, msg)
		return m, cmd
	}

	switch m.viewMode {
	case tableView:
		m.tablePage, cmd = update[tablePage](m.tablePage, msg)
	case filtersView:
		m.filtersPage, cmd = update[filtersPage](m.filtersPage, msg)
	case detailView:
		m.detailPage, cmd = update[detailPage](m.detailPage, msg)
	}

	return m, cmd
}

func (m rootPage) View() string {
	if m.loading {
		return centered(m.width, m.height, m.spinner.View()+" "+loader.MsgLoading)
	}

	if m.loader.State() == loader.Error {
		return centered(m.width, m.height,
			lipgloss.NewStyle().Foreground(errorRed()).Bold(true).Render(loader.MsgError),
			lipgloss.NewStyle().MarginTop(1).Render(loader.MsgErrorHint),
			lipgloss.NewStyle().MarginTop(2).Render(helpBar([]string{"r: tentar de novo", "q: saír"})),
		)
	}

	switch m.viewMode {
	case detailView:
		return m.detailPage.View()
	case filtersView:
		return m.filtersPage.View()
	case tableView:
		return m.tablePage.View()
	default:
		return "Unknown View"
	}
}

func update[T any](model tea.Model, msg tea.Msg) (T, tea.Cmd) {
	newModel, cmd := model.Update(msg)
	return newModel.(T), cmd
}
