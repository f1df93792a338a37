// Package setup is the interactive first-run wizard behind `agaxfeed init -i`.
package setup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/config"
)

const customColor = "#4682B4"

// Run executes the interactive setup flow:
// 1) greet, and ask whether to replace an existing config
// 2) pick the AGAX blogs to follow
// 3) add extra RSS/Atom feeds
// 4) feed sizes
// 5) server refresh schedule
// 6) write config and print the MCP client entry
func Run(ctx context.Context, path string) error {
	cfgExists := fileExists(path)

	wiz := newWizardModel(cfgExists)
	res, err := tea.NewProgram(wiz, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	wm, ok := res.(*wizardModel)
	if !ok || wm.cancelled {
		return errors.New("setup cancelled")
	}

	if !wm.override {
		fmt.Printf("\nKeeping existing config at %s\n", path)
	} else {
		conf := wm.result()
		if err := conf.Validate(); err != nil {
			return err
		}
		if cfgExists {
			bak, err := config.BackupFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("\nPrevious config saved to %s\n", bak)
		}
		if err := config.WriteConfig(path, conf); err != nil {
			return err
		}
		fmt.Printf("\nConfig written to %s\n", path)
	}

	exe, _ := os.Executable()
	if snippet, err := MCPSnippet(exe); err == nil {
		fmt.Println("\nTo use agaxfeed from an MCP client, add this server entry:")
		fmt.Println(snippet)
	}

	fmt.Println("\nSetup complete! 🎉")
	fmt.Println("- Run 'agaxfeed' to browse the blogs")
	fmt.Println("- Run 'agaxfeed server' to expose the posts to your LLM via MCP")
	return nil
}

// MCPSnippet renders the mcpServers entry that launches `exe server`.
func MCPSnippet(exe string) (string, error) {
	if strings.TrimSpace(exe) == "" {
		return "", errors.New("cannot discover program path")
	}
	entry := map[string]any{
		"mcpServers": map[string]any{
			"agaxfeed": map[string]any{
				"command": exe,
				"args":    []string{"server"},
			},
		},
	}
	b, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// -------------- Bubble Tea Wizard --------------
type wizardStep int

const (
	stepIntro wizardStep = iota
	stepConfigChoice
	stepSources
	stepCustom
	stepFeed
	stepRefresh
	stepSummary
	stepDone
)

type wizardModel struct {
	step      wizardStep
	hasCfg    bool
	override  bool
	cancelled bool

	// Blogs
	sources  []*blog.Source
	selected map[int]bool
	cursor   int

	// Extra feeds
	customInput textinput.Model
	custom      []*blog.Source

	// Feed sizes
	maxResultsInput textinput.Model
	pageSizeInput   textinput.Model
	maxResults      int
	pageSize        int

	// Refresh
	refreshInput textinput.Model
	refresh      string

	// Status/error
	errMsg string
}

func newWizardModel(hasCfg bool) *wizardModel {
	defaults := config.Default()

	custom := textinput.New()
	custom.Placeholder = "https://example.com/feed.xml, https://..."

	maxResults := textinput.New()
	maxResults.Placeholder = strconv.Itoa(defaults.Feed.MaxResults)

	pageSize := textinput.New()
	pageSize.Placeholder = strconv.Itoa(defaults.Feed.PageSize)

	refresh := textinput.New()
	refresh.Placeholder = defaults.Server.Refresh

	selected := map[int]bool{}
	for i := range defaults.Sources {
		selected[i] = true
	}

	return &wizardModel{
		step:            stepIntro,
		hasCfg:          hasCfg,
		sources:         defaults.Sources,
		selected:        selected,
		customInput:     custom,
		maxResultsInput: maxResults,
		pageSizeInput:   pageSize,
		maxResults:      defaults.Feed.MaxResults,
		pageSize:        defaults.Feed.PageSize,
		refreshInput:    refresh,
		refresh:         defaults.Server.Refresh,
	}
}

func (m *wizardModel) Init() tea.Cmd { return nil }

// typing reports whether keys go to a text input.
func (m *wizardModel) typing() bool {
	return m.step == stepCustom || m.step == stepFeed || m.step == stepRefresh
}

func (m *wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// Global cancels
	if key.Type == tea.KeyCtrlC || (!m.typing() && key.Type == tea.KeyRunes && strings.ToLower(string(key.Runes)) == "q") {
		m.cancelled = true
		return m, tea.Quit
	}

	switch m.step {
	case stepIntro:
		if key.Type == tea.KeyEnter {
			if m.hasCfg {
				m.step = stepConfigChoice
			} else {
				m.override = true
				m.step = stepSources
			}
		}
	case stepConfigChoice:
		// o = override, k = keep
		if key.Type == tea.KeyRunes {
			switch strings.ToLower(string(key.Runes)) {
			case "o":
				m.override = true
				m.step = stepSources
			case "k":
				m.override = false
				m.step = stepDone
				return m, tea.Quit
			}
		}
	case stepSources:
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.sources)-1 {
				m.cursor++
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "enter":
			m.step = stepCustom
			return m, m.customInput.Focus()
		}
	case stepCustom:
		if key.Type == tea.KeyEnter {
			custom, err := parseFeeds(m.customInput.Value())
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			if len(custom)+m.selectedCount() == 0 {
				m.errMsg = "Select at least one blog or add a feed."
				return m, nil
			}
			m.custom = custom
			m.errMsg = ""
			m.customInput.Blur()
			m.step = stepFeed
			return m, m.maxResultsInput.Focus()
		}
		var cmd tea.Cmd
		m.customInput, cmd = m.customInput.Update(msg)
		return m, cmd
	case stepFeed:
		return m.updateFeed(key)
	case stepRefresh:
		if key.Type == tea.KeyEnter {
			spec := strings.TrimSpace(m.refreshInput.Value())
			if spec == "" {
				spec = m.refreshInput.Placeholder
			}
			if spec != "off" {
				if _, err := cron.ParseStandard(spec); err != nil {
					m.errMsg = fmt.Sprintf("Invalid schedule: %v", err)
					return m, nil
				}
			} else {
				spec = ""
			}
			m.refresh = spec
			m.errMsg = ""
			m.step = stepSummary
			return m, nil
		}
		var cmd tea.Cmd
		m.refreshInput, cmd = m.refreshInput.Update(msg)
		return m, cmd
	case stepSummary:
		if key.Type == tea.KeyEnter {
			m.step = stepDone
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *wizardModel) updateFeed(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	// route input focus: max results → page size
	if m.maxResultsInput.Focused() {
		if key.Type == tea.KeyEnter || key.Type == tea.KeyTab {
			n, err := parsePositiveInt(m.maxResultsInput.Value(), m.maxResults)
			if err != nil {
				m.errMsg = "Please enter a positive integer."
				return m, nil
			}
			m.maxResults = n
			m.errMsg = ""
			m.maxResultsInput.Blur()
			return m, m.pageSizeInput.Focus()
		}
		m.maxResultsInput, cmd = m.maxResultsInput.Update(key)
		return m, cmd
	}

	if key.Type == tea.KeyEnter {
		n, err := parsePositiveInt(m.pageSizeInput.Value(), m.pageSize)
		if err != nil {
			m.errMsg = "Please enter a positive integer."
			return m, nil
		}
		m.pageSize = n
		m.errMsg = ""
		m.pageSizeInput.Blur()
		m.step = stepRefresh
		return m, m.refreshInput.Focus()
	}
	m.pageSizeInput, cmd = m.pageSizeInput.Update(key)
	return m, cmd
}

func (m *wizardModel) selectedCount() int {
	n := 0
	for _, v := range m.selected {
		if v {
			n++
		}
	}
	return n
}

// result is the config assembled from the answers.
func (m *wizardModel) result() config.AppConfig {
	conf := config.Default()
	conf.Sources = nil
	for i, src := range m.sources {
		if m.selected[i] {
			conf.Sources = append(conf.Sources, src)
		}
	}
	conf.Sources = append(conf.Sources, m.custom...)
	conf.Feed.MaxResults = m.maxResults
	conf.Feed.PageSize = m.pageSize
	conf.Server.Refresh = m.refresh
	return conf
}

func (m *wizardModel) View() string {
	b := &strings.Builder{}
	switch m.step {
	case stepIntro:
		fmt.Fprintln(b, "Welcome to agaxfeed setup! ♟️")
		fmt.Fprintln(b, "This wizard picks the blogs to follow and writes your config.")
		fmt.Fprintln(b, "\nPress Enter to begin · q to quit")
	case stepConfigChoice:
		fmt.Fprintln(b, "Found an existing config.")
		fmt.Fprintln(b, "Override it (will create a .bak) or keep it?")
		fmt.Fprintln(b, "[o] Override    [k] Keep existing")
	case stepSources:
		fmt.Fprintln(b, "Step 1 – Blogs")
		fmt.Fprintln(b, "Space toggles a blog, Enter continues.")
		fmt.Fprintln(b)
		for i, src := range m.sources {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			check := "[ ]"
			if m.selected[i] {
				check = "[x]"
			}
			fmt.Fprintf(b, "%s%s %s  %s\n", cursor, check, src.Name, src.URL)
		}
	case stepCustom:
		fmt.Fprintln(b, "Step 2 – Extra feeds (optional)")
		fmt.Fprintln(b, "Enter RSS or Atom feed URLs separated by commas, or leave empty.")
		fmt.Fprintln(b)
		fmt.Fprintln(b, m.customInput.View())
		fmt.Fprintln(b, "\nPress Enter to continue")
	case stepFeed:
		fmt.Fprintln(b, "Step 3 – Feed sizes")
		fmt.Fprintln(b, "\nPosts requested per blog:")
		fmt.Fprintln(b, m.maxResultsInput.View())
		fmt.Fprintln(b, "\nPosts per page:")
		fmt.Fprintln(b, m.pageSizeInput.View())
		fmt.Fprintln(b, "\nPress Enter to continue")
	case stepRefresh:
		fmt.Fprintln(b, "Step 4 – Server refresh")
		fmt.Fprintln(b, "How often should `agaxfeed server` reload the blogs? Cron spec, or \"off\":")
		fmt.Fprintln(b, m.refreshInput.View())
		fmt.Fprintln(b, "\nPress Enter to continue")
	case stepSummary:
		fmt.Fprintln(b, "Summary")
		fmt.Fprintln(b, "Blogs:")
		for _, src := range m.result().Sources {
			fmt.Fprintf(b, "  - %s (%s)\n", src.Name, src.URL)
		}
		fmt.Fprintf(b, "Posts per blog: %d · per page: %d\n", m.maxResults, m.pageSize)
		if m.refresh == "" {
			fmt.Fprintln(b, "Server refresh: off")
		} else {
			fmt.Fprintf(b, "Server refresh: %s\n", m.refresh)
		}
		fmt.Fprintln(b, "\nPress Enter to write the config · q to cancel")
	case stepDone:
		fmt.Fprintln(b, "Finishing…")
	}
	if m.errMsg != "" {
		fmt.Fprintf(b, "\n%s\n", m.errMsg)
	}
	return b.String()
}

// parseFeeds turns comma-separated feed URLs into generic feed sources.
func parseFeeds(s string) ([]*blog.Source, error) {
	var out []*blog.Source
	seen := map[string]bool{}
	for _, raw := range splitCSV(s) {
		u, err := neturl.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("not a feed URL: %s", raw)
		}
		id := sourceID(u.Host)
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s-%d", sourceID(u.Host), n)
		}
		seen[id] = true
		out = append(out, &blog.Source{
			ID:     id,
			Name:   strings.TrimPrefix(u.Host, "www."),
			URL:    raw,
			Color:  customColor,
			Format: blog.FormatFeed,
		})
	}
	return out, nil
}

func sourceID(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.ReplaceAll(host, ".", "-")
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parsePositiveInt parses s, returning fallback for an empty string.
func parsePositiveInt(s string, fallback int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid int")
	}
	return n, nil
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	if _, err := os.Stat(p); err == nil {
		return true
	}
	return false
}
