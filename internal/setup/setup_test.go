package setup

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/config"
)

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func step(t *testing.T, m *wizardModel, msg tea.Msg) *wizardModel {
	t.Helper()
	next, _ := m.Update(msg)
	wm, ok := next.(*wizardModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return wm
}

func typeText(t *testing.T, m *wizardModel, s string) *wizardModel {
	t.Helper()
	for _, r := range s {
		m = step(t, m, runes(string(r)))
	}
	return m
}

func TestWizardModel_IntroStep(t *testing.T) {
	t.Run("IntroStepWithExistingConfig", func(t *testing.T) {
		model := step(t, newWizardModel(true), enter())
		if model.step != stepConfigChoice {
			t.Errorf("expected stepConfigChoice, got %v", model.step)
		}
	})

	t.Run("IntroStepWithoutExistingConfig", func(t *testing.T) {
		model := step(t, newWizardModel(false), enter())
		if model.step != stepSources {
			t.Errorf("expected stepSources, got %v", model.step)
		}
		if !model.override {
			t.Error("expected override to be true")
		}
	})

	t.Run("GlobalQuit", func(t *testing.T) {
		next, cmd := newWizardModel(false).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Error("expected quit command")
		}
		if !next.(*wizardModel).cancelled {
			t.Error("expected cancelled to be true")
		}
	})
}

func TestWizardModel_ConfigChoiceStep(t *testing.T) {
	t.Run("OverrideChoice", func(t *testing.T) {
		model := step(t, step(t, newWizardModel(true), enter()), runes("o"))
		if model.step != stepSources || !model.override {
			t.Errorf("expected override and stepSources, got %v override=%v", model.step, model.override)
		}
	})

	t.Run("KeepChoice", func(t *testing.T) {
		model := step(t, newWizardModel(true), enter())
		next, cmd := model.Update(runes("k"))
		model = next.(*wizardModel)
		if cmd == nil {
			t.Error("expected quit command")
		}
		if model.override || model.cancelled {
			t.Errorf("expected keep without cancel, got override=%v cancelled=%v", model.override, model.cancelled)
		}
	})
}

func TestWizardModel_SourcesStep(t *testing.T) {
	model := step(t, newWizardModel(false), enter())
	if got := model.selectedCount(); got != len(config.DefaultSources()) {
		t.Fatalf("expected every default blog selected, got %d", got)
	}

	model = step(t, model, runes("j"))
	model = step(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if model.selected[1] {
		t.Error("expected second blog to be deselected")
	}

	model = step(t, model, enter())
	if model.step != stepCustom {
		t.Errorf("expected stepCustom, got %v", model.step)
	}
}

func TestWizardModel_CustomFeeds(t *testing.T) {
	model := step(t, step(t, newWizardModel(false), enter()), enter())

	model = typeText(t, model, "ftp://nope")
	model = step(t, model, enter())
	if model.step != stepCustom || model.errMsg == "" {
		t.Fatalf("expected an error on stepCustom, got %v %q", model.step, model.errMsg)
	}

	model.customInput.SetValue("https://www.xadrez.example/feed.xml")
	model = step(t, model, enter())
	if model.step != stepFeed {
		t.Fatalf("expected stepFeed, got %v", model.step)
	}
	if len(model.custom) != 1 || model.custom[0].ID != "xadrez-example" || model.custom[0].Format != blog.FormatFeed {
		t.Errorf("unexpected custom sources %+v", model.custom)
	}
}

func TestWizardModel_NeedsASource(t *testing.T) {
	model := step(t, newWizardModel(false), enter())
	for i := range model.selected {
		model.selected[i] = false
	}
	model = step(t, step(t, model, enter()), enter())
	if model.step != stepCustom || model.errMsg == "" {
		t.Errorf("expected to stay on stepCustom with an error, got %v", model.step)
	}
}

func TestWizardModel_CompleteFlow(t *testing.T) {
	model := newWizardModel(false)
	model = step(t, model, enter()) // intro
	model = step(t, model, enter()) // sources
	model = step(t, model, enter()) // no extra feeds

	model = typeText(t, model, "0")
	model = step(t, model, enter())
	if model.errMsg == "" {
		t.Error("expected error for zero max results")
	}
	model.maxResultsInput.SetValue("50")
	model = step(t, model, enter())
	model = typeText(t, model, "20")
	model = step(t, model, enter())
	if model.step != stepRefresh {
		t.Fatalf("expected stepRefresh, got %v", model.step)
	}

	model = typeText(t, model, "every day")
	model = step(t, model, enter())
	if model.errMsg == "" {
		t.Error("expected error for invalid schedule")
	}
	model.refreshInput.SetValue("off")
	model = step(t, model, enter())
	if model.step != stepSummary {
		t.Fatalf("expected stepSummary, got %v", model.step)
	}

	next, cmd := model.Update(enter())
	model = next.(*wizardModel)
	if model.step != stepDone || cmd == nil {
		t.Errorf("expected stepDone with quit, got %v", model.step)
	}

	conf := model.result()
	if conf.Feed.MaxResults != 50 || conf.Feed.PageSize != 20 || conf.Server.Refresh != "" {
		t.Errorf("unexpected feed settings %+v refresh=%q", conf.Feed, conf.Server.Refresh)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("expected a valid config, got %v", err)
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 7, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePositiveInt(tt.in, 7)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parsePositiveInt(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected split %v", got)
	}
}

func TestMCPSnippet(t *testing.T) {
	if _, err := MCPSnippet(""); err == nil {
		t.Error("expected error for empty program path")
	}

	s, err := MCPSnippet("/usr/local/bin/agaxfeed")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		MCPServers map[string]struct {
			Command string   `json:"command"`
			Args    []string `json:"args"`
		} `json:"mcpServers"`
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatal(err)
	}
	entry := doc.MCPServers["agaxfeed"]
	if entry.Command != "/usr/local/bin/agaxfeed" || len(entry.Args) != 1 || entry.Args[0] != "server" {
		t.Errorf("unexpected entry %+v", entry)
	}
}
