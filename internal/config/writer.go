package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteConfig renders c as a commented YAML file at path, creating parent
// directories as needed.
func WriteConfig(path string, c AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Manually render YAML so each section carries a short explanation
	var sb strings.Builder
	sb.WriteString("# agaxfeed configuration\n\n")

	sb.WriteString("# Blogs to aggregate. format: blogger (JSON feed API) or feed (RSS/Atom URL)\n")
	sb.WriteString("sources:\n")
	for _, s := range c.Sources {
		sb.WriteString(fmt.Sprintf("  - id: %s\n", s.ID))
		sb.WriteString(fmt.Sprintf("    name: %q\n", s.Name))
		sb.WriteString(fmt.Sprintf("    url: %s\n", s.URL))
		if s.Color != "" {
			sb.WriteString(fmt.Sprintf("    color: %q\n", s.Color))
		}
		if s.Format != "" {
			sb.WriteString(fmt.Sprintf("    format: %s\n", s.Format))
		}
	}

	sb.WriteString("\nfeed:\n")
	sb.WriteString(fmt.Sprintf("  max_results: %d        # posts requested per source\n", c.Feed.MaxResults))
	sb.WriteString(fmt.Sprintf("  timeout: %d            # seconds before a source is skipped\n", c.Feed.TimeoutSec))
	sb.WriteString(fmt.Sprintf("  page_size: %d\n", c.Feed.PageSize))
	sb.WriteString(fmt.Sprintf("  search_debounce_ms: %d\n", c.Feed.SearchDebounceMs))

	sb.WriteString("\nlog:\n")
	sb.WriteString(fmt.Sprintf("  file: %q\n", c.Log.File))
	sb.WriteString(fmt.Sprintf("  level: %s\n", c.Log.Level))

	sb.WriteString("\n# OpenAI compatible endpoint used by `agaxfeed digest`. The key is read from OPENAI_API_KEY.\n")
	sb.WriteString("ai:\n")
	if strings.TrimSpace(c.AIConf.BaseUrl) != "" {
		sb.WriteString(fmt.Sprintf("  base_url: %q\n", c.AIConf.BaseUrl))
	}
	if strings.TrimSpace(c.AIConf.Model) != "" {
		sb.WriteString(fmt.Sprintf("  model: %q\n", c.AIConf.Model))
	}
	sb.WriteString(fmt.Sprintf("  stream: %t\n", c.AIConf.Stream))
	if strings.TrimSpace(c.AIConf.ArticlePrompt) != "" {
		sb.WriteString("  article_prompt: |\n")
		for _, line := range strings.Split(c.AIConf.ArticlePrompt, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}

	sb.WriteString("\n# Cron spec for reloading feeds in `agaxfeed server`. Empty disables it.\n")
	sb.WriteString("server:\n")
	sb.WriteString(fmt.Sprintf("  refresh: %q\n", c.Server.Refresh))

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// BackupFile creates a backup of the specified file with a timestamp
func BackupFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	ts := time.Now().Format("20060102-150405")
	bak := path + ".bak-" + ts
	return bak, os.WriteFile(bak, b, 0o644)
}
