package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"agaxfeed/internal/blog"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "AGAXFEED_CONFIG"

type ConfigLoad func() (AppConfig, error)

// AppConfigLoader returns a loader bound to path, re-reading the file on
// every call.
func AppConfigLoader(path string) ConfigLoad {
	return func() (AppConfig, error) {
		return LoadAppConfig(path)
	}
}

type FeedConfig struct {
	MaxResults       int // entries requested per source
	TimeoutSec       int // shared per-source fetch timeout
	PageSize         int
	SearchDebounceMs int
}

type LogConfig struct {
	File  string
	Level string
}

type AIConfig struct {
	BaseUrl       string
	Model         string
	ArticlePrompt string
	Stream        bool
}

type ServerConfig struct {
	// Refresh is a cron spec for reloading the aggregate in MCP server mode.
	Refresh string
}

// AppConfig carries every runtime setting.
type AppConfig struct {
	Sources []*blog.Source
	Feed    FeedConfig
	Log     LogConfig
	AIConf  AIConfig
	Server  ServerConfig

	// Path is the file the config was read from, empty for pure defaults.
	Path string
}

// Timeout returns the per-source fetch timeout.
func (c AppConfig) Timeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSec) * time.Second
}

// SearchDebounce returns the delay applied to search input.
func (c AppConfig) SearchDebounce() time.Duration {
	return time.Duration(c.Feed.SearchDebounceMs) * time.Millisecond
}

const defaultArticlePrompt = `Resume en galego o seguinte artigo dun blog de xadrez en tres ou catro frases.
Menciona torneos, xogadores e datas se aparecen.

Título: {{.Title}}
Blog: {{.Source}} ({{.Published}})

{{.Content}}`

// DefaultSources are the AGAX blogs.
func DefaultSources() []*blog.Source {
	return []*blog.Source{
		{ID: "novas", Name: "Novas", URL: "https://agaxnet.blogspot.com", Color: "#006699", Format: blog.FormatBlogger},
		{ID: "agaxnet", Name: "AGAX", URL: "https://agax.net", Color: "#0099CC", Format: blog.FormatBlogger},
		{ID: "xogando", Name: "Xogando co Xadrez", URL: "https://www.xogandocoxadrez.eu", Color: "#00AA66", Format: blog.FormatBlogger},
		{ID: "xadrecista", Name: "Xadrecistas", URL: "https://www.xadrecista.eu", Color: "#CC6600", Format: blog.FormatBlogger},
	}
}

// Default returns the configuration used when no file exists.
func Default() AppConfig {
	return AppConfig{
		Sources: DefaultSources(),
		Feed: FeedConfig{
			MaxResults:       25,
			TimeoutSec:       10,
			PageSize:         10,
			SearchDebounceMs: 300,
		},
		Log: LogConfig{
			File:  filepath.Join("~", ".cache", "agaxfeed", "agaxfeed.log"),
			Level: "info",
		},
		AIConf: AIConfig{
			Model:         "gpt-4o-mini",
			ArticlePrompt: defaultArticlePrompt,
			Stream:        true,
		},
		Server: ServerConfig{Refresh: "@every 30m"},
	}
}

// DefaultConfigPath is ~/.config/agaxfeed/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "agaxfeed", "config.yaml"), nil
}

// ResolvePath picks the explicit path when given, otherwise the default.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return ExpandPath(explicit), nil
	}
	return DefaultConfigPath()
}

// ExpandPath expands leading ~ and environment variables in a filesystem path.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}

// LoadAppConfig reads path on top of the defaults. A missing file is not an
// error; invalid YAML or settings are.
func LoadAppConfig(path string) (AppConfig, error) {
	ac := Default()
	if path == "" {
		return ac, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ac, nil
	}
	if err != nil {
		return ac, fmt.Errorf("read config: %w", err)
	}
	ac.Path = path

	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return ac, fmt.Errorf("parse config %s: %w", path, err)
	}

	if sources, ok := raw["sources"].([]any); ok {
		parsed := make([]*blog.Source, 0, len(sources))
		for _, it := range sources {
			if m, ok := it.(map[string]any); ok {
				parsed = append(parsed, sourceFrom(m))
			}
		}
		if len(parsed) > 0 {
			ac.Sources = parsed
		}
	}

	if feed, ok := raw["feed"].(map[string]any); ok {
		setPositive(feed, "max_results", &ac.Feed.MaxResults)
		setPositive(feed, "timeout", &ac.Feed.TimeoutSec)
		setPositive(feed, "page_size", &ac.Feed.PageSize)
		setPositive(feed, "search_debounce_ms", &ac.Feed.SearchDebounceMs)
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		setString(lg, "file", &ac.Log.File)
		setString(lg, "level", &ac.Log.Level)
	}

	if ai, ok := raw["ai"].(map[string]any); ok {
		setString(ai, "base_url", &ac.AIConf.BaseUrl)
		setString(ai, "model", &ac.AIConf.Model)
		setString(ai, "article_prompt", &ac.AIConf.ArticlePrompt)
		if v, ok := ai["stream"].(bool); ok {
			ac.AIConf.Stream = v
		}
	}

	if srv, ok := raw["server"].(map[string]any); ok {
		if v, ok := srv["refresh"].(string); ok {
			// an explicit empty value disables periodic refresh
			ac.Server.Refresh = strings.TrimSpace(v)
		}
	}

	if err := ac.Validate(); err != nil {
		return ac, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return ac, nil
}

func sourceFrom(m map[string]any) *blog.Source {
	s := &blog.Source{Format: blog.FormatBlogger}
	setString(m, "id", &s.ID)
	setString(m, "name", &s.Name)
	setString(m, "url", &s.URL)
	setString(m, "color", &s.Color)
	setString(m, "format", &s.Format)
	s.URL = strings.TrimRight(s.URL, "/")
	if s.Name == "" {
		s.Name = s.ID
	}
	return s
}

// Validate checks sources and numeric settings.
func (c AppConfig) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}
	seen := map[string]bool{}
	for i, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("source %d: missing id", i+1)
		}
		if s.ID == "all" {
			return fmt.Errorf("source %d: id %q is reserved", i+1, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("source %q: duplicate id", s.ID)
		}
		seen[s.ID] = true

		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source %q: url must be an absolute http(s) URL, got %q", s.ID, s.URL)
		}
		if s.Format != blog.FormatBlogger && s.Format != blog.FormatFeed {
			return fmt.Errorf("source %q: unknown format %q", s.ID, s.Format)
		}
	}

	if c.Feed.MaxResults <= 0 || c.Feed.TimeoutSec <= 0 || c.Feed.PageSize <= 0 || c.Feed.SearchDebounceMs < 0 {
		return errors.New("feed settings must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Server.Refresh != "" {
		if _, err := cron.ParseStandard(c.Server.Refresh); err != nil {
			return fmt.Errorf("server refresh %q: %w", c.Server.Refresh, err)
		}
	}
	return nil
}

func setString(m map[string]any, key string, dst *string) {
	if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setPositive(m map[string]any, key string, dst *int) {
	if v, ok := m[key].(int); ok && v > 0 {
		*dst = v
	} else if vf, ok := m[key].(float64); ok && int(vf) > 0 {
		*dst = int(vf)
	}
}
