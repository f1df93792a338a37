package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"agaxfeed/internal/config"
	"agaxfeed/internal/list"
	"agaxfeed/internal/logging"
	"agaxfeed/internal/markdown"
	"agaxfeed/internal/server"
	"agaxfeed/internal/setup"
	"agaxfeed/internal/tui"
	"agaxfeed/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	browse := &cli.Command{
		Name:   "browse",
		Usage:  "Browse the posts of every blog in the terminal",
		Action: runBrowse,
	}

	return &cli.Command{
		Name:    "agaxfeed",
		Usage:   "Read the AGAX chess blogs as one feed",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the config file (default ~/.config/agaxfeed/config.yaml)",
				Sources: cli.EnvVars(config.EnvConfigPath),
			},
		},
		Action: runBrowse,
		Commands: []*cli.Command{
			browse,
			{
				Name:  "list",
				Usage: "Print one page of posts",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "Case-insensitive text in the title"},
					&cli.StringFlag{Name: "from", Usage: "First day, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "Last day, YYYY-MM-DD (inclusive)"},
					&cli.StringFlag{Name: "source", Usage: "Only posts of this blog ID"},
					&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
					&cli.IntFlag{Name: "page-size", Usage: "Posts per page (default from config)"},
					&cli.IntFlag{Name: "start", Usage: "Page a single --source from this 1-based index"},
					&cli.IntFlag{Name: "count", Usage: "Posts per step with --start", Value: list.DefaultIncrementalCount},
				},
				Action: runList,
			},
			{
				Name:  "show",
				Usage: "Print a post as markdown",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "link", UsageText: "url"},
				},
				Action: runShow,
			},
			{
				Name:  "digest",
				Usage: "Summarize a post with the configured AI model",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "link", UsageText: "url"},
				},
				Action: runDigest,
			},
			{
				Name:   "server",
				Usage:  "Run MCP server on stdio",
				Action: runServer,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default blogs",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file, keeping a backup"},
					&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Pick blogs and settings with a wizard"},
				},
				Action: runInit,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println(version.GetVersion())
					return nil
				},
			},
		},
	}
}

func runBrowse(ctx context.Context, c *cli.Command) error {
	app, err := newRuntime(c, false)
	if err != nil {
		return err
	}
	defer app.close()

	return tui.Run(ctx, tui.Options{
		Loader:   app.loader,
		Articles: app.articles,
		Debounce: app.conf.SearchDebounce(),
		Logger:   app.logger,
	})
}

func runList(ctx context.Context, c *cli.Command) error {
	app, err := newRuntime(c, true, withPageSize(int(c.Int("page-size"))))
	if err != nil {
		return err
	}
	defer app.close()

	if start := int(c.Int("start")); start > 0 {
		id := c.String("source")
		if id == "" {
			return errors.New("--start needs --source")
		}
		src, ok := app.loader.Source(id)
		if !ok {
			return fmt.Errorf("unknown source %q", id)
		}
		return list.RunIncremental(ctx, os.Stdout, app.agg, src, start, int(c.Int("count")))
	}

	return list.Run(ctx, os.Stdout, app.loader, list.Options{
		Search: c.String("search"),
		From:   c.String("from"),
		To:     c.String("to"),
		Source: c.String("source"),
		Page:   int(c.Int("page")),
	})
}

func runShow(ctx context.Context, c *cli.Command) error {
	link := strings.TrimSpace(c.StringArg("link"))
	if link == "" {
		return errors.New("a post link is required")
	}

	app, err := newRuntime(c, true)
	if err != nil {
		return err
	}
	defer app.close()

	p, err := app.post(ctx, link)
	if err != nil {
		return err
	}

	body := ""
	if strings.TrimSpace(p.Content) == "" {
		if body, err = app.articles.Markdown(ctx, p); err != nil {
			app.logger.WithError(err).Warn("showing summary only")
		}
	}
	fmt.Println(markdown.Post(p, body))
	return nil
}

func runDigest(ctx context.Context, c *cli.Command) error {
	link := strings.TrimSpace(c.StringArg("link"))
	if link == "" {
		return errors.New("a post link is required")
	}

	app, err := newRuntime(c, true)
	if err != nil {
		return err
	}
	defer app.close()

	return app.digest(ctx, link, os.Stdout)
}

func runServer(ctx context.Context, c *cli.Command) error {
	app, err := newRuntime(c, false)
	if err != nil {
		return err
	}
	defer app.close()

	return server.New(app.loader, app.articles, app.logger).Run(ctx, app.conf.Server.Refresh)
}

func runInit(ctx context.Context, c *cli.Command) error {
	path, err := config.ResolvePath(c.String("config"))
	if err != nil {
		return err
	}

	if c.Bool("interactive") {
		return setup.Run(ctx, path)
	}

	if _, err := os.Stat(path); err == nil {
		if !c.Bool("force") {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("Previous config saved to %s\n", backup)
	}

	if err := config.WriteConfig(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", path)
	return nil
}

// logFile picks the configured file for full-screen and stdio modes and
// stderr for one-shot commands.
func logFile(conf config.LogConfig, oneShot bool) string {
	if oneShot {
		return logging.Stderr
	}
	return conf.File
}
