package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"agaxfeed/internal/aggregate"
	"agaxfeed/internal/article"
	"agaxfeed/internal/blog"
	"agaxfeed/internal/config"
	"agaxfeed/internal/digest"
	"agaxfeed/internal/feedclient"
	"agaxfeed/internal/httpclient"
	"agaxfeed/internal/loader"
	"agaxfeed/internal/logging"
)

// runtime is the wired component graph shared by the commands.
type runtime struct {
	conf     config.AppConfig
	logger   *log.Logger
	closeLog func() error
	agg      *aggregate.Aggregator
	loader   *loader.Loader
	articles *article.Extractor
}

type runtimeOption func(*loader.Options)

func withPageSize(size int) runtimeOption {
	return func(o *loader.Options) {
		if size > 0 {
			o.PageSize = size
		}
	}
}

func newRuntime(c *cli.Command, oneShot bool, opts ...runtimeOption) (*runtime, error) {
	path, err := config.ResolvePath(c.String("config"))
	if err != nil {
		return nil, err
	}
	conf, err := config.AppConfigLoader(path)()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.Setup(conf.Log.Level, logFile(conf.Log, oneShot))
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"config": conf.Path, "sources": len(conf.Sources)}).Debug("config loaded")

	client := httpclient.New(httpclient.DefaultTimeout)
	agg := aggregate.New(feedclient.New(client, logger), conf.Timeout(), logger)

	lopts := loader.Options{
		Sources:    conf.Sources,
		MaxResults: conf.Feed.MaxResults,
		PageSize:   conf.Feed.PageSize,
		Location:   time.Local,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&lopts)
	}

	return &runtime{
		conf:     conf,
		logger:   logger,
		closeLog: closeLog,
		agg:      agg,
		loader:   loader.New(agg, lopts),
		articles: article.NewExtractor(client, logger),
	}, nil
}

func (r *runtime) close() {
	if err := r.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "close log:", err)
	}
}

// post looks link up in a fresh aggregate. Links of other sites are still
// served as a bare post so their page can be extracted.
func (r *runtime) post(ctx context.Context, link string) (blog.Post, error) {
	if r.loader.Load(ctx) == loader.Error {
		r.logger.Warn(loader.MsgError)
	}
	if p, ok := r.loader.Find(link); ok {
		return p, nil
	}
	r.logger.WithField("url", link).Info("link not found in the loaded feeds")
	return blog.Post{Title: link, Link: link}, nil
}

func (r *runtime) digest(ctx context.Context, link string, out io.Writer) error {
	d, err := digest.New(r.conf.AIConf)
	if err != nil {
		return err
	}

	p, err := r.post(ctx, link)
	if err != nil {
		return err
	}
	text, err := r.articles.Text(ctx, p)
	if err != nil {
		return fmt.Errorf("read %s: %w", link, err)
	}
	return d.Run(ctx, digest.ArticleFromPost(p, text), out)
}
