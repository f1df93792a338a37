// Package logging configures the logrus logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/config"
)

// Stderr is the file value that keeps logs on stderr.
const Stderr = "-"

// Setup points the standard logrus logger at file with the given level and
// returns it with a close function. The TUI and the MCP stdio transport own
// stdout, so logs never go there.
func Setup(level, file string) (*log.Logger, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	out, closeFn, err := openOutput(file)
	if err != nil {
		return nil, nil, err
	}

	logger := log.StandardLogger()
	logger.SetLevel(lvl)
	logger.SetOutput(out)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   out != os.Stderr,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger, closeFn, nil
}

// FromConfig is Setup driven by the log section of the config.
func FromConfig(c config.LogConfig) (*log.Logger, func() error, error) {
	return Setup(c.Level, c.File)
}

func openOutput(file string) (io.Writer, func() error, error) {
	if file == "" || file == Stderr {
		return os.Stderr, func() error { return nil }, nil
	}

	path := config.ExpandPath(file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}
