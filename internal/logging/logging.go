// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/config"
)

const logFileName = "chirp/chirp.log"

// Setup applies cfg to the standard logger. With toFile set the output goes
// to cfg.File, or to a file in the XDG state dir when that is empty, since
// a terminal UI owns stdout and stderr. The returned closer releases the
// file and is never nil.
func Setup(cfg config.LogConfig, toFile bool) (io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nopCloser{}, err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if !toFile {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	path := cfg.File
	if path == "" {
		path, err = xdg.StateFile(logFileName)
		if err != nil {
			return nopCloser{}, fmt.Errorf("log file: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nopCloser{}, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nopCloser{}, fmt.Errorf("log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

func parseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
