package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger creates the command's logger. Records go to w and, if the config
// names a file, also to that file with rotation. The returned closer releases
// the file and is never nil.
func newLogger(w io.Writer, cfg LogConfig, verbose bool) (*slog.Logger, io.Closer) {
	level := levelFromString(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Source,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if src, _ := a.Value.Any().(*slog.Source); src != nil {
					src.File = filepath.Base(src.File)
				}
			}
			return a
		},
	}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(w, f)
		closer = f
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closer
}

func levelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
