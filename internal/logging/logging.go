// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the global zerolog logger.
//
// Logs go to a rotating file, never to the terminal the TUI draws on.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeranaias/gptwrap/internal/config"
)

// ParseLevel converts a level name into a zerolog.Level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	case "info":
		fallthrough
	default:
		return zerolog.InfoLevel
	}
}

// Setup points log.Logger at the rotating file described by cfg and sets the
// global level. The returned closer flushes and closes the file.
func Setup(cfg *config.Config) (io.Closer, error) {
	level := ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)

	if level == zerolog.Disabled {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), nil
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   false,
	}
	log.Logger = New(w, level)
	return w, nil
}

// New returns a logger writing JSON lines to w at level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", "gptwrap").
		Logger()
}
