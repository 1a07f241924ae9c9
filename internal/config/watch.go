// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes the
// new config to fn. Reload errors are logged and skipped. Watch blocks until
// ctx is done.
//
// The parent directory is watched rather than the file so that atomic
// rename-over saves are seen.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute path")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			cfg, err := LoadFromPath(abs)
			if err != nil {
				log.Warn().Err(err).Str("path", abs).Msg("config reload failed")
				continue
			}
			log.Info().Str("path", abs).Msg("config reloaded")
			fn(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
