// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/ui/chat"
	"github.com/jeranaias/gptwrap/internal/ui/styles"
)

// errNoTerminal is returned when the full-screen view cannot run.
var errNoTerminal = errors.New("the chat view needs an interactive terminal; use `gptwrap chat` instead")

// runTUI runs the full-screen chat view until the user quits.
func runTUI(ctx context.Context, cfg *config.Config) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTerminal
	}

	a := newApp(cfg)
	m := chat.New(a.ctrl, chat.Options{
		Theme:    styles.NewTheme(cfg.UI.Theme),
		WordWrap: cfg.UI.WordWrap,
		Endpoint: a.client.EndpointName(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Source != "" {
		go func() {
			err := config.Watch(ctx, cfg.Source, func(c *config.Config) {
				p.Send(chat.ConfigReloadedMsg{UI: c.UI})
			})
			if err != nil {
				log.Warn().Err(err).Str("path", cfg.Source).Msg("config watch stopped")
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "chat view failed")
	}
	return nil
}
