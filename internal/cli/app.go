// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/gptwrap/internal/cloud"
	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/conversation"
	"github.com/jeranaias/gptwrap/internal/settings"
)

// app wires the client, settings store and controller for one session.
type app struct {
	cfg    *config.Config
	client *cloud.Client
	store  *settings.Store
	ctrl   *conversation.Controller
}

func newApp(cfg *config.Config) *app {
	client := cloud.NewClient().
		WithBaseURL(cfg.Endpoint.BaseURL).
		WithEndpointName(cfg.Endpoint.Name).
		WithTimeout(cfg.Timeout()).
		WithUserAgent("gptwrap/" + Version)

	initial := cfg.InitialSettings()
	store := settings.NewStore(initial)

	log.Info().
		Str("endpoint", client.EndpointName()).
		Str("base_url", client.BaseURL()).
		Str("settings", initial.String()).
		Msg("session ready")

	return &app{
		cfg:    cfg,
		client: client,
		store:  store,
		ctrl:   conversation.NewController(store, client),
	}
}
