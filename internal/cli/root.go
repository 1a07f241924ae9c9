// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	model      string
	baseURL    string
}

// session is the state shared by every command of one invocation.
type session struct {
	opts      rootOptions
	cfg       *config.Config
	logCloser io.Closer
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rt := &session{}

	cmd := &cobra.Command{
		Use:   "gptwrap",
		Short: "Chat with an OpenAI-compatible completions endpoint",
		Long: "gptwrap is a terminal chat client for OpenAI-compatible chat completion endpoints.\n" +
			"Run without arguments for the full-screen view, or use `gptwrap chat` for line mode.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt.cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rt.opts.configPath, "config", "", "config file (default ~/.gptwrap/config.toml)")
	flags.StringVar(&rt.opts.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	flags.StringVar(&rt.opts.model, "model", "", "model to start with")
	flags.StringVar(&rt.opts.baseURL, "base-url", "", "endpoint base URL")

	cmd.AddCommand(newChatCommand(rt))
	cmd.AddCommand(newConfigCommand(rt))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// load reads the config file (or defaults), then applies flag overrides and
// validates the result.
func (rt *session) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rt.opts.configPath != "" {
		cfg, err = config.LoadFromPath(rt.opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if rt.opts.logLevel != "" {
		cfg.Log.Level = rt.opts.logLevel
	}
	if rt.opts.model != "" {
		cfg.Defaults.Model = rt.opts.model
	}
	if rt.opts.baseURL != "" {
		cfg.Endpoint.BaseURL = rt.opts.baseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid flags")
	}
	return cfg, nil
}

// setup loads the config and starts file logging.
func (rt *session) setup() error {
	cfg, err := rt.load()
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logCloser = closer

	log.Debug().
		Str("source", cfg.Source).
		Str("base_url", cfg.Endpoint.BaseURL).
		Str("model", cfg.Defaults.Model).
		Str("version", Version).
		Msg("gptwrap starting")
	return nil
}

func (rt *session) close() {
	if rt.logCloser != nil {
		_ = rt.logCloser.Close()
		rt.logCloser = nil
	}
}

// skipSetup replaces the root PersistentPreRunE for commands that load the
// config themselves, or not at all.
func skipSetup(cmd *cobra.Command, args []string) error {
	return nil
}
