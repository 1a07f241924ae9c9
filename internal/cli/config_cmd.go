// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/gptwrap/internal/config"
)

const apiKeyKey = "endpoint.api_key"

// newConfigCommand builds the config group. Its subcommands skip the root
// setup so a broken config file can still be inspected and rewritten.
func newConfigCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "config",
		Short:             "Show and edit the config file",
		PersistentPreRunE: skipSetup,
	}

	cmd.AddCommand(
		newConfigShowCommand(rt),
		newConfigPathCommand(rt),
		newConfigInitCommand(rt),
		newConfigGetCommand(rt),
		newConfigSetCommand(rt),
		newConfigKeysCommand(),
	)
	return cmd
}

func newConfigShowCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config with the API key redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := cfg.Source
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(out, "# source: %s\n", source)
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}
}

func newConfigPathCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if rt.opts.configPath != "" {
				fmt.Fprintln(out, rt.opts.configPath)
				return nil
			}
			for _, pathFn := range []func() (string, error){config.ConfigPathTOML, config.ConfigPathYAML} {
				path, err := pathFn()
				if err != nil {
					return err
				}
				state := "missing"
				if _, err := os.Stat(path); err == nil {
					state = "exists"
				}
				fmt.Fprintf(out, "%s (%s)\n", path, state)
			}
			return nil
		},
	}
}

func newConfigInitCommand(rt *session) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rt.writablePath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := saveConfig(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigGetCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.load()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			if strings.EqualFold(args[0], apiKeyKey) {
				if s, _ := value.(string); s != "" {
					value = "[REDACTED]"
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rt.writablePath()
			if err != nil {
				return err
			}

			// Edit the file as written: environment overrides must not leak into it.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if err := readConfig(cfg, path); err != nil {
					return err
				}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := saveConfig(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
			return nil
		},
	}
}

func newConfigKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every config key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range config.GetAllKeys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

// writablePath is --config, else the existing default file, else the
// default TOML path.
func (rt *session) writablePath() (string, error) {
	if rt.opts.configPath != "" {
		return rt.opts.configPath, nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	yamlPath, err := config.ConfigPathYAML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	return tomlPath, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func readConfig(cfg *config.Config, path string) error {
	if isYAMLPath(path) {
		return config.LoadYAML(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func saveConfig(cfg *config.Config, path string) error {
	if isYAMLPath(path) {
		return config.SaveYAML(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
