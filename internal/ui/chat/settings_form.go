// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"

	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/settings"
)

// settingsForm is the settings dialog. It edits string copies of the draft
// fields; apply writes them back once the form completes.
type settingsForm struct {
	form  *huh.Form
	draft *settings.Settings

	credential  string
	model       string
	format      string
	temperature string
	maxTokens   string
	topP        string
	store       bool
	variables   string
	tools       string
	system      string
}

func newSettingsForm(draft *settings.Settings, width int) *settingsForm {
	f := &settingsForm{
		draft:       draft,
		credential:  draft.Credential,
		model:       draft.Model,
		format:      draft.ResponseFormat.String(),
		temperature: formatFloat(draft.Temperature),
		maxTokens:   strconv.Itoa(draft.MaxOutputTokens),
		topP:        formatFloat(draft.TopP),
		store:       draft.PersistOnServer,
		variables:   draft.Variables,
		tools:       draft.Tools,
		system:      draft.SystemInstruction,
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&f.credential),
			huh.NewSelect[string]().
				Title("Model").
				Options(modelOptions(draft.Model)...).
				Value(&f.model),
			huh.NewSelect[string]().
				Title("Response format").
				Options(formatOptions()...).
				Value(&f.format),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Temperature").
				Validate(validateFloat).
				Value(&f.temperature),
			huh.NewInput().
				Title("Max tokens").
				Validate(validateInt).
				Value(&f.maxTokens),
			huh.NewInput().
				Title("Top P").
				Validate(validateFloat).
				Value(&f.topP),
			huh.NewConfirm().
				Title("Store on server").
				Value(&f.store),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Variables").
				Value(&f.variables),
			huh.NewInput().
				Title("Tools").
				Value(&f.tools),
			huh.NewText().
				Title("System message").
				Lines(4).
				Value(&f.system),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)

	if width > 0 {
		f.form = f.form.WithWidth(width)
	}
	return f
}

// apply copies the form values into the draft. Number fields already passed
// their validators; one that still fails to parse leaves the draft value.
func (f *settingsForm) apply() {
	d := f.draft
	d.Credential = f.credential
	d.Model = f.model
	d.ResponseFormat = settings.ResponseFormat(f.format)
	if v, err := parseFloat(f.temperature); err == nil {
		d.Temperature = v
	}
	if v, err := parseInt(f.maxTokens); err == nil {
		d.MaxOutputTokens = v
	}
	if v, err := parseFloat(f.topP); err == nil {
		d.TopP = v
	}
	d.PersistOnServer = f.store
	d.Variables = f.variables
	d.Tools = f.tools
	d.SystemInstruction = f.system
}

func (f *settingsForm) state() huh.FormState {
	return f.form.State
}

func (f *settingsForm) View() string {
	return f.form.View()
}

// =============================================================================
// OPTIONS AND FIELD PARSING
// =============================================================================

// modelOptions lists the known models, plus current if it is a custom one.
func modelOptions(current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Models)+1)
	for _, m := range model.Models {
		opts = append(opts, huh.NewOption(m.Label(), m.ID))
	}
	if current != "" && !model.IsKnown(current) {
		opts = append(opts, huh.NewOption(model.GetModelInfo(current).Label(), current))
	}
	return opts
}

func formatOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(settings.ResponseFormats))
	for _, rf := range settings.ResponseFormats {
		opts = append(opts, huh.NewOption(rf.String(), rf.String()))
	}
	return opts
}

// Sampling values are only checked for syntax; the endpoint enforces ranges.
func validateFloat(s string) error {
	_, err := parseFloat(s)
	return err
}

func validateInt(s string) error {
	_, err := parseInt(s)
	return err
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("enter a number")
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("enter a whole number")
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
