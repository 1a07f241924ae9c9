// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// ModelInfo describes a model offered by the settings dialog.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string

	// Name is the human-readable display name
	Name string

	// Description is a brief explanation of the model's strengths
	Description string
}

// Models lists the selectable models in display order. Any other identifier
// may still be saved; the endpoint decides whether it exists.
var Models = []ModelInfo{
	{
		ID:          "gpt-3.5-turbo",
		Name:        "GPT-3.5 Turbo",
		Description: "Fast and inexpensive",
	},
	{
		ID:          "gpt-4",
		Name:        "GPT-4",
		Description: "More capable, slower",
	},
}

// ModelIDs returns the IDs of Models in order.
func ModelIDs() []string {
	ids := make([]string, len(Models))
	for i, m := range Models {
		ids[i] = m.ID
	}
	return ids
}

// GetModelInfo returns information about a model ID. Unknown IDs are
// reported with the ID as their name.
func GetModelInfo(id string) ModelInfo {
	for _, m := range Models {
		if m.ID == id {
			return m
		}
	}
	return ModelInfo{ID: id, Name: id, Description: "Custom model"}
}

// IsKnown reports whether id is one of Models.
func IsKnown(id string) bool {
	for _, m := range Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Label returns "Name (id)" for display in selectors.
func (m ModelInfo) Label() string {
	if m.Name == m.ID {
		return m.ID
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}
