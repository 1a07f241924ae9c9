// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

// Editor is an in-progress edit of the stored settings. The draft is a copy;
// nothing reaches the Store until Commit succeeds.
type Editor struct {
	store *Store
	draft *Settings
}

// NewEditor creates an editor for store.
func NewEditor(store *Store) *Editor {
	return &Editor{store: store}
}

// Begin opens a draft from the current stored settings and returns it.
// If a draft is already open it is returned unchanged.
func (e *Editor) Begin() *Settings {
	if e.draft == nil {
		current := e.store.Get()
		e.draft = &current
	}
	return e.draft
}

// Draft returns the open draft, or nil when no edit is in progress.
func (e *Editor) Draft() *Settings {
	return e.draft
}

// Editing reports whether a draft is open.
func (e *Editor) Editing() bool {
	return e.draft != nil
}

// Cancel discards the draft without modifying the store.
func (e *Editor) Cancel() {
	e.draft = nil
}

// Commit saves the draft. The draft is closed only when the save succeeds,
// so a rejected edit can be corrected and committed again.
func (e *Editor) Commit() error {
	if e.draft == nil {
		return nil
	}
	if err := e.store.Save(*e.draft); err != nil {
		return err
	}
	e.draft = nil
	return nil
}
