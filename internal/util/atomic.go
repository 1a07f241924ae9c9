// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AtomicWriteFile writes data to path so that readers see either the old file
// or the complete new one. The data is written to a temp file in the same
// directory, synced, chmod'ed to perm and renamed over path.
//
// Missing parent directories are created with mode 0700.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute path")
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}

	// Same directory, so the rename stays on one filesystem.
	f, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "failed to write data")
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync data to disk")
	}
	// Close before rename (Windows).
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return errors.Wrap(err, "failed to set file permissions")
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return errors.Wrap(err, "failed to rename temp file")
	}

	success = true
	return nil
}
