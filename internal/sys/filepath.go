// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"os"
	"path/filepath"
)

// AbsolutePath returns the absolute path as resolved by [filepath.Abs].
//
// It returns [ErrEmptyPath] if the given path is empty.
func AbsolutePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	return path, nil
}

// MustAbsolutePath calls [AbsolutePath] and panics in case of errors.
func MustAbsolutePath(path string) string {
	abs, err := AbsolutePath(path)
	if err != nil {
		panic(err)
	}

	return abs
}

// ValidateFilePath checks that the given path exists and is a regular file.
func ValidateFilePath(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	return nil
}
