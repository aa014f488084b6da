// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"strings"

	"github.com/aibor/pagerun/internal/sys"
)

// FilePath is a [flag.Value] that resolves the given path to an absolute one.
type FilePath string

func (f *FilePath) String() string {
	return string(*f)
}

func (f *FilePath) Set(s string) error {
	path, err := sys.AbsolutePath(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*f = FilePath(path)

	return nil
}

// EnvList is a [flag.Value] collecting "key=value" pairs. It may be set more
// than once. An empty value clears the list.
type EnvList []string

func (e *EnvList) String() string {
	return strings.Join(*e, ",")
}

func (e *EnvList) Set(s string) error {
	if s == "" {
		*e = nil
		return nil
	}

	key, _, found := strings.Cut(s, "=")
	if !found || key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEnvVar, s)
	}

	*e = append(*e, s)

	return nil
}
