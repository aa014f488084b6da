// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"flag"
	"fmt"
)

var (
	// ErrHelp is returned when help is requested.
	ErrHelp = flag.ErrHelp

	// ErrReadBuildInfo is returned if build info can not be read from the
	// binary.
	ErrReadBuildInfo = errors.New("failed to read build info")

	// ErrValueOutOfRange is returned if a numeric flag value is outside of
	// its allowed range.
	ErrValueOutOfRange = errors.New("value is outside of range")

	// ErrInvalidEnvVar is returned if an environment variable is not in
	// "key=value" form.
	ErrInvalidEnvVar = errors.New("environment variable must be key=value")
)

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	msg string
	err error
}

func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

func (e *ParseArgsError) Unwrap() error {
	return e.err
}
