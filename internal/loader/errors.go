// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInstalled is returned if a loader is installed twice.
	ErrAlreadyInstalled = errors.New("already installed")

	// ErrNotInstalled is returned if a loader that is not installed is
	// uninstalled.
	ErrNotInstalled = errors.New("not installed")
)

// InstallError is returned if the loader can not be registered as fault
// disposition.
type InstallError struct {
	Err error
}

func (e *InstallError) Error() string {
	return "install loader: " + e.Err.Error()
}

func (*InstallError) Is(other error) bool {
	_, ok := other.(*InstallError)
	return ok
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// FatalError is returned if a fault can not be resolved although the fault
// is the loader's responsibility. The program can not continue.
type FatalError struct {
	Addr uint64
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("resolve fault at %#x: %s: %v", e.Addr, e.Op, e.Err)
}

func (*FatalError) Is(other error) bool {
	_, ok := other.(*FatalError)
	return ok
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
