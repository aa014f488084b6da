// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrOSABINotSupported is returned if the OS ABI of an ELF file is not
	// supported.
	ErrOSABINotSupported = errors.New("OSABI not supported")

	// ErrMachineNotSupported is returned if the machine type of an ELF file
	// is not supported.
	ErrMachineNotSupported = errors.New("machine type not supported")

	// ErrClassNotSupported is returned if the ELF class or data encoding is
	// not the one of the emulated machine.
	ErrClassNotSupported = errors.New("ELF class not supported")

	// ErrTypeNotSupported is returned if the ELF file is not a static
	// executable.
	ErrTypeNotSupported = errors.New("ELF type not supported")

	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrNotRegularFile is returned if a path does not point to a regular
	// file.
	ErrNotRegularFile = errors.New("not a regular file")
)
