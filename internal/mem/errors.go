// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

import "errors"

var (
	// ErrInvalidPageSize is returned if the page size is not a power of two
	// or smaller than [MinPageSize].
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrUnaligned is returned if an address that must be page aligned is
	// not.
	ErrUnaligned = errors.New("address not page aligned")

	// ErrAlreadyMapped is returned if a page is requested at an address that
	// already has a page.
	ErrAlreadyMapped = errors.New("address already mapped")

	// ErrNotMapped is returned if an operation on a page is requested for an
	// address without a page.
	ErrNotMapped = errors.New("address not mapped")

	// ErrPageReadOnly is returned if a page is populated after its write
	// access has been removed.
	ErrPageReadOnly = errors.New("page is not writable")

	// ErrOutOfBounds is returned if a page offset range exceeds the page.
	ErrOutOfBounds = errors.New("range exceeds page bounds")
)
