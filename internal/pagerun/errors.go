// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pagerun

import "errors"

var (
	// ErrStartFailed is returned if control could not be transferred to the
	// program.
	ErrStartFailed = errors.New("start failed")

	// ErrStackOverlap is returned if the stack overlaps a segment.
	ErrStackOverlap = errors.New("stack overlaps segment")

	// ErrStackOverflow is returned if the arguments and environment do not
	// fit into the stack.
	ErrStackOverflow = errors.New("arguments exceed stack size")
)
