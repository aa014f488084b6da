// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSegments is returned if an image has no loadable segments.
	ErrNoSegments = errors.New("no loadable segments")

	// ErrFileSizeExceedsMemSize is returned if a segment has more file
	// bytes than it occupies in memory.
	ErrFileSizeExceedsMemSize = errors.New("file size exceeds memory size")

	// ErrSegmentsOverlap is returned if two segments overlap in the virtual
	// address space.
	ErrSegmentsOverlap = errors.New("segments overlap")

	// ErrSegmentsSharePage is returned if two segments touch the same page.
	ErrSegmentsSharePage = errors.New("segments share a page")
)

// ParseError is returned if an executable can not be turned into a
// [Descriptor].
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (*ParseError) Is(other error) bool {
	_, ok := other.(*ParseError)
	return ok
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
