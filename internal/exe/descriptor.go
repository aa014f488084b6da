// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

import (
	"cmp"
	"fmt"
	"slices"
)

// Descriptor describes an executable image.
type Descriptor struct {
	Entry    uint64
	Segments []Segment
}

// Lookup returns the index of the first segment in table order that contains
// the given address. It returns false, if no segment contains the address.
func (d *Descriptor) Lookup(addr uint64) (int, bool) {
	for idx, segment := range d.Segments {
		if segment.Contains(addr) {
			return idx, true
		}
	}

	return 0, false
}

// CheckPageSize returns an error if any two segments touch the same page of
// the given size. Such segments can not get their own page protection.
func (d *Descriptor) CheckPageSize(pageSize uint64) error {
	segments := sortedByBase(d.Segments)

	for idx := 1; idx < len(segments); idx++ {
		prev, cur := segments[idx-1], segments[idx]

		lastPrev := (prev.End() - 1) &^ (pageSize - 1)
		firstCur := cur.Base &^ (pageSize - 1)

		if lastPrev >= firstCur {
			return fmt.Errorf("%w: %s and %s with page size %#x",
				ErrSegmentsSharePage, prev, cur, pageSize)
		}
	}

	return nil
}

func sortedByBase(segments []Segment) []Segment {
	return slices.SortedFunc(slices.Values(segments), func(a, b Segment) int {
		return cmp.Compare(a.Base, b.Base)
	})
}
