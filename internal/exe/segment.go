// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

import (
	"fmt"

	"github.com/aibor/pagerun/internal/mem"
)

// Segment is a contiguous virtual address range of the program image.
//
// The first FileSize bytes are backed by the executable file starting at
// Offset. The remaining bytes up to MemSize are zero.
type Segment struct {
	Base     uint64
	MemSize  uint64
	FileSize uint64
	Offset   uint64
	Perm     mem.Prot
}

// End returns the first address after the segment.
func (s Segment) End() uint64 {
	return s.Base + s.MemSize
}

// Contains reports whether the address is in [Base, Base+MemSize).
func (s Segment) Contains(addr uint64) bool {
	return addr >= s.Base && addr < s.End()
}

func (s Segment) String() string {
	return fmt.Sprintf("%#x-%#x %s", s.Base, s.End(), s.Perm)
}
