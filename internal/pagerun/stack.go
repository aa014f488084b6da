// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pagerun

import (
	"encoding/binary"
	"fmt"

	"github.com/aibor/pagerun/internal/exe"
	"github.com/aibor/pagerun/internal/mem"
)

// StackTop is the first address above the initial stack.
const StackTop = 0x7fff0000

// Auxiliary vector entry types.
const (
	atNull   = 0
	atPageSz = 6
	atEntry  = 9
)

const (
	wordSize   = 4
	stackAlign = 16
)

// stackLayout describes the initial stack as expected by a statically linked
// Linux program.
type stackLayout struct {
	Args     []string
	Env      []string
	Entry    uint64
	Size     uint64
	Top      uint64
	PageSize uint64
}

// setupStack maps the stack eagerly and writes argc, argv, envp and auxv. It
// returns the initial stack pointer.
func setupStack(space *mem.Space, desc *exe.Descriptor, layout stackLayout) (uint64, error) {
	size := (layout.Size + space.PageSize() - 1) &^ (space.PageSize() - 1)
	bottom := layout.Top - size

	for _, segment := range desc.Segments {
		if segment.Base < layout.Top && bottom < segment.End() {
			return 0, fmt.Errorf("%w: %s", ErrStackOverlap, segment)
		}
	}

	// Strings are placed at the top, the pointer tables below.
	var area []byte

	argPtrs := make([]uint64, len(layout.Args))
	for idx, arg := range layout.Args {
		argPtrs[idx] = uint64(len(area))
		area = append(append(area, arg...), 0)
	}

	envPtrs := make([]uint64, len(layout.Env))
	for idx, env := range layout.Env {
		envPtrs[idx] = uint64(len(area))
		area = append(append(area, env...), 0)
	}

	areaAddr := (layout.Top - uint64(len(area))) &^ (wordSize - 1)

	words := []uint32{uint32(len(layout.Args))}

	for _, ptr := range argPtrs {
		words = append(words, uint32(areaAddr+ptr))
	}

	words = append(words, 0)

	for _, ptr := range envPtrs {
		words = append(words, uint32(areaAddr+ptr))
	}

	words = append(words, 0,
		atPageSz, uint32(layout.PageSize),
		atEntry, uint32(layout.Entry),
		atNull, 0,
	)

	tableSize := uint64(len(words)) * wordSize
	if tableSize+uint64(len(area))+stackAlign > size {
		return 0, fmt.Errorf("%w: %d bytes", ErrStackOverflow, tableSize+uint64(len(area)))
	}

	err := space.MapRange(bottom, size, mem.ProtRead|mem.ProtWrite)
	if err != nil {
		return 0, fmt.Errorf("map stack: %w", err)
	}

	sp := (areaAddr - tableSize) &^ (stackAlign - 1)

	table := make([]byte, 0, tableSize)
	for _, word := range words {
		table = binary.LittleEndian.AppendUint32(table, word)
	}

	err = space.Write(areaAddr, area)
	if err != nil {
		return 0, fmt.Errorf("write strings: %w", err)
	}

	err = space.Write(sp, table)
	if err != nil {
		return 0, fmt.Errorf("write pointers: %w", err)
	}

	return sp, nil
}
