// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

import (
	"debug/elf"
	"fmt"
	"log/slog"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/sys"
)

// ELFParser parses statically linked 32 bit RISC-V ELF executables.
type ELFParser struct{}

var _ Parser = ELFParser{}

// Parse implements [Parser]. Each PT_LOAD program header becomes a
// [Segment], in program header table order. Errors are returned as
// [*ParseError].
func (ELFParser) Parse(path string) (*Descriptor, error) {
	desc, err := parseELF(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return desc, nil
}

func parseELF(path string) (*Descriptor, error) {
	err := sys.ValidateFilePath(path)
	if err != nil {
		return nil, err
	}

	file, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	err = sys.ValidateELF(file.FileHeader)
	if err != nil {
		return nil, err
	}

	desc := &Descriptor{
		Entry: file.Entry,
	}

	for _, prog := range file.Progs {
		if prog.Type != elf.PT_LOAD || prog.Memsz == 0 {
			continue
		}

		if prog.Filesz > prog.Memsz {
			return nil, fmt.Errorf("%w: segment at %#x: %#x > %#x",
				ErrFileSizeExceedsMemSize, prog.Vaddr, prog.Filesz, prog.Memsz)
		}

		segment := Segment{
			Base:     prog.Vaddr,
			MemSize:  prog.Memsz,
			FileSize: prog.Filesz,
			Offset:   prog.Off,
			Perm:     protFromFlags(prog.Flags),
		}

		slog.Debug("Found loadable segment",
			slog.String("segment", segment.String()),
			slog.Uint64("file_size", segment.FileSize),
			slog.Uint64("offset", segment.Offset),
		)

		desc.Segments = append(desc.Segments, segment)
	}

	if len(desc.Segments) == 0 {
		return nil, ErrNoSegments
	}

	segments := sortedByBase(desc.Segments)
	for idx := 1; idx < len(segments); idx++ {
		if segments[idx-1].End() > segments[idx].Base {
			return nil, fmt.Errorf("%w: %s and %s",
				ErrSegmentsOverlap, segments[idx-1], segments[idx])
		}
	}

	return desc, nil
}

func protFromFlags(flags elf.ProgFlag) mem.Prot {
	var prot mem.Prot

	if flags&elf.PF_R != 0 {
		prot |= mem.ProtRead
	}

	if flags&elf.PF_W != 0 {
		prot |= mem.ProtWrite
	}

	if flags&elf.PF_X != 0 {
		prot |= mem.ProtExec
	}

	return prot
}
