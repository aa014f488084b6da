// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	elfHeaderSize  = 52
	progHeaderSize = 32
	imageAlign     = 0x1000
)

// ImageSegment is a loadable segment of an [Image].
type ImageSegment struct {
	Vaddr   uint32
	MemSize uint32
	Flags   elf.ProgFlag
	Data    []byte
}

// Image describes a minimal ELF executable written by [WriteELF].
type Image struct {
	Entry    uint32
	Machine  elf.Machine
	Type     elf.Type
	Segments []ImageSegment
}

// ELFBytes returns the ELF32 little endian encoding of the image. Machine and
// Type default to RISC-V and executable. Segment data is placed at file
// offsets congruent to the segment address modulo 4 KiB.
func ELFBytes(tb testing.TB, image Image) []byte {
	tb.Helper()

	machine := image.Machine
	if machine == elf.EM_NONE {
		machine = elf.EM_RISCV
	}

	typ := image.Type
	if typ == elf.ET_NONE {
		typ = elf.ET_EXEC
	}

	header := elf.Header32{
		Type:      uint16(typ),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     image.Entry,
		Phoff:     elfHeaderSize,
		Ehsize:    elfHeaderSize,
		Phentsize: progHeaderSize,
		Phnum:     uint16(len(image.Segments)),
	}
	copy(header.Ident[:], elf.ELFMAG)
	header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	header.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	header.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)

	offset := uint32(elfHeaderSize + progHeaderSize*len(image.Segments))
	progs := make([]elf.Prog32, 0, len(image.Segments))

	for _, segment := range image.Segments {
		offset += (segment.Vaddr - offset) % imageAlign
		progs = append(progs, elf.Prog32{
			Type:   uint32(elf.PT_LOAD),
			Off:    offset,
			Vaddr:  segment.Vaddr,
			Paddr:  segment.Vaddr,
			Filesz: uint32(len(segment.Data)),
			Memsz:  segment.MemSize,
			Flags:  uint32(segment.Flags),
			Align:  imageAlign,
		})
		offset += uint32(len(segment.Data))
	}

	var buf bytes.Buffer

	require.NoError(tb, binary.Write(&buf, binary.LittleEndian, header))
	require.NoError(tb, binary.Write(&buf, binary.LittleEndian, progs))

	for idx, segment := range image.Segments {
		buf.Write(make([]byte, int(progs[idx].Off)-buf.Len()))
		buf.Write(segment.Data)
	}

	return buf.Bytes()
}

// WriteELF writes the image as ELF file to the given path.
func WriteELF(tb testing.TB, path string, image Image) {
	tb.Helper()

	err := os.WriteFile(path, ELFBytes(tb, image), 0o600)
	require.NoError(tb, err, "must write ELF file")
}
