// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"fmt"
)

// ValidateELF validates that ELF attributes match the emulated machine, which
// is a little endian 32 bit RISC-V running statically linked executables.
func ValidateELF(hdr elf.FileHeader) error {
	switch hdr.OSABI {
	case elf.ELFOSABI_NONE, elf.ELFOSABI_LINUX:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrOSABINotSupported, hdr.OSABI)
	}

	if hdr.Class != elf.ELFCLASS32 || hdr.Data != elf.ELFDATA2LSB {
		return fmt.Errorf("%w: %s %s", ErrClassNotSupported, hdr.Class, hdr.Data)
	}

	if hdr.Machine != elf.EM_RISCV {
		return fmt.Errorf("%w: %s", ErrMachineNotSupported, hdr.Machine)
	}

	if hdr.Type != elf.ET_EXEC {
		return fmt.Errorf("%w: %s", ErrTypeNotSupported, hdr.Type)
	}

	return nil
}
