// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

import "errors"

var (
	// ErrStepLimit is returned if the program did not exit within the
	// configured number of instructions.
	ErrStepLimit = errors.New("step limit reached")

	// ErrFaultLoop is returned if an instruction keeps faulting although
	// each fault was reported as resolved.
	ErrFaultLoop = errors.New("fault not resolved")

	// ErrAddressRange is returned if an address does not fit into the 32
	// bit address space.
	ErrAddressRange = errors.New("address exceeds 32 bit address space")

	// ErrMisalignedPC is returned if an entry address is not aligned to
	// the instruction size.
	ErrMisalignedPC = errors.New("program counter not aligned")
)
