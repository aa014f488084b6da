// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cpu implements a little endian RV32IM machine running statically
// linked Linux programs.
//
// All memory accesses go through a [Memory]. An access that can not be
// served returns a [*mem.Fault] before any register, program counter or
// memory change of the instruction is committed. [Machine.Run] passes those
// faults to the [trap.Table] and executes the instruction again, if the
// disposition resolved the fault.
package cpu
