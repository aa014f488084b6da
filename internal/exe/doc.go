// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exe provides the executable descriptor: the entry point and the
// table of loadable segments of a program image, and the parser that
// produces it from an ELF file.
//
// A descriptor is produced once and is immutable afterwards. Segments are
// kept in program header table order, which is also the order used for
// address lookups.
package exe
