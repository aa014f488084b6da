// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package loader materializes the segments of a program image lazily, one
// page at a time, on the first access of the program to the page.
//
// A [Loader] is installed as fault disposition into a [trap.Table]. Faults on
// addresses not yet backed by a page of a segment are resolved by mapping a
// fresh page, filling it with the file backed bytes of the segment and
// applying the segment's protection. All other faults are passed on to the
// disposition that was active when the loader was installed.
package loader
