// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pagerun runs a program with its segments paged in on demand.
//
// [Run] parses the executable, installs the demand paging loader as fault
// disposition, sets up the initial stack and transfers control to the
// emulated machine at the program's entry point. Segment pages are only
// materialized when the program touches them.
package pagerun
