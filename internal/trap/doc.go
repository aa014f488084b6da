// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package trap provides the fault disposition table of the emulated machine.
//
// A [Table] holds exactly one active [Handler]. Installing a handler returns
// the previously active one, so handlers can chain to their predecessor for
// faults they do not handle. A fresh table holds [Default], which terminates
// the program with SIGSEGV.
package trap
